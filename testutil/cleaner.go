// Package testutil provides store cleanup helpers for integration and unit
// tests: wiping a whole store between cases and recursively deleting single
// collections including their nested sub-collections.
package testutil

import (
	"context"

	"github.com/docmodel/docmodel-go/docmodel/driver"
)

// deleteBatchSize is the page size for recursive deletion. Deleting in small
// windows keeps each round-trip bounded on stores that limit batch sizes.
const deleteBatchSize = 30

// storeWiper is the fast path an engine may provide to reset everything in
// one call (in-memory drop, emulator reset, table truncate).
type storeWiper interface {
	Wipe(ctx context.Context) error
}

// WipeStore removes every document from the store. Engines exposing a Wipe
// method are reset directly; otherwise every top-level collection is deleted
// recursively.
func WipeStore(ctx context.Context, store driver.Store) error {
	if wiper, ok := store.(storeWiper); ok {
		return wiper.Wipe(ctx)
	}

	names, err := store.Collections(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := DeleteCollection(ctx, store.Collection(name)); err != nil {
			return err
		}
	}

	return nil
}

// DeleteCollection removes every document of the collection, descending into
// nested sub-collections first. It pages through the collection in fixed
// windows and keeps going until a page comes back empty, so documents written
// between pages are picked up too.
func DeleteCollection(ctx context.Context, collection driver.CollectionRef) error {
	for {
		snapshots, err := collection.Limit(deleteBatchSize).Documents(ctx)
		if err != nil {
			return err
		}

		if len(snapshots) == 0 {
			return nil
		}

		for _, snapshot := range snapshots {
			ref := snapshot.Ref()

			subNames, subErr := ref.Collections(ctx)
			if subErr != nil {
				return subErr
			}

			for _, subName := range subNames {
				if err := DeleteCollection(ctx, ref.Collection(subName)); err != nil {
					return err
				}
			}

			if deleteErr := ref.Delete(ctx); deleteErr != nil {
				return deleteErr
			}
		}
	}
}
