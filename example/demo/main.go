// A small end-to-end walkthrough of the model layer against the in-memory
// engine: configure a model, insert with allow-list protection, query with
// predicate expressions, soft-delete and count.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/docmodel/docmodel-go/docmodel"
	"github.com/docmodel/docmodel-go/docmodel/memengine"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store := memengine.NewEngine()

	colors, err := docmodel.NewModel(store, "colors",
		docmodel.WithAllowedFields("name", "hex", "brightness", "deleted_at"),
		docmodel.WithSoftDeletes("deleted_at"),
		docmodel.WithLogger(logger))
	if err != nil {
		log.Fatalf("failed to create model: %v", err)
	}

	redID, err := colors.Insert(ctx, docmodel.Row{"name": "Red", "hex": "#F00", "brightness": 30, "secret": "dropped"})
	if err != nil {
		log.Fatalf("failed to insert: %v", err)
	}

	if _, err = colors.Insert(ctx, docmodel.Row{"name": "Green", "hex": "#0F0", "brightness": 60}); err != nil {
		log.Fatalf("failed to insert: %v", err)
	}

	if _, err = colors.Insert(ctx, docmodel.Row{"name": "Blue", "hex": "#00F", "brightness": 90}); err != nil {
		log.Fatalf("failed to insert: %v", err)
	}

	row, err := colors.Find(ctx, redID)
	if err != nil {
		log.Fatalf("failed to find: %v", err)
	}
	logger.Info("found by id", "row", row)

	bright, err := colors.Where("brightness >=", 60).OrderBy("brightness", "desc").GetRows(ctx)
	if err != nil {
		log.Fatalf("failed to query: %v", err)
	}
	logger.Info("bright colors", "count", len(bright))

	if err = colors.Update(ctx, redID, docmodel.Row{"name": "Crimson"}); err != nil {
		log.Fatalf("failed to update: %v", err)
	}

	// Soft-delete by setting the configured field; finders exclude it now.
	if err = colors.Update(ctx, redID, docmodel.Row{"deleted_at": "2026-01-02T10:00:00Z"}); err != nil {
		log.Fatalf("failed to soft-delete: %v", err)
	}

	visible, err := colors.CountAllResults(ctx)
	if err != nil {
		log.Fatalf("failed to count: %v", err)
	}

	all, err := colors.CountAllResults(ctx, docmodel.WithDeleted())
	if err != nil {
		log.Fatalf("failed to count: %v", err)
	}

	logger.Info("counts", "visible", visible, "including_deleted", all)
}
