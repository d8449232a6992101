package docmodel

import (
	"context"

	"github.com/docmodel/docmodel-go/docmodel/driver"
)

// queryOptions are per-call overrides for terminal operations. They are
// passed into each call and never stored on the Model, so no reset discipline
// is needed: the next call starts from the configured defaults again.
type queryOptions struct {
	includeDeleted bool
}

// QueryOption defines a per-call override for one terminal operation.
type QueryOption func(*queryOptions)

// WithDeleted includes soft-deleted rows in the result of the call it is
// passed to. It has no effect beyond that call.
func WithDeleted() QueryOption {
	return func(o *queryOptions) {
		o.includeDeleted = true
	}
}

func applyQueryOptions(options []QueryOption) queryOptions {
	var opts queryOptions
	for _, option := range options {
		option(&opts)
	}

	return opts
}

// Find performs a direct document read on a fresh collection handle,
// bypassing any filtered query, and returns the shaped Row. A missing
// document is a normal outcome and yields (nil, nil).
func (m *Model) Find(ctx context.Context, id string) (Row, error) {
	snapshot, err := m.findSnapshot(ctx, id)
	if err != nil || snapshot == nil {
		return nil, err
	}

	return m.rowFromSnapshot(snapshot), nil
}

// FindEntity is Find with the entity shape: the returned Entity has its
// originating document bound.
func (m *Model) FindEntity(ctx context.Context, id string) (*Entity, error) {
	snapshot, err := m.findSnapshot(ctx, id)
	if err != nil || snapshot == nil {
		return nil, err
	}

	return m.entityFromSnapshot(snapshot), nil
}

func (m *Model) findSnapshot(ctx context.Context, id string) (driver.Snapshot, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	return m.Collection().Doc(id).Get(ctx)
}

// FindMany looks up multiple identifiers with a where-in query on the primary
// key, applying soft-delete exclusion when enabled. An empty id slice yields
// an empty result without a store round-trip.
func (m *Model) FindMany(ctx context.Context, ids []string, options ...QueryOption) ([]Row, error) {
	if len(ids) == 0 {
		return []Row{}, nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	return m.Query().WhereIn(m.primaryKey, values).GetRows(ctx, options...)
}

// FindAll returns every row of the collection, applying soft-delete exclusion
// when enabled.
func (m *Model) FindAll(ctx context.Context, options ...QueryOption) ([]Row, error) {
	return m.Query().GetRows(ctx, options...)
}

// FindAllEntities is FindAll with the entity shape.
func (m *Model) FindAllEntities(ctx context.Context, options ...QueryOption) ([]*Entity, error) {
	return m.Query().GetEntities(ctx, options...)
}

// CountAllResults counts the rows of the collection, applying soft-delete
// exclusion when enabled.
func (m *Model) CountAllResults(ctx context.Context, options ...QueryOption) (int, error) {
	return m.Query().CountAllResults(ctx, options...)
}
