package docmodel

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/docmodel/docmodel-go/docmodel/driver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// A Builder accumulates predicate, ordering and window clauses for one query.
// It is a value the caller threads explicitly; the Model holds no query
// state, so independent builders never interfere. Repeated Where calls
// accumulate conjunctive (AND) predicates; there is no disjunction support.
//
// Parse errors stick to the builder and are surfaced by the terminal call, so
// chains stay fluent.
type Builder struct {
	model *Model
	query driver.Query
	err   error
}

// Query returns a fresh Builder bound to the configured collection, or to
// the collection group when grouped queries are enabled.
func (m *Model) Query() *Builder {
	return &Builder{model: m, query: m.querySource()}
}

// Where is shorthand for Query().Where.
func (m *Model) Where(expr string, value ...any) *Builder {
	return m.Query().Where(expr, value...)
}

// WhereIn is shorthand for Query().WhereIn.
func (m *Model) WhereIn(field string, values []any) *Builder {
	return m.Query().WhereIn(field, values)
}

// Where parses a compact predicate expression (see ParsePredicate) and
// narrows the query with it.
func (b *Builder) Where(expr string, value ...any) *Builder {
	if b.err != nil {
		return b
	}

	predicate, err := ParsePredicate(expr, value...)
	if err != nil {
		b.err = err
		return b
	}

	b.query = b.query.Where(predicate.Field, predicate.Op, predicate.Value)

	return b
}

// WhereIn narrows the query to documents whose field equals any of the given
// values.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if b.err != nil {
		return b
	}

	b.query = b.query.Where(field, driver.OpIn, values)

	return b
}

// OrderBy narrows the query with an ordering clause. Direction is "asc" or
// "desc" (case-insensitive); anything that is not "desc" sorts ascending.
func (b *Builder) OrderBy(field string, direction string) *Builder {
	if b.err != nil {
		return b
	}

	b.query = b.query.OrderBy(field, strings.EqualFold(direction, "desc"))

	return b
}

// Limit caps the number of returned documents.
func (b *Builder) Limit(n int) *Builder {
	if b.err != nil {
		return b
	}

	b.query = b.query.Limit(n)

	return b
}

// Offset skips the first n documents of the result.
func (b *Builder) Offset(n int) *Builder {
	if b.err != nil {
		return b
	}

	b.query = b.query.Offset(n)

	return b
}

// Reset discards the accumulated clauses and returns a fresh builder.
func (b *Builder) Reset() *Builder {
	return b.model.Query()
}

// documents executes the query, applying the model's soft-delete exclusion
// unless the call opted into deleted rows.
func (b *Builder) documents(ctx context.Context, opts queryOptions) ([]driver.Snapshot, error) {
	if b.err != nil {
		return nil, b.err
	}

	query := b.query
	if b.model.useSoftDeletes && !opts.includeDeleted {
		query = query.Where(b.model.deletedField, driver.OpEqual, nil)
	}

	snapshots, err := query.Documents(ctx)
	if err != nil {
		b.model.logError(logMsgQueryCompleted, err, logAttrCollection, b.model.collection)
		return nil, err
	}

	b.model.logOperation(logMsgQueryCompleted,
		logAttrCollection, b.model.collection,
		logAttrRowCount, len(snapshots))

	return snapshots, nil
}

// GetRows executes the query and shapes every matching document into a Row.
// An empty result yields an empty slice, never an error.
func (b *Builder) GetRows(ctx context.Context, options ...QueryOption) ([]Row, error) {
	snapshots, err := b.documents(ctx, applyQueryOptions(options))
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(snapshots))
	for _, snapshot := range snapshots {
		rows = append(rows, b.model.rowFromSnapshot(snapshot))
	}

	return rows, nil
}

// GetEntities executes the query and shapes every matching document into an
// Entity with its originating document bound.
func (b *Builder) GetEntities(ctx context.Context, options ...QueryOption) ([]*Entity, error) {
	snapshots, err := b.documents(ctx, applyQueryOptions(options))
	if err != nil {
		return nil, err
	}

	entities := make([]*Entity, 0, len(snapshots))
	for _, snapshot := range snapshots {
		entities = append(entities, b.model.entityFromSnapshot(snapshot))
	}

	return entities, nil
}

// GetInto executes the query and decodes the shaped rows into dest, which
// must be a pointer to a slice of the caller's row type.
func (b *Builder) GetInto(ctx context.Context, dest any, options ...QueryOption) error {
	rows, err := b.GetRows(ctx, options...)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	return json.Unmarshal(encoded, dest)
}

// First executes the query capped to one document and returns the shaped Row,
// or (nil, nil) when nothing matches. The cap applies to this call only; the
// builder's own clauses stay untouched.
func (b *Builder) First(ctx context.Context, options ...QueryOption) (Row, error) {
	capped := &Builder{model: b.model, query: b.query.Limit(1), err: b.err}

	rows, err := capped.GetRows(ctx, options...)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rows[0], nil
}

// CountAllResults executes the query and returns the number of matching
// documents; an empty result counts as zero. Every call is independent, the
// builder can be reused for pagination afterwards.
func (b *Builder) CountAllResults(ctx context.Context, options ...QueryOption) (int, error) {
	snapshots, err := b.documents(ctx, applyQueryOptions(options))
	if err != nil {
		return 0, err
	}

	return len(snapshots), nil
}

// Delete locates the record via a primary-key lookup on the filtered query
// and deletes the first match's underlying document. Zero matches fail with
// ErrNotFound. Nested sub-collections are not cascaded.
func (b *Builder) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	if b.err != nil {
		return b.err
	}

	snapshots, err := b.query.
		Where(b.model.primaryKey, driver.OpEqual, id).
		Limit(1).
		Documents(ctx)
	if err != nil {
		return err
	}

	if len(snapshots) == 0 {
		return fmt.Errorf("%w: no document matched primary key %q", ErrNotFound, id)
	}

	if deleteErr := snapshots[0].Ref().Delete(ctx); deleteErr != nil {
		b.model.logError(logMsgDocumentDeleted, deleteErr, logAttrDocumentID, id)
		return deleteErr
	}

	b.model.logOperation(logMsgDocumentDeleted,
		logAttrCollection, b.model.collection,
		logAttrDocumentID, id)

	return nil
}
