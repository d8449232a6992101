// Package driver defines the narrow document-store contract the model layer
// is built against. Engine packages (memengine, firestoreengine,
// postgresengine) implement these interfaces for a concrete backend;
// application code should use package docmodel.
package driver

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an operation requires a document that does not
// exist, e.g. a partial update against a missing document.
// Plain single-document reads report absence as a nil Snapshot instead.
var ErrNotFound = errors.New("document not found")

// Operators accepted by Query.Where. Engines may reject operators they
// cannot express at query time.
const (
	OpEqual              = "=="
	OpNotEqual           = "!="
	OpLessThan           = "<"
	OpLessThanOrEqual    = "<="
	OpGreaterThan        = ">"
	OpGreaterThanOrEqual = ">="
	OpIn                 = "in"
	OpArrayContains      = "array-contains"
)

type serverTimestampSentinel struct{}

// ServerTimestamp is a placeholder value resolved to the store's own clock at
// write time. It may appear as a document field value in Set data or as a
// Mod value in Update.
var ServerTimestamp = serverTimestampSentinel{}

// A Mod is one modification to a field path in a document. Dotted paths
// address nested fields ("address.city"). Mods are applied in slice order.
type Mod struct {
	Path  string
	Value any
}

// Store is a connection to one document database.
type Store interface {
	// Collection returns a handle to the named collection. Nested collection
	// paths use "/" separators ("users/ID/orders").
	Collection(name string) CollectionRef

	// CollectionGroup returns a query spanning every collection with the
	// given leaf name, wherever it occurs in the document tree. The result
	// supports no direct document addressing.
	CollectionGroup(name string) Query

	// Collections enumerates the names of the top-level collections.
	Collections(ctx context.Context) ([]string, error)
}

// A CollectionRef is a handle to one collection. It supports direct document
// addressing and doubles as an unfiltered Query over the collection.
type CollectionRef interface {
	Query

	// ID returns the leaf name of the collection.
	ID() string

	// Path returns the full collection path.
	Path() string

	// Doc returns a reference to the document with the given id. The
	// document need not exist.
	Doc(id string) DocumentRef

	// NewDoc returns a reference with a fresh store-assigned id.
	NewDoc() DocumentRef

	// Add creates a document with a store-assigned id.
	Add(ctx context.Context, data map[string]any) (DocumentRef, error)
}

// A Query is an immutable description of a filtered read. Every narrowing
// call returns a new Query value; the receiver is never modified.
type Query interface {
	Where(field string, op string, value any) Query
	OrderBy(field string, descending bool) Query
	Limit(n int) Query
	Offset(n int) Query

	// Documents executes the query and returns the matching snapshots.
	// An empty result is ([]Snapshot{}, nil), never an error.
	Documents(ctx context.Context) ([]Snapshot, error)
}

// A DocumentRef addresses one document for direct reads and writes.
type DocumentRef interface {
	// ID returns the document identifier within its collection.
	ID() string

	// Path returns the full document path including the collection path.
	Path() string

	// Get reads the document. A missing document yields (nil, nil).
	Get(ctx context.Context) (Snapshot, error)

	// Set writes the full document, replacing any existing content.
	Set(ctx context.Context, data map[string]any) error

	// Update changes only the named field paths; unspecified fields are
	// untouched. Returns ErrNotFound when the document does not exist.
	Update(ctx context.Context, mods []Mod) error

	// Delete removes the document. Deleting a missing document is not an
	// error. Nested sub-collections are not cascaded.
	Delete(ctx context.Context) error

	// Collection returns a handle to a sub-collection of this document.
	Collection(name string) CollectionRef

	// Collections enumerates the names of this document's sub-collections.
	Collections(ctx context.Context) ([]string, error)
}

// A Snapshot is a point-in-time read of one document.
type Snapshot interface {
	ID() string
	CreateTime() time.Time
	UpdateTime() time.Time

	// Data returns the raw document fields. Callers own the returned map.
	Data() map[string]any

	// Ref returns a reference usable for further direct operations.
	Ref() DocumentRef
}
