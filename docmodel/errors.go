package docmodel

import (
	"errors"

	"github.com/docmodel/docmodel-go/docmodel/driver"
)

var (
	// ErrNilStore is returned when a Model is constructed without a store.
	ErrNilStore = errors.New("nil store supplied")

	// ErrEmptyCollectionName is returned when a Model is constructed with an
	// empty collection name.
	ErrEmptyCollectionName = errors.New("empty collection name supplied")

	// ErrEmptyPrimaryKey is returned when the primary key is configured
	// empty. A primary key is mandatory because direct-document operations
	// depend on it.
	ErrEmptyPrimaryKey = errors.New("empty primary key configured")

	// ErrNoAllowedFields is returned by mutations when field protection is
	// enabled but no allowed fields are configured. With an empty allow-list
	// no field can safely be written.
	ErrNoAllowedFields = errors.New("field protection is enabled but no allowed fields are configured")

	// ErrEmptyFieldName is returned when an option is configured with an
	// empty field name.
	ErrEmptyFieldName = errors.New("empty field name supplied")

	// ErrEmptyData is returned when an insert or update receives no fields.
	ErrEmptyData = errors.New("empty data supplied")

	// ErrEmptyID is returned when an operation receives an empty document id.
	ErrEmptyID = errors.New("empty document id supplied")

	// ErrMalformedPredicate is returned when a predicate expression does not
	// split into one, two or three tokens.
	ErrMalformedPredicate = errors.New("malformed predicate expression")

	// ErrDocumentAlreadyBound is returned when an Entity that already holds
	// a document reference is bound again.
	ErrDocumentAlreadyBound = errors.New("entity is already bound to a document")

	// ErrNoDocumentBound is returned by Entity operations that need a bound
	// document reference when none has been set.
	ErrNoDocumentBound = errors.New("entity is not bound to a document")
)

// ErrNotFound reports that a required document does not exist. It aliases the
// driver sentinel so callers can match either package with errors.Is.
var ErrNotFound = driver.ErrNotFound
