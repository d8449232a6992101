package docmodel

import (
	"github.com/docmodel/docmodel-go/docmodel/driver"
)

const (
	defaultPrimaryKey   = "id"
	defaultCreatedField = "created_at"
	defaultUpdatedField = "updated_at"
	defaultDeletedField = "deleted_at"

	logMsgOperation        = "model operation: "
	logMsgDocumentInserted = "document inserted"
	logMsgDocumentUpdated  = "document updated"
	logMsgDocumentDeleted  = "document deleted"
	logMsgQueryCompleted   = "query completed"
	logAttrError           = "error"
	logAttrCollection      = "collection"
	logAttrDocumentID      = "document_id"
	logAttrRowCount        = "row_count"
)

// Logger interface for operational logging and error reporting. It matches
// the log/slog method set so a *slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// A Model maps rows onto the documents of one collection. Configuration is
// fixed at construction; the Model holds no per-query state, so one instance
// can serve many independent Builder values.
type Model struct {
	store          driver.Store
	collection     string
	primaryKey     string
	allowedFields  []string
	protectFields  bool
	useTimestamps  bool
	createdField   string
	updatedField   string
	useSoftDeletes bool
	deletedField   string
	groupedQueries bool
	dateFields     []string
	logger         Logger
}

// Option defines a functional option for configuring a Model.
type Option func(*Model) error

// WithPrimaryKey sets the field name holding the document identifier.
// Defaults to "id".
func WithPrimaryKey(field string) Option {
	return func(m *Model) error {
		if field == "" {
			return ErrEmptyPrimaryKey
		}

		m.primaryKey = field

		return nil
	}
}

// WithAllowedFields sets the allow-list applied to insert and update data
// while field protection is enabled.
func WithAllowedFields(fields ...string) Option {
	return func(m *Model) error {
		m.allowedFields = fields
		return nil
	}
}

// WithoutFieldProtection disables the allow-list filter. Mutation input then
// passes through unchanged; the caller accepts the mass-assignment risk
// explicitly.
func WithoutFieldProtection() Option {
	return func(m *Model) error {
		m.protectFields = false
		return nil
	}
}

// WithTimestamps sets the field names used for timestamp bookkeeping.
// Defaults to "created_at" and "updated_at"; timestamping is on by default.
func WithTimestamps(createdField, updatedField string) Option {
	return func(m *Model) error {
		if createdField == "" || updatedField == "" {
			return ErrEmptyFieldName
		}

		m.useTimestamps = true
		m.createdField = createdField
		m.updatedField = updatedField

		return nil
	}
}

// WithoutTimestamps disables timestamp bookkeeping on writes. Fetched rows
// still carry the store's create/update instants under the configured names.
func WithoutTimestamps() Option {
	return func(m *Model) error {
		m.useTimestamps = false
		return nil
	}
}

// WithSoftDeletes enables soft-delete filtering: finder operations exclude
// rows whose named field is set unless the call passes WithDeleted.
func WithSoftDeletes(field string) Option {
	return func(m *Model) error {
		if field == "" {
			return ErrEmptyFieldName
		}

		m.useSoftDeletes = true
		m.deletedField = field

		return nil
	}
}

// WithGroupedQueries binds builders to a collection-group query matching the
// collection name at any depth instead of the one fixed path. Direct document
// operations (find by id, insert, update, delete) keep using the fixed path,
// since a grouped handle supports no document addressing.
func WithGroupedQueries() Option {
	return func(m *Model) error {
		m.groupedQueries = true
		return nil
	}
}

// WithDateFields names the attributes entities coerce to time.Time on access.
func WithDateFields(fields ...string) Option {
	return func(m *Model) error {
		m.dateFields = fields
		return nil
	}
}

// WithLogger sets the logger for the Model. Operations are logged at info
// level, failures at error level. Without a logger the Model is silent.
func WithLogger(logger Logger) Option {
	return func(m *Model) error {
		m.logger = logger
		return nil
	}
}

// NewModel creates a Model bound to one collection of the given store with
// optional configuration.
func NewModel(store driver.Store, collection string, options ...Option) (*Model, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	if collection == "" {
		return nil, ErrEmptyCollectionName
	}

	m := &Model{
		store:         store,
		collection:    collection,
		primaryKey:    defaultPrimaryKey,
		protectFields: true,
		useTimestamps: true,
		createdField:  defaultCreatedField,
		updatedField:  defaultUpdatedField,
		deletedField:  defaultDeletedField,
	}

	for _, option := range options {
		if err := option(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// CollectionName returns the configured collection name.
func (m *Model) CollectionName() string {
	return m.collection
}

// PrimaryKey returns the configured primary-key field name.
func (m *Model) PrimaryKey() string {
	return m.primaryKey
}

// Collection returns a fresh handle to the configured collection, suitable
// for direct document addressing regardless of any query in flight.
func (m *Model) Collection() driver.CollectionRef {
	return m.store.Collection(m.collection)
}

// Store returns the underlying document-store client.
func (m *Model) Store() driver.Store {
	return m.store
}

// querySource returns what fresh builders are bound to: the configured
// collection, or a collection group when grouped queries are enabled.
func (m *Model) querySource() driver.Query {
	if m.groupedQueries {
		return m.store.CollectionGroup(m.collection)
	}

	return m.store.Collection(m.collection)
}

// logOperation logs operational information at info level if a logger is
// configured.
func (m *Model) logOperation(action string, args ...any) {
	if m.logger != nil {
		m.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs error information at error level if a logger is configured.
func (m *Model) logError(message string, err error, args ...any) {
	if m.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		m.logger.Error(message, allArgs...)
	}
}
