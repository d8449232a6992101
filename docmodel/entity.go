package docmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/docmodel/docmodel-go/docmodel/driver"
)

// An Entity is a mutable record built from a Row. It owns a map of attribute
// values, a set of date field names that are lazily coerced to time.Time on
// access, and an optional back-reference to the originating document used for
// later operations such as re-fetch or delete. The back-reference, once set,
// is immutable for the remaining life of the instance.
type Entity struct {
	keyField   string
	attrs      Row
	dateFields map[string]struct{}
	ref        driver.DocumentRef
}

// NewEntity builds an Entity from a Row. keyField names the attribute holding
// the primary key; dateFields name the attributes coerced to time.Time when
// read through Get.
func NewEntity(keyField string, attrs Row, dateFields ...string) *Entity {
	entity := &Entity{
		keyField:   keyField,
		attrs:      make(Row, len(attrs)),
		dateFields: make(map[string]struct{}, len(dateFields)),
	}

	for field, value := range attrs {
		entity.attrs[field] = value
	}

	for _, field := range dateFields {
		entity.dateFields[field] = struct{}{}
	}

	return entity
}

// BindDocument attaches the originating document reference. It may be called
// at most once; a second call returns ErrDocumentAlreadyBound and leaves the
// existing reference in place.
func (e *Entity) BindDocument(ref driver.DocumentRef) error {
	if e.ref != nil {
		return ErrDocumentAlreadyBound
	}

	e.ref = ref

	return nil
}

// Document returns the bound document reference, or nil when the entity was
// not produced from a store read.
func (e *Entity) Document() driver.DocumentRef {
	return e.ref
}

// ID returns the bound document's id when a document is attached, else the
// key attribute. The two cannot diverge once a document is bound.
func (e *Entity) ID() string {
	if e.ref != nil {
		return e.ref.ID()
	}

	value, ok := e.attrs[e.keyField]
	if !ok {
		return ""
	}

	if s, isString := value.(string); isString {
		return s
	}

	return fmt.Sprintf("%v", value)
}

// Get returns the named attribute. Date fields are coerced to time.Time on
// first access and the coerced value is cached.
func (e *Entity) Get(field string) any {
	value, ok := e.attrs[field]
	if !ok {
		return nil
	}

	if _, isDate := e.dateFields[field]; isDate {
		if coerced, err := coerceDate(value); err == nil {
			e.attrs[field] = coerced
			return coerced
		}
	}

	return value
}

// Set assigns the named attribute.
func (e *Entity) Set(field string, value any) {
	e.attrs[field] = value
}

// Fields returns a copy of the current attributes.
func (e *Entity) Fields() Row {
	fields := make(Row, len(e.attrs))
	for field, value := range e.attrs {
		fields[field] = value
	}

	return fields
}

// Refresh re-reads the bound document and replaces the data attributes with
// the stored state. Returns ErrNoDocumentBound when no document is attached
// and ErrNotFound when the document no longer exists.
func (e *Entity) Refresh(ctx context.Context) error {
	if e.ref == nil {
		return ErrNoDocumentBound
	}

	snapshot, err := e.ref.Get(ctx)
	if err != nil {
		return err
	}

	if snapshot == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, e.ref.Path())
	}

	for field, value := range snapshot.Data() {
		e.attrs[field] = value
	}

	return nil
}

// Delete removes the bound document from the store.
func (e *Entity) Delete(ctx context.Context) error {
	if e.ref == nil {
		return ErrNoDocumentBound
	}

	return e.ref.Delete(ctx)
}

// coerceDate converts the common wire representations of an instant into
// time.Time: time.Time pass-through, RFC 3339 strings, the "2006-01-02
// 15:04:05" layout, and unix seconds as integer or float.
func coerceDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil

	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as a time value", v)

	case int:
		return time.Unix(int64(v), 0).UTC(), nil

	case int64:
		return time.Unix(v, 0).UTC(), nil

	case float64:
		return time.Unix(int64(v), 0).UTC(), nil

	default:
		return time.Time{}, fmt.Errorf("cannot coerce %T to a time value", value)
	}
}
