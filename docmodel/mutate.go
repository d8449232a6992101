package docmodel

import (
	"context"
	"fmt"
	"sort"

	"github.com/docmodel/docmodel-go/docmodel/driver"
)

// normalizeData converts mutation input into a Row. Maps are copied, entities
// contribute their attributes, and any other type is round-tripped through
// the JSON codec so struct input works without a registration step. Empty
// input fails with ErrEmptyData.
func normalizeData(data any) (Row, error) {
	switch v := data.(type) {
	case nil:
		return nil, ErrEmptyData

	case Row:
		if len(v) == 0 {
			return nil, ErrEmptyData
		}

		fields := make(Row, len(v))
		for field, value := range v {
			fields[field] = value
		}

		return fields, nil

	case *Entity:
		if v == nil {
			return nil, ErrEmptyData
		}

		return normalizeData(v.Fields())

	default:
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmptyData, err)
		}

		fields := make(Row)
		if err := json.Unmarshal(encoded, &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmptyData, err)
		}

		if len(fields) == 0 {
			return nil, ErrEmptyData
		}

		return fields, nil
	}
}

// filterAllowedFields applies mass-assignment protection. With protection
// enabled every key not present in the allow-list is dropped; an empty
// allow-list cannot safely process any fields and fails. With protection
// disabled the input passes through unchanged. The filter is idempotent.
func (m *Model) filterAllowedFields(fields Row) (Row, error) {
	if !m.protectFields {
		return fields, nil
	}

	if len(m.allowedFields) == 0 {
		return nil, ErrNoAllowedFields
	}

	filtered := make(Row, len(m.allowedFields))
	for _, field := range m.allowedFields {
		if value, ok := fields[field]; ok {
			filtered[field] = value
		}
	}

	return filtered, nil
}

// extractID pulls an explicit primary-key value out of the input fields. It
// is read before allow-list filtering and used only for routing the write; it
// is written as a data field only when the allow-list permits it.
func (m *Model) extractID(fields Row) string {
	value, ok := fields[m.primaryKey]
	if !ok || value == nil {
		return ""
	}

	if s, isString := value.(string); isString {
		return s
	}

	return fmt.Sprintf("%v", value)
}

// Insert writes a new document. An explicit primary key in the data routes
// the write as a full-overwrite set at that identifier (upsert); otherwise
// the store assigns a fresh identifier. After a successful write a follow-up
// update fills in what the written data did not carry: the primary-key field
// (so key-based queries like FindMany and Builder.Delete can match the
// document) and, when timestamping is enabled, server-generated timestamps
// for the created/updated fields absent from the submitted data. Returns the
// generated or used identifier.
func (m *Model) Insert(ctx context.Context, data any) (string, error) {
	submitted, err := normalizeData(data)
	if err != nil {
		return "", err
	}

	explicitID := m.extractID(submitted)

	fields, err := m.filterAllowedFields(submitted)
	if err != nil {
		return "", err
	}

	collection := m.Collection()

	var ref driver.DocumentRef
	if explicitID != "" {
		ref = collection.Doc(explicitID)
		if setErr := ref.Set(ctx, fields); setErr != nil {
			m.logError(logMsgDocumentInserted, setErr, logAttrDocumentID, explicitID)
			return "", setErr
		}
	} else {
		added, addErr := collection.Add(ctx, fields)
		if addErr != nil {
			m.logError(logMsgDocumentInserted, addErr, logAttrCollection, m.collection)
			return "", addErr
		}
		ref = added
	}

	if stampErr := m.stampAfterInsert(ctx, ref, submitted, fields); stampErr != nil {
		return "", stampErr
	}

	m.logOperation(logMsgDocumentInserted,
		logAttrCollection, m.collection,
		logAttrDocumentID, ref.ID())

	return ref.ID(), nil
}

// stampAfterInsert issues the follow-up update after a write: the primary-key
// field when the written data did not carry it, and server-timestamp sentinels
// for the created/updated fields the caller did not submit.
func (m *Model) stampAfterInsert(ctx context.Context, ref driver.DocumentRef, submitted, written Row) error {
	mods := make([]driver.Mod, 0, 3)

	if _, ok := written[m.primaryKey]; !ok {
		mods = append(mods, driver.Mod{Path: m.primaryKey, Value: ref.ID()})
	}

	if m.useTimestamps {
		if _, ok := submitted[m.createdField]; !ok {
			mods = append(mods, driver.Mod{Path: m.createdField, Value: driver.ServerTimestamp})
		}

		if _, ok := submitted[m.updatedField]; !ok {
			mods = append(mods, driver.Mod{Path: m.updatedField, Value: driver.ServerTimestamp})
		}
	}

	if len(mods) == 0 {
		return nil
	}

	return ref.Update(ctx, mods)
}

// Update issues a partial update against one document: only the named paths
// change, unspecified fields are untouched. Dotted keys in the data address
// nested fields. When timestamping is enabled and the updated field is not
// part of the data, a server-timestamp sentinel is injected for it.
func (m *Model) Update(ctx context.Context, id string, data any) error {
	if id == "" {
		return ErrEmptyID
	}

	fields, err := normalizeData(data)
	if err != nil {
		return err
	}

	fields, err = m.filterAllowedFields(fields)
	if err != nil {
		return err
	}

	if m.useTimestamps {
		if _, ok := fields[m.updatedField]; !ok {
			fields[m.updatedField] = driver.ServerTimestamp
		}
	}

	if updateErr := m.Collection().Doc(id).Update(ctx, modsFromRow(fields)); updateErr != nil {
		m.logError(logMsgDocumentUpdated, updateErr, logAttrDocumentID, id)
		return updateErr
	}

	m.logOperation(logMsgDocumentUpdated,
		logAttrCollection, m.collection,
		logAttrDocumentID, id)

	return nil
}

// Delete removes one document by id on a fresh collection handle. Nested
// sub-collections are not cascaded; that is a documented limitation of the
// delete path. For deleting through a filtered query, see Builder.Delete.
func (m *Model) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}

	if deleteErr := m.Collection().Doc(id).Delete(ctx); deleteErr != nil {
		m.logError(logMsgDocumentDeleted, deleteErr, logAttrDocumentID, id)
		return deleteErr
	}

	m.logOperation(logMsgDocumentDeleted,
		logAttrCollection, m.collection,
		logAttrDocumentID, id)

	return nil
}

// modsFromRow converts a field map into an ordered sequence of path/value
// pairs. Paths are sorted so the resulting statement is deterministic.
func modsFromRow(fields Row) []driver.Mod {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	mods := make([]driver.Mod, 0, len(paths))
	for _, path := range paths {
		mods = append(mods, driver.Mod{Path: path, Value: fields[path]})
	}

	return mods
}
