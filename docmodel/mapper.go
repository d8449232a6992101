package docmodel

import (
	"github.com/docmodel/docmodel-go/docmodel/driver"
)

// Row is the canonical shape of one fetched document: a mapping from field
// name to value that always carries the primary-key field (the document id)
// and the created/updated timestamp fields alongside the document's own data
// fields.
type Row = map[string]any

// rowFromSnapshot shapes one document snapshot into a Row. The meta fields
// (primary key, created, updated) are written first and the document's own
// data is merged over them, so data fields win on a name collision.
func (m *Model) rowFromSnapshot(snapshot driver.Snapshot) Row {
	data := snapshot.Data()

	row := make(Row, len(data)+3)
	row[m.primaryKey] = snapshot.ID()
	row[m.createdField] = snapshot.CreateTime()
	row[m.updatedField] = snapshot.UpdateTime()

	for field, value := range data {
		row[field] = value
	}

	return row
}

// entityFromSnapshot builds an Entity from a snapshot. The document reference
// is bound after the attributes are filled so the identifier accessor
// resolves consistently from the moment the entity is handed out.
func (m *Model) entityFromSnapshot(snapshot driver.Snapshot) *Entity {
	entity := NewEntity(m.primaryKey, m.rowFromSnapshot(snapshot), m.dateFields...)
	_ = entity.BindDocument(snapshot.Ref())

	return entity
}
