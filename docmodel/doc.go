// Package docmodel provides a relational-style model layer over document
// databases.
//
// A Model translates a small query vocabulary (where, where-in, order-by,
// limit, offset) into document-store operations through the narrow contract
// in the driver sub-package, executes them, and maps the resulting document
// snapshots into rows, entities or caller-supplied struct types. Mutations
// enforce mass-assignment protection via a configurable field allow-list,
// apply server-side timestamp bookkeeping, and distinguish full-overwrite
// upserts (insert with an explicit primary key) from partial path updates.
//
// Key types:
//   - Model: per-collection configuration plus finder and mutation operations
//   - Builder: an immutable-by-convention query value the caller threads
//   - Row: the canonical map shape of one fetched document
//   - Entity: a typed row with lazy date coercion and a document back-reference
//
// Common usage pattern:
//
//	colors, err := docmodel.NewModel(store, "colors",
//		docmodel.WithAllowedFields("name", "hex"),
//		docmodel.WithDateFields("created_at", "updated_at"),
//	)
//	if err != nil {
//		// handle error
//	}
//
//	id, err := colors.Insert(ctx, docmodel.Row{"name": "Red", "hex": "#F00"})
//
//	rows, err := colors.Where("name == Red").OrderBy("hex", "asc").GetRows(ctx)
//
// A Model instance holds no query state; builders are independent values, so
// separate queries never interfere. The Model itself is safe for concurrent
// use as long as the underlying store client is.
package docmodel
