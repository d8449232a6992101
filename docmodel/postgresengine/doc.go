// Package postgresengine provides a PostgreSQL implementation of the docmodel
// driver contract.
//
// Documents are stored as JSONB rows in a single table, keyed by the full
// collection path and the document id. Query predicates translate to JSONB
// operators: top-level equality uses @> containment so a GIN index on the
// data column can serve it, everything else extracts fields with #>/#>>.
// Partial updates render as jsonb_set chains, and the server-timestamp
// sentinel resolves against the database clock via now().
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Collection groups and nested sub-collections through path prefixes
//   - Server-maintained create/update instants per document row
//   - Configurable table name and structured logging
//
// Expected schema:
//
//	CREATE TABLE documents (
//	    path       TEXT        NOT NULL,
//	    id         TEXT        NOT NULL,
//	    data       JSONB       NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (path, id)
//	);
//	CREATE INDEX documents_data_idx ON documents USING GIN (data);
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewEngineFromPGXPool(db)
//
//	// With a custom table and operational logging
//	store, _ := postgresengine.NewEngineFromPGXPool(
//		db,
//		postgresengine.WithTableName("my_documents"),
//		postgresengine.WithLogger(logger),
//	)
//
//	snapshots, _ := store.Collection("users").Where("age", ">=", 21).Documents(ctx)
package postgresengine
