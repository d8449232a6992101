// Package adapters decouples the Postgres engine from a concrete database
// client. The engine speaks the small DBAdapter interface; adapters wrap
// pgxpool.Pool, sql.DB and sqlx.DB behind it so callers can bring whichever
// client their application already uses.
package adapters
