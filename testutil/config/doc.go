// Package config provides database connection configuration for the Postgres
// engine's integration tests. The helpers expect the local test database from
// the repository's compose setup and fail fast when it is unreachable.
package config
