// Package database is the PostgreSQL credential store: connection pooling
// via pgx, embedded tern migrations applied under an advisory lock, and the
// credential repository with optional token encryption at rest.
package database
