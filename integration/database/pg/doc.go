// Package pg backs the player secret store with PostgreSQL via pgx.
//
// The schema is managed with embedded goose migrations; call Migrate once
// at startup before constructing the store. Store operations honor a
// pgx.Tx carried in the context (see WithTx), so callers that already run
// inside a transaction keep their atomicity.
package pg
