// Package migrations embeds the goose migration sets: the on-device slot
// table for SQLite and the catalog document table for PostgreSQL.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var all embed.FS

// SQLite returns the migrations for the local slot database.
func SQLite() fs.FS {
	sub, _ := fs.Sub(all, "sqlite")
	return sub
}

// Postgres returns the migrations for the catalog document store.
func Postgres() fs.FS {
	sub, _ := fs.Sub(all, "postgres")
	return sub
}
