package migrations

import "embed"

// FS contains embedded SQLite migrations for page storage.
//
//go:embed *.sql
var FS embed.FS
