package migrations

import "embed"

// FS contains embedded SQLite migrations for committy storage.
//
//go:embed *.sql
var FS embed.FS
