// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contiene las migraciones del esquema, en formato goose.
//
//go:embed *.sql
var FS embed.FS
