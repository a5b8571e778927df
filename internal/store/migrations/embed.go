// Package migrations embeds the SQL schema of the SQLite record store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
