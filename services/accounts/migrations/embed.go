// Package migrations embeds the accounts schema for goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
