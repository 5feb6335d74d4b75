// Package migrations embeds the SQL schema applied by platform/postgres.Migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
