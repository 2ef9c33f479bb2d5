package database

import "embed"

// MigrationsFS embeds the SQL migrations so the binary can migrate its own
// schema on startup via pkg/migration.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
