package db

import "embed"

// MigrationsFS embeds the SQL migrations so the migrate command needs no
// files on disk.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
