package db

import "embed"

// MigrationFS holds the schema: accounts first, then audit_logs.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
