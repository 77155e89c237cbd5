// Package migrations embeds the SQL migrations of every supported database.
package migrations

import "embed"

// FS holds one directory per database type ("mysql", "sqlite").
//
//go:embed mysql/*.sql sqlite/*.sql
var FS embed.FS
