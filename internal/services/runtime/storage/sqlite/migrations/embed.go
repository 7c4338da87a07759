// Package migrations contains embedded SQL migrations for the SQLite store.
package migrations

import "embed"

//go:embed audit/*.sql
var AuditFS embed.FS
