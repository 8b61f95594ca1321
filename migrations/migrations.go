// Package migrations holds the SQL schema applied by "nicu-server migrate".
package migrations

import "embed"

// FS contains the numbered *.sql files at its root.
//
//go:embed *.sql
var FS embed.FS
