// Package migrations embeds the SQL schema for the activation journal so
// the binary can migrate its database without files on disk.
package migrations

import "embed"

// FS holds every *.sql migration at its root.
//
//go:embed *.sql
var FS embed.FS
