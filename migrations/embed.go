// Package migrations embeds the versioned SQL schema, one directory per driver.
package migrations

import "embed"

// FS holds the postgres/ and sqlite/ migration sets.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
