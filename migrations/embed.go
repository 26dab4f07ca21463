// Package migrations embeds the schema migrations of every supported driver,
// one directory per driver.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
