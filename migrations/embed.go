// Package migrations embeds the schema migrations for every supported dialect.
// Each dialect lives in its own directory named after config.Driver*.
package migrations

import "embed"

//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql
var FS embed.FS
