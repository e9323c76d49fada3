// Package migrations embeds the PostgreSQL schema migrations so the migrate
// command and the e2e suite do not depend on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
