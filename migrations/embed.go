// Package migrations embeds the goose SQL migrations. The API server applies
// them at startup when the postgres trip store is selected; integration tests
// apply them in TestMain.
package migrations

import "embed"

// FS holds every *.sql migration, embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
