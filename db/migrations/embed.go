// Package migrations holds the goose SQL migrations compiled into the binary, one set per dialect.
package migrations

import "embed"

// FS exposes the migration files under sql/<dialect>/.
//
//go:embed sql/*/*.sql
var FS embed.FS

// Root is the directory inside FS holding the per-dialect sets.
const Root = "sql"

// Dir returns the directory goose reads for a goose dialect name.
func Dir(dialect string) string {
	return Root + "/" + dialect
}
