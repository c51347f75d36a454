package datastore

import (
	"fmt"
	"strings"
)

// dialect captures the SQL differences between supported drivers.
type dialect struct {
	versionQuery string
	tableExists  func(table string) (string, []any)
}

var dialects = map[string]dialect{
	"sqlite3": sqliteDialect,
	"sqlite":  sqliteDialect,
	"postgres": {
		versionQuery: "SELECT version()",
		tableExists: func(table string) (string, []any) {
			schema, name := splitTable(table)
			if schema == "" {
				return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`, []any{name}
			}
			return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2`, []any{schema, name}
		},
	},
}

var sqliteDialect = dialect{
	versionQuery: "SELECT sqlite_version()",
	tableExists: func(table string) (string, []any) {
		schema, name := splitTable(table)
		if schema == "" {
			schema = "main"
		}
		return fmt.Sprintf(`SELECT COUNT(*) FROM %s.sqlite_master WHERE type IN ('table','view') AND name = ? COLLATE NOCASE`, QuoteIdentifier(schema)), []any{name}
	},
}

// Drivers returns the supported driver names.
func Drivers() []string {
	return []string{"postgres", "sqlite", "sqlite3"}
}

func lookupDialect(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return d, nil
}

func splitTable(table string) (schema, name string) {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}

// QuoteIdentifier quotes a possibly schema-qualified identifier, doubling embedded quotes.
func QuoteIdentifier(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
