package mcp

import (
	"fmt"
	"strings"
)

// ColumnInfo is one row of an information_schema column listing.
type ColumnInfo struct {
	Table      string
	Column     string
	DataType   string
	Nullable   bool
	PrimaryKey bool
}

// RenderDDL turns columns, grouped by table in listing order, into CREATE
// TABLE statements. quote wraps identifiers for the target dialect.
func RenderDDL(columns []ColumnInfo, quote func(string) string) string {
	if quote == nil {
		quote = func(s string) string { return s }
	}

	var (
		ddl     strings.Builder
		current string
	)
	for i, c := range columns {
		if i == 0 || c.Table != current {
			if i > 0 {
				ddl.WriteString("\n);\n\n")
			}
			fmt.Fprintf(&ddl, "CREATE TABLE %s (\n", quote(c.Table))
			current = c.Table
		} else {
			ddl.WriteString(",\n")
		}

		fmt.Fprintf(&ddl, "  %s %s", quote(c.Column), c.DataType)
		if !c.Nullable {
			ddl.WriteString(" NOT NULL")
		}
		if c.PrimaryKey {
			ddl.WriteString(" PRIMARY KEY")
		}
	}
	if len(columns) > 0 {
		ddl.WriteString("\n);")
	}
	return ddl.String()
}
