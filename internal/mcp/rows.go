package mcp

import (
	"database/sql"
	"fmt"
	"strings"
)

// CollectRows drains a database/sql result into a QueryResult, keeping at
// most maxRows rows and flagging truncation.
func CollectRows(rows *sql.Rows, maxRows int) (*QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var resultRows [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		resultRows = append(resultRows, values)
		if len(resultRows) > maxRows {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return NewQueryResult(columns, resultRows, maxRows), nil
}

// NewQueryResult trims rows to maxRows and records whether anything was cut.
func NewQueryResult(columns []string, rows [][]any, maxRows int) *QueryResult {
	truncated := len(rows) > maxRows
	if truncated {
		rows = rows[:maxRows]
	}
	return &QueryResult{
		Columns:   columns,
		Rows:      rows,
		RowCount:  len(rows),
		Truncated: truncated,
	}
}

// FormatResult renders a result as a pipe-separated table for prompting.
func FormatResult(r *QueryResult) string {
	if r == nil || len(r.Rows) == 0 {
		return "(no rows)"
	}

	var b strings.Builder
	b.WriteString(strings.Join(r.Columns, " | "))
	b.WriteByte('\n')
	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
	}
	if r.Truncated {
		fmt.Fprintf(&b, "(truncated to %d rows)\n", r.RowCount)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Placeholders returns n comma-separated "?" markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// TablesAsArgs converts table names into query arguments.
func TablesAsArgs(tables []string) []any {
	args := make([]any, len(tables))
	for i, t := range tables {
		args[i] = t
	}
	return args
}
