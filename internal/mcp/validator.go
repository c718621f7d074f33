package mcp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsafeQuery is returned for SQL that is not a single read-only statement.
var ErrUnsafeQuery = errors.New("unsafe query")

// Common blocked SQL patterns across all databases
var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bINSERT\b`),
	regexp.MustCompile(`(?i)\bUPDATE\b`),
	regexp.MustCompile(`(?i)\bDELETE\b`),
	regexp.MustCompile(`(?i)\bDROP\b`),
	regexp.MustCompile(`(?i)\bTRUNCATE\b`),
	regexp.MustCompile(`(?i)\bALTER\b`),
	regexp.MustCompile(`(?i)\bCREATE\b`),
	regexp.MustCompile(`(?i)\bGRANT\b`),
	regexp.MustCompile(`(?i)\bREVOKE\b`),
	regexp.MustCompile(`(?i)\bEXEC(UTE)?\b`),
	regexp.MustCompile(`(?i)\bINTO\s+(OUTFILE|DUMPFILE)\b`),
	regexp.MustCompile(`(?i)\bLOAD_FILE\b`),
	regexp.MustCompile(`(?i)\bLOAD\s+DATA\b`),
}

// PostgresBlockedPatterns are file and remote access functions in PostgreSQL
var PostgresBlockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pg_(read|write)_file`),
	regexp.MustCompile(`(?i)pg_ls_dir`),
	regexp.MustCompile(`(?i)lo_(import|export)`),
	regexp.MustCompile(`(?i)\bCOPY\b`),
	regexp.MustCompile(`(?i)dblink`),
	regexp.MustCompile(`(?i)pg_sleep`),
}

// MysqlBlockedPatterns are MySQL-only escape hatches
var MysqlBlockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bSLEEP\s*\(`),
	regexp.MustCompile(`(?i)\bBENCHMARK\s*\(`),
}

// SqliteBlockedPatterns are SQLite-only escape hatches
var SqliteBlockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bATTACH\b`),
	regexp.MustCompile(`(?i)\bDETACH\b`),
	regexp.MustCompile(`(?i)\bPRAGMA\b`),
	regexp.MustCompile(`(?i)load_extension`),
}

var limitPattern = regexp.MustCompile(`(?i)\bLIMIT\s+\d+\s*(OFFSET\s+\d+\s*)?$`)

// ValidateSQL accepts a single SELECT (or WITH ... SELECT) statement.
func ValidateSQL(sql string, additionalPatterns []*regexp.Regexp) error {
	sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")
	if strings.TrimSpace(sql) == "" {
		return fmt.Errorf("%w: empty SQL query", ErrUnsafeQuery)
	}

	if strings.Contains(sql, ";") {
		return fmt.Errorf("%w: multiple statements not allowed", ErrUnsafeQuery)
	}

	normalized := strings.ToUpper(strings.TrimSpace(sql))
	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		return fmt.Errorf("%w: only SELECT statements allowed", ErrUnsafeQuery)
	}

	for _, patterns := range [][]*regexp.Regexp{blockedPatterns, additionalPatterns} {
		for _, pattern := range patterns {
			if pattern.MatchString(sql) {
				return fmt.Errorf("%w: blocked SQL pattern detected", ErrUnsafeQuery)
			}
		}
	}

	return nil
}

// EnforceLimit appends "LIMIT maxRows" unless the statement already ends in a
// LIMIT clause. A limit inside a subquery does not count.
func EnforceLimit(sql string, maxRows int) string {
	sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")
	sql = strings.TrimSpace(sql)

	if maxRows <= 0 || limitPattern.MatchString(sql) {
		return sql
	}

	return fmt.Sprintf("%s LIMIT %d", sql, maxRows)
}
