package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Rrens/estate-chat/internal/mcp"
	_ "modernc.org/sqlite"
)

// Adapter implements mcp.Adapter for a SQLite warehouse file
type Adapter struct {
	db     *sql.DB
	tables []string
}

var _ mcp.Adapter = (*Adapter)(nil)

// NewAdapter creates a new SQLite adapter
func NewAdapter() mcp.Adapter {
	return &Adapter{}
}

// DatabaseType returns the database type identifier
func (a *Adapter) DatabaseType() string {
	return "sqlite"
}

// SQLDialect returns SQL dialect hints for LLM prompting
func (a *Adapter) SQLDialect() string {
	return `SQLite SQL dialect:
- Use double quotes for identifiers: "column_name"
- String concatenation: || operator
- Case-insensitive matching: LIKE (case-insensitive for ASCII)
- Date functions: date(), strftime('%Y-%m', date_column)
- Pagination: LIMIT n OFFSET m
- NULL handling: IFNULL(column, default), COALESCE()
- Rounding: ROUND(AVG(value), 2)
- No RIGHT JOIN or FULL OUTER JOIN support (use LEFT JOIN alternatives)`
}

// Connect opens the warehouse file in query-only mode
func (a *Adapter) Connect(ctx context.Context, config mcp.ConnectionConfig) error {
	dbPath := config.Path
	if dbPath == "" {
		dbPath = config.Database
	}
	if dbPath == "" {
		return fmt.Errorf("database file path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=query_only(1)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	a.tables = config.Tables
	return nil
}

// Close closes the connection
func (a *Adapter) Close() error {
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		return err
	}
	return nil
}

// HealthCheck verifies connection is alive
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("not connected")
	}
	return a.db.PingContext(ctx)
}

// GetSchemaDDL returns the stored CREATE statements of the configured tables
func (a *Adapter) GetSchemaDDL(ctx context.Context) (string, error) {
	if len(a.tables) == 0 {
		return "", nil
	}

	query := fmt.Sprintf(`
		SELECT sql
		FROM sqlite_master
		WHERE type = 'table' AND sql IS NOT NULL AND name IN (%s)
		ORDER BY name
	`, mcp.Placeholders(len(a.tables)))

	rows, err := a.db.QueryContext(ctx, query, mcp.TablesAsArgs(a.tables)...)
	if err != nil {
		return "", fmt.Errorf("failed to get schema: %w", err)
	}
	defer rows.Close()

	var statements []string
	for rows.Next() {
		var createSQL string
		if err := rows.Scan(&createSQL); err != nil {
			return "", fmt.Errorf("failed to scan: %w", err)
		}
		statements = append(statements, strings.TrimSpace(createSQL)+";")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to read schema: %w", err)
	}

	return strings.Join(statements, "\n\n"), nil
}

// ValidateQuery validates SQL is safe to execute
func (a *Adapter) ValidateQuery(sql string) error {
	return mcp.ValidateSQL(sql, mcp.SqliteBlockedPatterns)
}

// ExecuteQuery executes read-only SQL query
func (a *Adapter) ExecuteQuery(ctx context.Context, sqlStr string, opts mcp.QueryOptions) (*mcp.QueryResult, error) {
	if err := a.ValidateQuery(sqlStr); err != nil {
		return nil, err
	}

	sqlStr = mcp.EnforceLimit(sqlStr, opts.MaxRows)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rows, err := a.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return mcp.CollectRows(rows, opts.MaxRows)
}
