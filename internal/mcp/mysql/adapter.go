package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Rrens/estate-chat/internal/mcp"
	"github.com/go-sql-driver/mysql"
)

// Adapter implements mcp.Adapter for MySQL
type Adapter struct {
	db       *sql.DB
	database string
	tables   []string
}

var _ mcp.Adapter = (*Adapter)(nil)

// NewAdapter creates a new MySQL adapter
func NewAdapter() mcp.Adapter {
	return &Adapter{}
}

// DatabaseType returns the database type identifier
func (a *Adapter) DatabaseType() string {
	return "mysql"
}

// SQLDialect returns SQL dialect hints for LLM prompting
func (a *Adapter) SQLDialect() string {
	return `MySQL SQL dialect:
- Use backticks for identifiers: ` + "`column_name`" + `
- String concatenation: CONCAT(a, b)
- Case-insensitive matching: LIKE (case-insensitive by default)
- Date formatting: DATE_FORMAT(date, '%Y-%m')
- Date extraction: YEAR(date), MONTH(date)
- Pagination: LIMIT n OFFSET m
- NULL handling: IFNULL(column, default), COALESCE()
- Rounding: ROUND(AVG(value), 2)
- Use single quotes for strings`
}

// DSN builds the driver connection string for config.
func DSN(config mcp.ConnectionConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = config.Username
	cfg.Passwd = config.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	cfg.DBName = config.Database
	cfg.ParseTime = true
	cfg.Timeout = 10 * time.Second
	if config.SSLMode == "require" || config.SSLMode == "verify-full" {
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN()
}

// Connect establishes connection to MySQL
func (a *Adapter) Connect(ctx context.Context, config mcp.ConnectionConfig) error {
	db, err := sql.Open("mysql", DSN(config))
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping: %w", err)
	}

	a.db = db
	a.database = config.Database
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

// GetSchemaDDL renders CREATE TABLE statements for the configured tables
func (a *Adapter) GetSchemaDDL(ctx context.Context) (string, error) {
	if len(a.tables) == 0 {
		return "", nil
	}

	query := fmt.Sprintf(`
		SELECT table_name, column_name, column_type, is_nullable, column_key
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name IN (%s)
		ORDER BY table_name, ordinal_position
	`, mcp.Placeholders(len(a.tables)))

	args := append([]any{a.database}, mcp.TablesAsArgs(a.tables)...)
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("failed to get schema: %w", err)
	}
	defer rows.Close()

	var columns []mcp.ColumnInfo
	for rows.Next() {
		var (
			c             mcp.ColumnInfo
			nullable, key string
		)
		if err := rows.Scan(&c.Table, &c.Column, &c.DataType, &nullable, &key); err != nil {
			return "", fmt.Errorf("failed to scan: %w", err)
		}
		c.Nullable = nullable == "YES"
		c.PrimaryKey = key == "PRI"
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to read schema: %w", err)
	}

	return mcp.RenderDDL(columns, quoteIdent), nil
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ValidateQuery validates SQL is safe to execute
func (a *Adapter) ValidateQuery(sql string) error {
	return mcp.ValidateSQL(sql, mcp.MysqlBlockedPatterns)
}

// ExecuteQuery executes read-only SQL query
func (a *Adapter) ExecuteQuery(ctx context.Context, query string, opts mcp.QueryOptions) (*mcp.QueryResult, error) {
	if err := a.ValidateQuery(query); err != nil {
		return nil, err
	}

	query = mcp.EnforceLimit(query, opts.MaxRows)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read-only transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return mcp.CollectRows(rows, opts.MaxRows)
}
