package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/Rrens/estate-chat/internal/mcp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Adapter implements mcp.Adapter for PostgreSQL
type Adapter struct {
	pool   *pgxpool.Pool
	tables []string
}

var _ mcp.Adapter = (*Adapter)(nil)

// NewAdapter creates a new PostgreSQL adapter
func NewAdapter() mcp.Adapter {
	return &Adapter{}
}

// DatabaseType returns the database type identifier
func (a *Adapter) DatabaseType() string {
	return "postgres"
}

// SQLDialect returns SQL dialect hints for LLM prompting
func (a *Adapter) SQLDialect() string {
	return `PostgreSQL SQL dialect:
- Case-insensitive matching: ILIKE instead of LIKE
- Date truncation: DATE_TRUNC('month', date_column)
- Date extraction: EXTRACT(YEAR FROM date_column)
- Pagination: LIMIT n OFFSET m
- NULL handling: COALESCE(column, default_value), NULLIF(a, b)
- Rounding numeric averages: ROUND(AVG(value)::numeric, 2)
- Aggregate functions: COUNT(), SUM(), AVG(), MIN(), MAX()
- Window functions: ROW_NUMBER(), RANK(), LAG(), LEAD()
- Common table expressions (CTEs): WITH cte AS (SELECT ...)`
}

// DSN builds a pgx connection string from config.
func DSN(config mcp.ConnectionConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(config.Username, config.Password),
		Host:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Path:   "/" + config.Database,
	}
	if config.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {config.SSLMode}}.Encode()
	}
	return u.String()
}

// Connect opens a small read-only pool against the warehouse
func (a *Adapter) Connect(ctx context.Context, config mcp.ConnectionConfig) error {
	poolConfig, err := pgxpool.ParseConfig(DSN(config))
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	// Every session is read-only; generated SQL never writes.
	poolConfig.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping: %w", err)
	}

	a.pool = pool
	a.tables = config.Tables
	return nil
}

// Close closes the connection
func (a *Adapter) Close() error {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return nil
}

// HealthCheck verifies connection is alive
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.pool == nil {
		return fmt.Errorf("not connected")
	}
	return a.pool.Ping(ctx)
}

// schemaQuery lists the columns of the requested public tables with their
// nullability and primary-key membership.
const schemaQuery = `
	SELECT
		c.table_name::text,
		c.column_name::text,
		c.data_type::text,
		c.is_nullable = 'YES',
		EXISTS (
			SELECT 1
			FROM information_schema.key_column_usage kcu
			JOIN information_schema.table_constraints tc
			  ON tc.constraint_name = kcu.constraint_name
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND kcu.table_name = c.table_name
			  AND kcu.column_name = c.column_name
		)
	FROM information_schema.columns c
	WHERE c.table_schema = 'public' AND c.table_name = ANY($1)
	ORDER BY c.table_name, c.ordinal_position
`

// GetSchemaDDL renders CREATE TABLE statements for the configured tables
func (a *Adapter) GetSchemaDDL(ctx context.Context) (string, error) {
	if len(a.tables) == 0 {
		return "", nil
	}

	rows, err := a.pool.Query(ctx, schemaQuery, a.tables)
	if err != nil {
		return "", fmt.Errorf("failed to get schema: %w", err)
	}
	columns, err := pgx.CollectRows(rows, pgx.RowToStructByPos[mcp.ColumnInfo])
	if err != nil {
		return "", fmt.Errorf("failed to read schema: %w", err)
	}

	return mcp.RenderDDL(columns, nil), nil
}

// ValidateQuery validates SQL is safe to execute
func (a *Adapter) ValidateQuery(sql string) error {
	return mcp.ValidateSQL(sql, mcp.PostgresBlockedPatterns)
}

// ExecuteQuery executes read-only SQL query
func (a *Adapter) ExecuteQuery(ctx context.Context, sql string, opts mcp.QueryOptions) (*mcp.QueryResult, error) {
	if err := a.ValidateQuery(sql); err != nil {
		return nil, err
	}

	sql = mcp.EnforceLimit(sql, opts.MaxRows)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rows, err := a.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}

	// One row past MaxRows is read so truncation can be reported.
	var values [][]any
	for len(values) <= opts.MaxRows && rows.Next() {
		row, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to get row values: %w", err)
		}
		values = append(values, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return mcp.NewQueryResult(columns, values, opts.MaxRows), nil
}
