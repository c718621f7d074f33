// Package mcp executes generated read-only SQL against the metrics warehouse.
package mcp

import (
	"context"
	"time"
)

// QueryResult contains query execution result
type QueryResult struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	RowCount  int      `json:"row_count"`
	Truncated bool     `json:"truncated"`
}

// ConnectionConfig contains warehouse connection parameters. Tables limits
// which tables are described to the model; Path is used by file databases.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
	Path     string
	Tables   []string
}

// QueryOptions contains query execution options
type QueryOptions struct {
	MaxRows int
	Timeout time.Duration
}

// Adapter defines the interface for database adapters
type Adapter interface {
	// DatabaseType returns the database type identifier (postgres, mysql, sqlite)
	DatabaseType() string

	// SQLDialect returns SQL dialect hints for LLM prompting
	SQLDialect() string

	// Connect establishes connection to database
	Connect(ctx context.Context, config ConnectionConfig) error

	// Close closes the connection
	Close() error

	// HealthCheck verifies connection is alive
	HealthCheck(ctx context.Context) error

	// GetSchemaDDL returns DDL for the configured tables only
	GetSchemaDDL(ctx context.Context) (string, error)

	// ValidateQuery validates SQL is safe to execute
	ValidateQuery(sql string) error

	// ExecuteQuery executes read-only SQL query
	ExecuteQuery(ctx context.Context, sql string, opts QueryOptions) (*QueryResult, error)
}

// AdapterFactory creates a new adapter instance
type AdapterFactory func() Adapter
