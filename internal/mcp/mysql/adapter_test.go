package mysql

import (
	"testing"

	"github.com/Rrens/estate-chat/internal/mcp"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN(mcp.ConnectionConfig{
		Host:     "warehouse",
		Port:     3306,
		Database: "rep_db",
		Username: "reader",
		Password: "s3cret",
		SSLMode:  "disable",
	})

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "reader", cfg.User)
	assert.Equal(t, "s3cret", cfg.Passwd)
	assert.Equal(t, "warehouse:3306", cfg.Addr)
	assert.Equal(t, "rep_db", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Empty(t, cfg.TLSConfig)
}

func TestValidateQuery(t *testing.T) {
	a := NewAdapter()
	assert.NoError(t, a.ValidateQuery("SELECT * FROM metrics_vals"))
	assert.ErrorIs(t, a.ValidateQuery("SELECT BENCHMARK(1000000, MD5('x'))"), mcp.ErrUnsafeQuery)
}
