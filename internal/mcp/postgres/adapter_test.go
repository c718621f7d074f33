package postgres

import (
	"testing"

	"github.com/Rrens/estate-chat/internal/mcp"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN(mcp.ConnectionConfig{
		Host:     "warehouse",
		Port:     4321,
		Database: "rep_db",
		Username: "reader",
		Password: "p@ss word",
		SSLMode:  "disable",
	})

	cfg, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)
	assert.Equal(t, "warehouse", cfg.Host)
	assert.Equal(t, uint16(4321), cfg.Port)
	assert.Equal(t, "rep_db", cfg.Database)
	assert.Equal(t, "reader", cfg.User)
	assert.Equal(t, "p@ss word", cfg.Password)
	assert.Nil(t, cfg.TLSConfig)
}

func TestValidateQuery(t *testing.T) {
	a := &Adapter{}
	assert.NoError(t, a.ValidateQuery("SELECT * FROM metrics_vals"))
	assert.Error(t, a.ValidateQuery("DELETE FROM metrics_vals"))
}
