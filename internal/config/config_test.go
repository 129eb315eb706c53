package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 720*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.AutoMigrate)
	assert.True(t, cfg.DevSecret())
}

func TestFromViper_Env(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/x.db", cfg.DSN())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "pw", cfg.DBPassword)
	assert.False(t, cfg.DevSecret())
}

func TestFromViper_Rejects(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := FromViper(newViper())
	assert.Error(t, err)
}

func TestConnString(t *testing.T) {
	cfg := &Config{DBDriver: "postgres", DBHost: "db", DBPort: 5433, DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.ConnString())
	assert.Equal(t, cfg.ConnString(), cfg.DSN())
}
