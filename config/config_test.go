package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	conf, err := New("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", conf.Database.Driver)
	assert.Equal(t, "local", conf.Storage.Backend)
	assert.Equal(t, "/uploads", conf.Storage.PublicPrefix)
	assert.False(t, conf.Storage.CleanupOnFailure)
	assert.Equal(t, 5*time.Second, conf.HTTPServer.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, conf.HTTPServer.AllowOrigins)
}

func TestNewReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	content := "DATABASE_DRIVER=postgres\n" +
		"POSTGRES_HOST=db\n" +
		"UPLOADS_DIR=/var/lib/blog/uploads\n" +
		"UPLOADS_CLEANUP_ON_FAILURE=true\n" +
		"DISPLAY_TIMEZONE=UTC\n"
	require.NoError(t, os.WriteFile(env, []byte(content), 0o600))

	for _, key := range []string{"DATABASE_DRIVER", "POSTGRES_HOST", "UPLOADS_DIR", "UPLOADS_CLEANUP_ON_FAILURE", "DISPLAY_TIMEZONE"} {
		t.Setenv(key, "")
	}

	conf, err := New(env)
	require.NoError(t, err)

	assert.Equal(t, "postgres", conf.Database.Driver)
	assert.Equal(t, "db", conf.Postgres.Host)
	assert.Equal(t, "/var/lib/blog/uploads", conf.Storage.UploadsDir)
	assert.True(t, conf.Storage.CleanupOnFailure)

	loc, err := conf.View.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestNewMissingEnvFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "godotenv.Overload")
}

func TestPostgresDSN(t *testing.T) {
	p := Postgres{User: "u", Pass: "p", Host: "h", Port: "5432", DB: "blog", Timeout: 3 * time.Second}
	assert.Equal(t, "postgresql://u:p@h:5432/blog?sslmode=disable&connect_timeout=3", p.DSN())
}

func TestViewLocationUnknown(t *testing.T) {
	_, err := View{TimeZone: "Nowhere/Special"}.Location()
	assert.Error(t, err)
}
