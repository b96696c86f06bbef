package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, ":8000", c.Addr())
	assert.Equal(t, "mysql", c.Database.Driver)
	assert.Equal(t, 5*time.Minute, c.Auth.AccessTTL)
	assert.Equal(t, 24*time.Hour, c.Auth.RefreshTTL)
	assert.Equal(t, "/media", c.Storage.MediaURL)
	assert.Equal(t, 10*time.Second, c.Social.Timeout)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9100
database:
  driver: sqlite
  name: board
auth:
  access_ttl: 15m
storage:
  media_url: files/
social:
  timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("DB_NAME", "override")
	t.Setenv("PORT", "9200")

	c := Load(path)
	assert.Equal(t, ":9200", c.Addr())
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, "override", c.Database.Name)
	assert.Equal(t, 15*time.Minute, c.Auth.AccessTTL)
	assert.Equal(t, "/files", c.Storage.MediaURL)
	assert.Equal(t, 3*time.Second, c.Social.Timeout)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "app.db?_pragma=foreign_keys(1)", SQLiteDSN("app.db"))
	assert.Equal(t, "file:x?mode=memory&_pragma=foreign_keys(1)", SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "a.db?_pragma=foreign_keys(0)", SQLiteDSN("a.db?_pragma=foreign_keys(0)"))
}

func TestOpenSQLite(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	c.Database.Driver = "sqlite"
	c.Database.DSN = filepath.Join(t.TempDir(), "projectly.db")

	db, err := c.OpenGormDB()
	require.NoError(t, err)
	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestUnsupportedDriver(t *testing.T) {
	c := &Config{Database: DatabaseConfig{Driver: "oracle"}}
	_, err := c.Dialector()
	assert.Error(t, err)
}
