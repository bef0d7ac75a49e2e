package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, ":8080", c.ListenAddr)
	assert.Equal(t, "http://localhost:8080", c.BackendURL)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.SessionDir)
	assert.Equal(t, "dashboard.db", filepath.Base(c.DBPath))
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/x.db")
	t.Setenv(EnvListenAddr, "127.0.0.1:9000")
	t.Setenv(EnvAdminPassword, "secret")
	t.Setenv(EnvSessionTTL, "90m")
	t.Setenv(EnvLogLevel, "debug")

	c, err := NewConfig().FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", c.DBPath)
	assert.Equal(t, "127.0.0.1:9000", c.ListenAddr)
	assert.Equal(t, "secret", c.AdminPassword)
	assert.Equal(t, 90*time.Minute, c.SessionTTL)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "http://localhost:8080", c.BackendURL)
}

func TestFromEnvRejectsBadTTL(t *testing.T) {
	t.Setenv(EnvSessionTTL, "forever")
	_, err := NewConfig().FromEnv()
	require.Error(t, err)

	t.Setenv(EnvSessionTTL, "-1h")
	_, err = NewConfig().FromEnv()
	require.Error(t, err)
}

func TestSetters(t *testing.T) {
	c := NewConfig().
		WithDBPath(filepath.Join(t.TempDir(), "sub", "d.db")).
		WithBackendURL("http://example:1").
		WithListenAddr(":1").
		WithLogLevel("warn").
		WithLogFile("x.log")
	assert.Equal(t, "http://example:1", c.BackendURL)
	assert.Equal(t, ":1", c.ListenAddr)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "x.log", c.LogFile)
	require.NoError(t, c.EnsureDBDir())
	assert.DirExists(t, filepath.Dir(c.DBPath))
}
