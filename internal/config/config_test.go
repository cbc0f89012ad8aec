package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("uses defaults when the file is missing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, 8181, cfg.Server.Port)
		assert.Equal(t, "libradesk", cfg.Database.Schema)
		assert.False(t, cfg.Redis.Enabled)
		assert.False(t, cfg.Timings.TransactionalSave)
		assert.Equal(t, 256, cfg.Timings.MaxSessions)
		assert.Equal(t, 30, cfg.Timings.SessionIdleMinutes)
		assert.True(t, cfg.Metrics.Enabled)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := []byte("db:\n  host: db.internal\n  port: 6543\ntimings:\n  transactionalsave: true\n")
		require.NoError(t, os.WriteFile(path, content, 0o600))

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.True(t, cfg.Timings.TransactionalSave)
		assert.Equal(t, 256, cfg.Timings.MaxSessions)
		assert.Equal(t, "libradesk", cfg.Database.User)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("redis:\n  addr: file:6379\n"), 0o600))
		t.Setenv("LIBRADESK_REDIS_ADDR", "env:6379")
		t.Setenv("LIBRADESK_REDIS_ENABLED", "true")

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "env:6379", cfg.Redis.Addr)
		assert.True(t, cfg.Redis.Enabled)
	})
}
