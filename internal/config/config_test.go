package config

import (
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DB_NAME", "scores.db")

		cfg, err := Parse()
		require.NoError(t, err)
		assert.Equal(t, "scores.db", cfg.DBName)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 2*time.Second, cfg.LockTimeout)
		assert.Equal(t, log.InfoLevel, cfg.Level())
		assert.False(t, cfg.Remote())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DB_NAME", "scores.db")
		t.Setenv("PORT", "9090")
		t.Setenv("LOCK_TIMEOUT", "750ms")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("GCP_PROJECT", "club-scores")
		t.Setenv("TURSO_PRIMARY_URL", "libsql://scores.turso.io")
		t.Setenv("TURSO_AUTH_TOKEN", "secret")

		cfg, err := Parse()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, 750*time.Millisecond, cfg.LockTimeout)
		assert.Equal(t, log.DebugLevel, cfg.Level())
		assert.Equal(t, "club-scores", cfg.ProjectID)
		assert.Equal(t, TursoConfig{PrimaryURL: "libsql://scores.turso.io", AuthToken: "secret"}, cfg.Turso)
		assert.True(t, cfg.Remote())
	})

	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"missing db name", map[string]string{"DB_NAME": ""}},
		{"bad lock timeout", map[string]string{"DB_NAME": "x.db", "LOCK_TIMEOUT": "soon"}},
		{"non-positive lock timeout", map[string]string{"DB_NAME": "x.db", "LOCK_TIMEOUT": "0s"}},
		{"bad log level", map[string]string{"DB_NAME": "x.db", "LOG_LEVEL": "loud"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
