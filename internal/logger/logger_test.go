package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "nested", "pagetype.log")

		l, err := New(Config{Level: "debug", File: logFile})
		require.NoError(t, err)

		l.Info().Str("source", "page.html").Msg("session started")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"session started"`)
		assert.Contains(t, string(data), `"source":"page.html"`)
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		l, err := New(Config{Level: "chatty"})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
		assert.NoError(t, l.Close())
	})

	t.Run("level filters debug", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "pagetype.log")
		l, err := New(Config{Level: "warn", File: logFile})
		require.NoError(t, err)

		l.Debug().Msg("hidden")
		l.Warn().Msg("shown")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hidden")
		assert.Contains(t, string(data), "shown")
	})

	t.Run("console alongside file", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "pagetype.log")
		l, err := New(Config{Level: "info", File: logFile, Console: true})
		require.NoError(t, err)

		l.Info().Msg("both sinks")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"both sinks"`)
	})
}
