package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/bill-ease/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_FileSinkJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	log, err := New(config.LoggerConfig{Level: "warn", OutputPath: path, Format: "json"})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.String("invoice_id", "inv-1"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"invoice_id":"inv-1"`)
	assert.Contains(t, string(data), `"service":"bill-ease"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNew_ConsoleFileHasNoColour(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	log, err := New(config.LoggerConfig{Level: "info", OutputPath: path, Format: "console"})
	require.NoError(t, err)

	log.Info("plain")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO")
	assert.NotContains(t, string(data), "\x1b[")
}

func TestNew_Sampling(t *testing.T) {
	write := func(sampling bool) int {
		path := filepath.Join(t.TempDir(), "server.log")
		log, err := New(config.LoggerConfig{Level: "info", OutputPath: path, Format: "json", Sampling: sampling})
		require.NoError(t, err)
		for i := 0; i < 250; i++ {
			log.Info("request")
		}
		require.NoError(t, log.Sync())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return strings.Count(string(data), `"msg":"request"`)
	}

	assert.Equal(t, 250, write(false))
	assert.Less(t, write(true), 250)
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	log, err := New(config.LoggerConfig{Level: "chatty", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
