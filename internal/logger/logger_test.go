package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigureLevels(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Console: &buf})
	Get().Debug("hidden")
	Get().Info("shown", zap.Int("nodes", 3))
	Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), `"nodes"`)

	buf.Reset()
	Configure(Options{Debug: true, Console: &buf})
	Get().Debug("now visible")
	Sync()
	assert.Contains(t, buf.String(), "now visible")
}

func TestConfigureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osmgraph.log")
	var console bytes.Buffer
	Configure(Options{File: path, Console: &console})
	Get().Info("Graph built", zap.Int("ways", 7))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "Graph built", entry["msg"])
	assert.Equal(t, float64(7), entry["ways"])
	assert.Contains(t, console.String(), "Graph built")
}

func TestSet(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	Get().Warn("way references missing nodes", zap.Int("missing", 2))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(2), logs.All()[0].ContextMap()["missing"])
}
