package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("test", Options{Level: LevelWarn, NoColor: true, Output: &buf})

	l.Info("hidden %d", 1)
	l.Debug("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 3")
	assert.Contains(t, out, "shown 4")
	assert.Contains(t, out, "component=test")

	buf.Reset()
	l.SetLevel(LevelTrace)
	l.Trace("very detailed")
	assert.Contains(t, buf.String(), "TRC")
	assert.Contains(t, buf.String(), "very detailed")
}

func TestWithPrefixSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger("root", Options{Level: LevelError, NoColor: true, Output: &buf})
	child := root.WithPrefix("child")

	child.Info("dropped")
	assert.Empty(t, buf.String())

	root.SetLevel(LevelInfo)
	child.Info("kept")
	assert.Contains(t, buf.String(), "component=child")
	assert.Contains(t, buf.String(), "kept")
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.log")
	var console bytes.Buffer
	l := NewLogger("file", Options{Level: LevelDebug, File: path, NoColor: true, Output: &console})

	l.Debug("written to %s", "both")
	require.NoError(t, l.core.closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "written to both", entry["msg"])
	assert.Equal(t, "file", entry["component"])
	assert.Contains(t, console.String(), "written to both")
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, LevelDebug, level)

	_, ok = ParseLevel("verbose")
	assert.False(t, ok)
}
