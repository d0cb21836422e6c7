package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cardmatch.log")

	log, err := New(Config{Level: "debug", Encoding: "json", OutputPath: path})
	require.NoError(t, err)

	log.Named("test").Debug("hello")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"msg":"hello"`), line)
	assert.True(t, strings.Contains(line, `"level":"DEBUG"`), line)
	assert.True(t, strings.Contains(line, `"logger":"test"`), line)
}

func TestNewFallsBackOnBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardmatch.log")

	log, err := New(Config{Level: "loud", Encoding: "xml", OutputPath: path})
	require.NoError(t, err)

	log.Debug("dropped")
	log.Info("kept")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}
