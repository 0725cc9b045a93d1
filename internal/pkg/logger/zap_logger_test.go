package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.log")
	l := NewIsolatedLogger(path)

	l.Info("TopicAssist", "suggestion offered", map[string]interface{}{"anchor": 3})
	l.Warn("TopicAssist", "oracle failed", nil)
	l.Error("TopicAssist", "rename failed", map[string]interface{}{"error": "boom"})
	require.NoError(t, l.Sync())

	all, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "rename failed", all[0].Message, "newest first")
	assert.Equal(t, "TopicAssist", all[0].Module)

	warns, err := l.GetLogs("WARN", 10, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "oracle failed", warns[0].Message)

	byId, err := l.GetLogById(all[2].Id)
	require.NoError(t, err)
	assert.Equal(t, "suggestion offered", byId.Message)

	page, err := l.GetLogs("", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestGetLogsMissingFile(t *testing.T) {
	l := NewIsolatedLogger(filepath.Join(t.TempDir(), "never-written.log"))

	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = l.GetLogById("nope")
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("m", "x", nil)
	l.Error("m", "x", map[string]interface{}{"error": "e"})

	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
