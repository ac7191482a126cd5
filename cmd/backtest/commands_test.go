package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/line-edge/internal/logger"
)

func TestParseAsOf(t *testing.T) {
	got, err := parseAsOf("2023-11-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 11, 10, 0, 0, 0, 0, time.UTC), got)

	got, err = parseAsOf("2023-11-10T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())

	_, err = parseAsOf("last tuesday")
	assert.Error(t, err)

	got, err = parseAsOf("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got, time.Minute)
}

func TestWriteJSON(t *testing.T) {
	appLog = logger.Discard()
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, writeJSON("", "ignored.json", map[string]int{"a": 1}))
	require.NoError(t, writeJSON(dir, "report.json", map[string]int{"bets": 3}))

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"bets": 3}`, string(data))
}
