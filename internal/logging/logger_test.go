package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, slog.LevelInfo, true)

	logger.Debug("hidden")
	logger.Error("fetch failed", "error", errors.New("boom"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"err":"boom"`)
}
