package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONToConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "info", Console: &buf}))
	t.Cleanup(Close)

	WithRun("run-1")
	log.Info().Int("pages", 8).Msg("composed")
	log.Debug().Msg("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "composed", ev["message"])
	assert.Equal(t, "run-1", ev["run_id"])
	assert.Equal(t, float64(8), ev["pages"])
}

func TestInitBadLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "chatty", Console: &buf}))

	log.Info().Msg("dropped")
	log.Warn().Msg("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booklet.log")
	require.NoError(t, Init(Options{Level: "info", Console: &bytes.Buffer{}, File: path, MaxSizeMB: 1}))

	log.Info().Msg("to file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestInitFileErrorKeepsConsole(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	var buf bytes.Buffer
	err := Init(Options{Level: "warn", Console: &buf, File: filepath.Join(blocker, "logs", "booklet.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create logs dir")

	log.Debug().Msg("noise")
	log.Warn().Msg("still here")
	assert.NotContains(t, buf.String(), "noise")
	assert.Contains(t, buf.String(), "still here")
}
