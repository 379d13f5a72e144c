package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfbooklet/internal/pdftest"
)

func quietEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("METRICS_PUSHGATEWAY_URL", "")
	t.Setenv("SEND_LOGS_TO_AXIOM", "0")
}

func TestRunMissingInputPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Usage: booklet input.pdf [output.pdf] [--binding left|right]")
}

func TestRunBadBinding(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"in.pdf", "--binding", "middle"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "--binding")
}

func TestRunVersion(t *testing.T) {
	var stdout bytes.Buffer
	assert.Equal(t, 0, run([]string{"--version"}, &stdout, &bytes.Buffer{}))
	assert.Equal(t, "booklet dev\n", stdout.String())
}

func TestRunEndToEnd(t *testing.T) {
	quietEnv(t)
	in := pdftest.WriteFile(t, "zine.pdf", pdftest.Uniform(6, 200, 300))

	var stdout, stderr bytes.Buffer
	code := run([]string{in, "--binding", "right"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := strings.TrimSuffix(in, ".pdf") + "-booklet-right.pdf"
	assert.Equal(t, filepath.Dir(in), filepath.Dir(out))
	dims := pdftest.Dims(t, out)
	assert.Len(t, dims, 4)
	assert.Contains(t, stdout.String(), "Booklet PDF saved to "+out)
}

func TestRunUnreadableInput(t *testing.T) {
	quietEnv(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "missing.pdf")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "error: cannot open")
	assert.Empty(t, stdout.String())
}

func TestRunWarnsWhenLogFileUnusable(t *testing.T) {
	quietEnv(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	t.Setenv("LOG_FILE", filepath.Join(blocker, "booklet.log"))

	in := pdftest.WriteFile(t, "zine.pdf", pdftest.Uniform(4, 200, 300))
	var stdout, stderr bytes.Buffer
	code := run([]string{in}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "warning: log file disabled")
}
