package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfbooklet/internal/imposition"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Options
	}{
		{
			name: "input only",
			args: []string{"report.pdf"},
			want: Options{InputPath: "report.pdf", OutputPath: "report-booklet-left.pdf", Binding: imposition.BindLeft},
		},
		{
			name: "binding after positionals",
			args: []string{"report.pdf", "out.pdf", "--binding", "right"},
			want: Options{InputPath: "report.pdf", OutputPath: "out.pdf", Binding: imposition.BindRight},
		},
		{
			name: "binding before input, equals form",
			args: []string{"--binding=right", "report.pdf"},
			want: Options{InputPath: "report.pdf", OutputPath: "report-booklet-right.pdf", Binding: imposition.BindRight},
		},
		{
			name: "flags between positionals",
			args: []string{"a.pdf", "-quiet", "b.pdf"},
			want: Options{InputPath: "a.pdf", OutputPath: "b.pdf", Binding: imposition.BindLeft, Quiet: true},
		},
		{
			name: "double dash",
			args: []string{"--binding", "right", "--", "-odd.pdf"},
			want: Options{InputPath: "-odd.pdf", OutputPath: "-odd-booklet-right.pdf", Binding: imposition.BindRight},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errOut bytes.Buffer
			got, err := ParseArgs(tt.args, &errOut)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, errOut.String())
		})
	}
}

func TestParseArgsMissingInput(t *testing.T) {
	_, err := ParseArgs(nil, &bytes.Buffer{})
	var ue *UsageError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, ExitMissingInput, ue.Code)

	_, err = ParseArgs([]string{"--binding", "right"}, &bytes.Buffer{})
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, ExitMissingInput, ue.Code)
}

func TestParseArgsBadFlags(t *testing.T) {
	for _, args := range [][]string{
		{"in.pdf", "--binding", "top"},
		{"in.pdf", "--colour"},
		{"in.pdf", "out.pdf", "extra.pdf"},
		{"in.pdf", "--binding"},
	} {
		var errOut bytes.Buffer
		_, err := ParseArgs(args, &errOut)
		var ue *UsageError
		require.True(t, errors.As(err, &ue), "args %v", args)
		assert.Equal(t, ExitBadFlags, ue.Code, "args %v", args)
		assert.NotEmpty(t, errOut.String(), "args %v", args)
	}
}

func TestParseArgsHelpAndVersion(t *testing.T) {
	_, err := ParseArgs([]string{"-h"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrHelp)

	opts, err := ParseArgs([]string{"--version"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, opts.ShowVersion)
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in      string
		binding imposition.Binding
		want    string
	}{
		{"report.pdf", imposition.BindLeft, "report-booklet-left.pdf"},
		{"report.pdf", imposition.BindRight, "report-booklet-right.pdf"},
		{"dir/My.File.PDF", imposition.BindLeft, "dir/My.File-booklet-left.pdf"},
		{"notes", imposition.BindRight, "notes-booklet-right.pdf"},
		{"s3://bucket/docs/zine.pdf", imposition.BindLeft, "s3://bucket/docs/zine-booklet-left.pdf"},
		{"https://example.com/files/zine.pdf?x=1", imposition.BindLeft, "zine-booklet-left.pdf"},
		{"https://example.com/", imposition.BindRight, "download-booklet-right.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputName(tt.in, tt.binding), tt.in)
	}
}
