package filetype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfbooklet/internal/pdftest"
)

func TestDetectBytesPDF(t *testing.T) {
	info := New().DetectBytes("a.pdf", pdftest.Build(pdftest.Uniform(1, 100, 100)))
	assert.True(t, info.Supported)
	assert.Equal(t, "application/pdf", info.MIMEType)
	assert.Equal(t, ".pdf", info.Extension)
}

func TestRequirePDFRejectsText(t *testing.T) {
	err := New().RequirePDF("notes.pdf", []byte("just some words\n"))
	var ue *UnsupportedError
	require.True(t, errors.As(err, &ue))
	assert.False(t, ue.Info.Supported)
	assert.Contains(t, err.Error(), "notes.pdf is not a PDF document")
}
