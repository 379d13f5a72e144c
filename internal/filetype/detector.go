package filetype

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

const pdfMIME = "application/pdf"

// FileTypeInfo contains detected file type information
type FileTypeInfo struct {
	MIMEType    string
	Extension   string
	Supported   bool
	Description string
}

// UnsupportedError is returned when the input is not a PDF.
type UnsupportedError struct {
	Name string
	Info *FileTypeInfo
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not a PDF document (%s)", e.Name, e.Info.Description)
}

// Detector handles file type detection using magic bytes
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// DetectBytes detects the type of an in-memory document. name is only used for logging.
func (d *Detector) DetectBytes(name string, data []byte) *FileTypeInfo {
	info := d.classify(mimetype.Detect(data), name)
	log.Debug().Str("mime", info.MIMEType).Str("ext", info.Extension).Str("file", name).Int("size", len(data)).Msg("detected file type")
	return info
}

// RequirePDF returns an *UnsupportedError unless data is a PDF.
func (d *Detector) RequirePDF(name string, data []byte) error {
	info := d.DetectBytes(name, data)
	if !info.Supported {
		return &UnsupportedError{Name: name, Info: info}
	}
	return nil
}

func (d *Detector) classify(mtype *mimetype.MIME, name string) *FileTypeInfo {
	info := &FileTypeInfo{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
	}

	switch {
	case mtype.Is(pdfMIME):
		info.Supported = true
		info.Description = "PDF document"
	case mtype.Is("application/postscript"):
		info.Description = "PostScript document, convert it to PDF first"
	case strings.HasPrefix(info.MIMEType, "image/"):
		info.Description = "Image file"
	case strings.HasPrefix(info.MIMEType, "text/"):
		info.Description = "Plain text file"
	default:
		info.Description = fmt.Sprintf("Unsupported file type: %s", info.MIMEType)
	}

	// A .pdf name on something else is worth a warning: usually a truncated download.
	if !info.Supported && strings.EqualFold(filepath.Ext(name), ".pdf") {
		log.Warn().Str("file", name).Str("mime", info.MIMEType).Msg("file has .pdf extension but is not a PDF")
	}
	return info
}
