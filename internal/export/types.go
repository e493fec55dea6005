// Package export turns generated documents into downloadable office files.
package export

import (
	"errors"
	"strings"
)

// Format is the export output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
	FormatXLSX Format = "xlsx"
)

var mimeTypes = map[string]string{
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"pdf":  "application/pdf",
}

// MimeType maps a file extension, with or without the dot, to its content type.
func MimeType(ext string) string {
	if m, ok := mimeTypes[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return m
	}
	return "application/octet-stream"
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrContentUnavailable indicates there is no document to export.
	ErrContentUnavailable = errors.New("export content unavailable")
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrPandocMissing indicates DOCX and PPTX export runtime dependencies are unavailable.
	ErrPandocMissing = errors.New("export pandoc dependency missing")

	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrTemplateNotFound  = errors.New("template not found")
)
