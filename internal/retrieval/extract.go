package retrieval

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/documentloaders"
)

const (
	MaxDocumentChars = 100000

	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"

	truncationMarker = "\n\n[...document content truncated due to length...]\n\n"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyText         = errors.New("no text extracted")
	ErrInvalidDataURL    = errors.New("invalid data url")
)

// Kind is the text extractor chosen for a file.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
	KindText    Kind = "text"
	KindUnknown Kind = ""
)

// ExtractError reports which extractor failed.
type ExtractError struct {
	Kind Kind
	Err  error
}

func (e *ExtractError) Error() string { return fmt.Sprintf("extract %s: %v", e.Kind, e.Err) }

func (e *ExtractError) Unwrap() error { return e.Err }

// Detect picks an extractor from the MIME type, falling back to the file extension.
func Detect(mimeType, name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case mimeType == mimePDF || strings.HasSuffix(lower, ".pdf"):
		return KindPDF
	case mimeType == mimeDOCX || strings.HasSuffix(lower, ".docx"):
		return KindDOCX
	case mimeType == mimeText || strings.HasSuffix(lower, ".txt"):
		return KindText
	default:
		return KindUnknown
	}
}

// Truncate keeps the head and the tail of text when it is longer than max characters.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	half := max / 2
	return string(runes[:half]) + truncationMarker + string(runes[len(runes)-half:])
}

// DecodeDataURL returns the payload of a base64 data URL.
func DecodeDataURL(content string) ([]byte, error) {
	_, payload, ok := strings.Cut(content, ",")
	if !ok || payload == "" {
		return nil, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return data, nil
}

// ExtractText pulls plain text out of an uploaded file and truncates it.
func ExtractText(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	kind := Detect(mimeType, name)
	var (
		text string
		err  error
	)
	switch kind {
	case KindPDF:
		text, err = extractPDF(ctx, data)
	case KindDOCX:
		text, err = extractDOCX(data)
	case KindText:
		if !utf8.Valid(data) {
			err = errors.New("text file is not valid utf-8")
		}
		text = string(data)
	default:
		return "", ErrUnsupportedFormat
	}
	if err != nil {
		return "", &ExtractError{Kind: kind, Err: err}
	}
	if kind != KindText && strings.TrimSpace(text) == "" {
		return "", &ExtractError{Kind: kind, Err: ErrEmptyText}
	}
	return Truncate(text, MaxDocumentChars), nil
}

func extractPDF(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	docs, err := loader.Load(ctx)
	if err != nil {
		return "", err
	}
	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, doc.PageContent)
	}
	return strings.Join(pages, "\n"), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return wordText(rc)
	}
	return "", errors.New("word/document.xml not found")
}

// wordText collects w:t runs, one line per paragraph.
func wordText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Attachment is a user-supplied context document. Content is either plain text or a base64 data URL.
type Attachment struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ParseAttachment never fails: problems become bracketed placeholders inside the context text.
func ParseAttachment(ctx context.Context, a Attachment) string {
	if !strings.HasPrefix(a.Content, "data:") {
		return Truncate(a.Content, MaxDocumentChars)
	}
	data, err := DecodeDataURL(a.Content)
	if err != nil {
		return "[Error: Invalid file format]"
	}
	text, err := ExtractText(ctx, a.Name, a.Type, data)
	if err == nil {
		return text
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		kind := a.Type
		if kind == "" {
			kind = "unknown"
		}
		return fmt.Sprintf("[Unsupported file format: %s]", kind)
	}
	var extractErr *ExtractError
	if !errors.As(err, &extractErr) {
		return "[Error processing document content]"
	}
	empty := errors.Is(err, ErrEmptyText)
	switch extractErr.Kind {
	case KindPDF:
		if empty {
			return "[PDF parsing returned empty text]"
		}
		return "[Error parsing PDF content]"
	case KindDOCX:
		if empty {
			return "[DOCX parsing returned empty text]"
		}
		return "[Error parsing DOCX content]"
	case KindText:
		return "[Error parsing text file]"
	}
	return "[Error processing document content]"
}
