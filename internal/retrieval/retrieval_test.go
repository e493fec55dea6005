package retrieval

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func docxBytes(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTruncateKeepsHeadAndTail(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched text, got %q", got)
	}
	text := strings.Repeat("a", 10) + strings.Repeat("b", 10)
	got := Truncate(text, 10)
	want := "aaaaa" + truncationMarker + "bbbbb"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDetect(t *testing.T) {
	cases := []struct {
		mime, name string
		want       Kind
	}{
		{"application/pdf", "x", KindPDF},
		{"", "Report.PDF", KindPDF},
		{"", "letter.docx", KindDOCX},
		{"text/plain", "notes", KindText},
		{"", "notes.txt", KindText},
		{"image/png", "logo.png", KindUnknown},
	}
	for _, tc := range cases {
		if got := Detect(tc.mime, tc.name); got != tc.want {
			t.Fatalf("Detect(%q,%q) expected %q, got %q", tc.mime, tc.name, tc.want, got)
		}
	}
}

func TestParseAttachmentPlainText(t *testing.T) {
	got := ParseAttachment(context.Background(), Attachment{Name: "notes", Content: "pasted context"})
	if got != "pasted context" {
		t.Fatalf("expected raw text, got %q", got)
	}
}

func TestParseAttachmentDataURLs(t *testing.T) {
	ctx := context.Background()
	docx := docxBytes(t, `<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> world</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t></w:r></w:p>`)
	emptyDocx := docxBytes(t, `<w:p></w:p>`)

	cases := []struct {
		name string
		att  Attachment
		want string
	}{
		{"text file", Attachment{Name: "a.txt", Type: "text/plain", Content: dataURL("text/plain", []byte("from a file"))}, "from a file"},
		{"docx", Attachment{Name: "a.docx", Content: dataURL(mimeDOCX, docx)}, "Hello world\nSecond"},
		{"empty docx", Attachment{Name: "a.docx", Content: dataURL(mimeDOCX, emptyDocx)}, "[DOCX parsing returned empty text]"},
		{"broken docx", Attachment{Name: "a.docx", Content: dataURL(mimeDOCX, []byte("not a zip"))}, "[Error parsing DOCX content]"},
		{"broken pdf", Attachment{Name: "a.pdf", Type: mimePDF, Content: dataURL(mimePDF, []byte("not a pdf"))}, "[Error parsing PDF content]"},
		{"unsupported", Attachment{Name: "a.png", Type: "image/png", Content: dataURL("image/png", []byte{1, 2})}, "[Unsupported file format: image/png]"},
		{"unsupported untyped", Attachment{Name: "a.bin", Content: dataURL("", []byte{1, 2})}, "[Unsupported file format: unknown]"},
		{"missing payload", Attachment{Name: "a.txt", Content: "data:text/plain;base64,"}, "[Error: Invalid file format]"},
		{"no comma", Attachment{Name: "a.txt", Content: "data:text/plain"}, "[Error: Invalid file format]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseAttachment(ctx, tc.att); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractTextUnsupported(t *testing.T) {
	_, err := ExtractText(context.Background(), "image.png", "image/png", []byte{0})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestContextFromDocumentsBudget(t *testing.T) {
	if got := ContextFromDocuments(nil, ContextBudget); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}

	docs := []Reference{
		{Title: "First", Content: "alpha"},
		{Title: "", Content: "beta"},
		{Title: "Skipped", Content: ""},
	}
	want := "RELEVANT CONTEXT:\n\nDOCUMENT: First\nalpha\n\nDOCUMENT: Untitled\nbeta\n\n"
	if got := ContextFromDocuments(docs, ContextBudget); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	long := []Reference{{Title: "Big", Content: strings.Repeat("x", 5000)}}
	got := ContextFromDocuments(long, 300)
	header := "RELEVANT CONTEXT:\n\n"
	remaining := 300 - len(header)
	wantCut := header + "DOCUMENT: Big\n" + strings.Repeat("x", remaining-50) + "...\n\n"
	if got != wantCut {
		t.Fatalf("expected truncated document of %d chars, got %d chars", len(wantCut), len(got))
	}

	tight := []Reference{{Title: "Big", Content: strings.Repeat("x", 5000)}}
	if got := ContextFromDocuments(tight, 100); got != header {
		t.Fatalf("expected only the header when little budget remains, got %q", got)
	}
}

func TestAttachmentContextHeaders(t *testing.T) {
	ctx := context.Background()
	atts := []Attachment{{Name: "notes.txt", Content: "one"}, {Name: "more", Content: "two"}}

	got := AttachmentContext(ctx, "", atts)
	want := "USER-PROVIDED CONTEXT:\n\nDOCUMENT 1: notes.txt\none\n\nDOCUMENT 2: more\ntwo\n\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got = AttachmentContext(ctx, "existing", atts[:1])
	want = "existing\n\nADDITIONAL USER-PROVIDED CONTEXT:\n\nDOCUMENT 1: notes.txt\none\n\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildResolvesLibraryDocuments(t *testing.T) {
	lib := LibraryFunc(func(_ context.Context, ids []string) ([]Reference, error) {
		return []Reference{{ID: ids[0], Title: "Impact", Content: "45 million meals"}}, nil
	})
	r := NewRetriever(lib, zerolog.Nop(), nil)
	res := r.Build(context.Background(), Request{SelectedIDs: []string{"doc2"}})
	if res.Degraded {
		t.Fatal("expected a non-degraded result")
	}
	if !res.Used || !strings.Contains(res.Context, "DOCUMENT: Impact\n45 million meals") {
		t.Fatalf("expected resolved document in context, got %q", res.Context)
	}
}

func TestBuildFallsBackWhenLibraryFails(t *testing.T) {
	lib := LibraryFunc(func(context.Context, []string) ([]Reference, error) {
		return nil, errors.New("connection refused")
	})
	r := NewRetriever(lib, zerolog.Nop(), nil)
	res := r.Build(context.Background(), Request{
		SelectedIDs: []string{"doc1"},
		Attachments: []Attachment{{Name: "brief", Content: "extra"}},
	})
	if !res.Degraded {
		t.Fatal("expected degraded result")
	}
	want := FallbackContext + "\n\nADDITIONAL USER-PROVIDED CONTEXT:\n\nDOCUMENT 1: brief\nextra\n\n"
	if res.Context != want {
		t.Fatalf("expected fallback plus attachments, got %q", res.Context)
	}
}

func TestBuildWithoutLibraryIsDegraded(t *testing.T) {
	r := NewRetriever(nil, zerolog.Nop(), nil)
	res := r.Build(context.Background(), Request{SelectedIDs: []string{"doc1"}})
	if !res.Degraded || res.Context != FallbackContext {
		t.Fatalf("expected fallback context, got degraded=%v %q", res.Degraded, res.Context)
	}
}

func TestBuildInlineSelection(t *testing.T) {
	r := NewRetriever(nil, zerolog.Nop(), nil)
	res := r.Build(context.Background(), Request{Selected: []Reference{{Title: "Inline", Content: "given"}}})
	if res.Degraded || !strings.HasPrefix(res.Context, "RELEVANT CONTEXT:") {
		t.Fatalf("expected inline documents to be used, got degraded=%v %q", res.Degraded, res.Context)
	}
}

func TestBuildEmptyRequest(t *testing.T) {
	r := NewRetriever(nil, zerolog.Nop(), nil)
	res := r.Build(context.Background(), Request{})
	if res.Used || res.Context != "" || res.Degraded {
		t.Fatalf("expected unused empty result, got %+v", res)
	}
}

func TestChunk(t *testing.T) {
	para := strings.Repeat("Food banks distribute meals. ", 40)
	text := para + "\n\n" + para + "\n\n" + para
	chunks, err := Chunk(text)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > ChunkSize {
			t.Fatalf("chunk %d exceeds %d chars: %d", i, ChunkSize, len(c))
		}
	}
}
