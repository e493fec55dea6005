package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"docgen/api/internal/export"
	"docgen/api/internal/metrics"
	"docgen/api/internal/session"
	"docgen/api/internal/store"
	"docgen/api/internal/vector"
	"docgen/api/internal/workspace"
)

const gardenMarkdown = "# Community Garden Funding\n\nSome text about raised beds."

type fakeLibrary struct {
	mu      sync.Mutex
	pingErr error
	docs    []store.ReferenceDocument
	uploads map[string]store.Upload
}

func (f *fakeLibrary) InsertDocument(_ context.Context, doc store.ReferenceDocument) (store.ReferenceDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc.CreatedAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	f.docs = append(f.docs, doc)
	return doc, nil
}

func (f *fakeLibrary) InsertUpload(_ context.Context, upload store.Upload, chunks []store.ReferenceDocument) (store.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = make(map[string]store.Upload)
	}
	upload.ChunkCount = len(chunks)
	f.uploads[upload.BlobKey] = upload
	f.docs = append(f.docs, chunks...)
	return upload, nil
}

func (f *fakeLibrary) UploadByBlobKey(_ context.Context, key string) (store.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.uploads[key]; ok {
		return u, nil
	}
	return store.Upload{}, store.ErrNotFound
}

func (f *fakeLibrary) Ping(context.Context) error {
	return f.pingErr
}

type fakeContent struct {
	passages   []vector.Document
	passageErr error
	images     []vector.Image
	imageErr   error
}

func (f *fakeContent) Passages(context.Context, string, int) ([]vector.Document, error) {
	return f.passages, f.passageErr
}

func (f *fakeContent) Images(context.Context, string, int) ([]vector.Image, error) {
	return f.images, f.imageErr
}

type fakeExporter struct {
	templates []export.Template
	lastDoc   export.Document
	lastDeck  export.Deck
}

func (f *fakeExporter) Export(_ context.Context, doc export.Document, format export.Format) (*export.Result, error) {
	f.lastDoc = doc
	return &export.Result{Data: []byte("%PDF-1.4"), Filename: "document." + string(format), MimeType: export.MimeType(string(format))}, nil
}

func (f *fakeExporter) Templates() ([]export.Template, error) {
	return f.templates, nil
}

func (f *fakeExporter) RenderTemplate(name string, _ map[string]any) (*export.Result, error) {
	for _, t := range f.templates {
		if t.Name == name {
			ext := strings.ToLower(t.Type)
			return &export.Result{Data: []byte("PK"), Filename: name + "." + ext, MimeType: export.MimeType(ext)}, nil
		}
	}
	return nil, export.ErrTemplateNotFound
}

func (f *fakeExporter) Presentation(_ context.Context, deck export.Deck) (*export.Result, error) {
	f.lastDeck = deck
	return &export.Result{Data: []byte("PK"), Filename: export.PresentationFilename, MimeType: export.MimeType("pptx")}, nil
}

// scriptedGenerator answers per operation and records every call.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	calls   []string
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, operation, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, operation)
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	reply, ok := g.replies[operation]
	if !ok {
		return "", errors.New("no scripted reply for " + operation)
	}
	return reply, nil
}

// heldGenerator parks the first call until release is closed. Later calls fail with err.
type heldGenerator struct {
	started chan struct{}
	release chan struct{}
	err     error

	mu    sync.Mutex
	calls int
}

func newHeldGenerator(err error) *heldGenerator {
	return &heldGenerator{started: make(chan struct{}), release: make(chan struct{}), err: err}
}

func (g *heldGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if !first {
		return "", g.err
	}
	close(g.started)
	select {
	case <-g.release:
		return gardenMarkdown, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Generator == nil {
		opts.Generator = &scriptedGenerator{replies: map[string]string{"generate": gardenMarkdown}}
	}
	if opts.Exporter == nil {
		opts.Exporter = &fakeExporter{}
	}
	if opts.Workspaces == nil {
		registry, err := workspace.NewRegistry(workspace.Options{Capacity: 8, Logger: zerolog.Nop()})
		if err != nil {
			t.Fatalf("NewRegistry() error = %v", err)
		}
		opts.Workspaces = registry
	}
	if opts.Selections == nil {
		opts.Selections = session.NewMemoryStore(session.DefaultTTL)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	opts.Logger = zerolog.Nop()
	return NewService(opts)
}

func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()
	return NewHTTPServer(newTestService(t, opts), "*").Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse response %q: %v", rr.Body.String(), err)
	}
	return out
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) map[string]any {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	body := decodeResponse(t, rr)
	if body["code"] != code {
		t.Fatalf("expected code %s, got %v", code, body["code"])
	}
	return body
}

type panickingGenerator struct{}

func (panickingGenerator) Generate(context.Context, string, string) (string, error) {
	panic("boom")
}
