package search

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"docgen/api/internal/metrics"
	"docgen/api/internal/store"
	"docgen/api/internal/vector"
)

type fakePassager struct {
	docs []vector.Document
	err  error
}

func (f fakePassager) Passages(context.Context, string, int) ([]vector.Document, error) {
	return f.docs, f.err
}

type fakeStore struct {
	docs map[string]store.ReferenceDocument
	err  error
}

func (f fakeStore) GetDocuments(_ context.Context, ids []string) ([]store.ReferenceDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []store.ReferenceDocument
	for _, id := range ids {
		if d, ok := f.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f fakeStore) ListDocuments(context.Context, int) ([]store.ReferenceDocument, error) {
	return nil, f.err
}

func TestSearchUsesVectorTier(t *testing.T) {
	svc := NewService(Options{
		Vector: fakePassager{docs: []vector.Document{{
			ID: "v1", Score: 0.9, Title: "Impact", Text: "45 million meals",
			Metadata: map[string]any{"url": "https://example.com/impact", "type": "impact_report"},
		}}},
		Logger: zerolog.Nop(),
	})
	resp := svc.Search(context.Background(), Query{Text: "meals"})
	want := Response{
		Documents: []Document{{ID: "v1", Score: 0.9, Metadata: Metadata{
			Title: "Impact", Content: "45 million meals", Type: "impact_report", URL: "https://example.com/impact",
		}}},
		Source: SourceVector,
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Fatalf("unexpected response (-want +got):\n%s", diff)
	}
}

func TestSearchFallsBackToSamples(t *testing.T) {
	m := metrics.New()
	svc := NewService(Options{
		Vector:  fakePassager{err: errors.New("dimension mismatch")},
		Logger:  zerolog.Nop(),
		Metrics: m,
	})
	resp := svc.Search(context.Background(), Query{Text: "hunger"})
	if !resp.Degraded || resp.Source != SourceMock {
		t.Fatalf("expected degraded mock response, got degraded=%v source=%s", resp.Degraded, resp.Source)
	}
	if len(resp.Documents) != 5 || resp.Documents[0].ID != "doc1" || resp.Documents[4].ID != "doc5" {
		t.Fatalf("expected doc1..doc5, got %+v", resp.Documents)
	}
}

func TestSearchEmptyVectorAnswerFallsThrough(t *testing.T) {
	svc := NewService(Options{Vector: fakePassager{}, Logger: zerolog.Nop()})
	if resp := svc.Search(context.Background(), Query{Text: "x"}); resp.Source != SourceMock {
		t.Fatalf("expected mock source, got %s", resp.Source)
	}
}

func TestSampleDocumentsIsACopy(t *testing.T) {
	docs := SampleDocuments()
	docs[0].Metadata.Title = "changed"
	if d, _ := SampleDocument("doc1"); d.Metadata.Title == "changed" {
		t.Fatal("expected sample set to be immutable")
	}
}

func TestResolvePrefersStoreThenSamples(t *testing.T) {
	svc := NewService(Options{
		Store: fakeStore{docs: map[string]store.ReferenceDocument{
			"lib1": {ID: "lib1", Title: "Board minutes", Content: "Approved budget"},
		}},
		Logger: zerolog.Nop(),
	})
	docs, err := svc.Resolve(context.Background(), []string{"doc2", "lib1", "unknown"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	ids := []string{}
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	if diff := cmp.Diff([]string{"doc2", "lib1"}, ids); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
}

func TestResolveReportsStoreFailure(t *testing.T) {
	svc := NewService(Options{Store: fakeStore{err: errors.New("connection reset")}, Logger: zerolog.Nop()})
	if _, err := svc.Resolve(context.Background(), []string{"doc1"}); err == nil {
		t.Fatal("expected store error")
	}
}

func TestIndexWithoutMeiliIsNoop(t *testing.T) {
	svc := NewService(Options{Logger: zerolog.Nop()})
	svc.Index(store.ReferenceDocument{ID: "x"})
	if err := svc.IndexAll([]store.ReferenceDocument{{ID: "x"}}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	svc.ReindexFromStore(context.Background())
}
