// Package retrieval assembles the reference context that is prepended to generation prompts.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/textsplitter"

	"docgen/api/internal/metrics"
)

const (
	ContextBudget = 3000

	ChunkSize    = 1000
	ChunkOverlap = 100
)

// FallbackContext stands in for library documents that could not be retrieved.
const FallbackContext = "Using context from Capital Area Food Bank documents:\n\n" +
	"DOCUMENT 1: Capital Area Food Bank Overview\n" +
	"The Capital Area Food Bank has been serving the DC metro area for over 40 years. Our mission is to address hunger today and build healthier futures tomorrow for residents struggling with food insecurity.\n\n" +
	"DOCUMENT 2: CABF Community Impact Report 2023\n" +
	"In 2023, the Capital Area Food Bank distributed over 45 million meals to families facing food insecurity across Washington DC, Maryland, and Virginia. Our programs reached more than 400,000 individuals.\n\n" +
	"DOCUMENT 3: Food Insecurity in the DMV Region\n" +
	"Food insecurity affects over 400,000 residents in the DC, Maryland, and Virginia region, with particularly high rates among children and seniors. Economic challenges from inflation have increased need by 30%.\n\n"

var ErrNoLibrary = errors.New("no reference library configured")

// Reference is a library document selected as generation context.
type Reference struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ContextFromDocuments renders references until the character budget is used up.
// The document that crosses the budget is cut short when more than 100 characters remain.
func ContextFromDocuments(docs []Reference, budget int) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("RELEVANT CONTEXT:\n\n")
	used := utf8.RuneCountInString(b.String())

	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		title := doc.Title
		if title == "" {
			title = "Untitled"
		}
		block := fmt.Sprintf("DOCUMENT: %s\n%s\n\n", title, doc.Content)
		size := utf8.RuneCountInString(block)
		if used+size > budget {
			remaining := budget - used
			if remaining > 100 {
				fmt.Fprintf(&b, "DOCUMENT: %s\n%s...\n\n", title, prefix(doc.Content, remaining-50))
			}
			break
		}
		b.WriteString(block)
		used += size
	}
	return b.String()
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if n >= len(runes) {
		return s
	}
	if n < 0 {
		n = 0
	}
	return string(runes[:n])
}

// AttachmentContext appends the parsed attachments below any existing context.
func AttachmentContext(ctx context.Context, existing string, attachments []Attachment) string {
	if len(attachments) == 0 {
		return existing
	}
	var b strings.Builder
	b.WriteString(existing)
	if existing != "" {
		b.WriteString("\n\nADDITIONAL USER-PROVIDED CONTEXT:\n\n")
	} else {
		b.WriteString("USER-PROVIDED CONTEXT:\n\n")
	}
	for i, a := range attachments {
		fmt.Fprintf(&b, "DOCUMENT %d: %s\n%s\n\n", i+1, a.Name, ParseAttachment(ctx, a))
	}
	return b.String()
}

// Chunk splits extracted upload text into overlapping pieces for indexing.
func Chunk(text string) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(ChunkSize),
		textsplitter.WithChunkOverlap(ChunkOverlap),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}
	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

// Library resolves selected document ids to their content.
type Library interface {
	Resolve(ctx context.Context, ids []string) ([]Reference, error)
}

type LibraryFunc func(ctx context.Context, ids []string) ([]Reference, error)

func (f LibraryFunc) Resolve(ctx context.Context, ids []string) ([]Reference, error) {
	return f(ctx, ids)
}

type Request struct {
	SelectedIDs []string
	Selected    []Reference
	Attachments []Attachment
}

// Result is the assembled context. Degraded is set when the fallback context replaced the library documents.
type Result struct {
	Context  string
	Used     bool
	Degraded bool
}

type Retriever struct {
	library Library
	budget  int
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewRetriever(library Library, logger zerolog.Logger, m *metrics.Metrics) *Retriever {
	return &Retriever{library: library, budget: ContextBudget, logger: logger, metrics: m}
}

// Build never fails. A library failure is reported through Result.Degraded.
func (r *Retriever) Build(ctx context.Context, req Request) Result {
	var res Result

	if len(req.SelectedIDs) > 0 || len(req.Selected) > 0 {
		docs := append([]Reference(nil), req.Selected...)
		var err error
		if len(req.SelectedIDs) > 0 {
			var resolved []Reference
			resolved, err = r.resolve(ctx, req.SelectedIDs)
			docs = append(docs, resolved...)
		}
		text := ContextFromDocuments(docs, r.budget)
		if err != nil || !hasContent(docs) {
			r.logger.Warn().Err(err).Int("selected", len(req.SelectedIDs)).Msg("document context unavailable, using fallback context")
			r.metrics.Degraded("fallback_context")
			text = FallbackContext
			res.Degraded = true
		}
		res.Context = text
		res.Used = true
	}

	if len(req.Attachments) > 0 {
		res.Context = AttachmentContext(ctx, res.Context, req.Attachments)
		res.Used = true
	}
	if strings.TrimSpace(res.Context) == "" {
		res.Used = false
	}
	return res
}

func (r *Retriever) resolve(ctx context.Context, ids []string) ([]Reference, error) {
	if r.library == nil {
		return nil, ErrNoLibrary
	}
	return r.library.Resolve(ctx, ids)
}

func hasContent(docs []Reference) bool {
	for _, d := range docs {
		if d.Content != "" {
			return true
		}
	}
	return false
}
