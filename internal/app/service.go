package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"docgen/api/internal/archive"
	"docgen/api/internal/blob"
	"docgen/api/internal/export"
	"docgen/api/internal/history"
	"docgen/api/internal/llm"
	"docgen/api/internal/metrics"
	"docgen/api/internal/prompt"
	"docgen/api/internal/retrieval"
	"docgen/api/internal/search"
	"docgen/api/internal/selection"
	"docgen/api/internal/session"
	"docgen/api/internal/store"
	"docgen/api/internal/suggest"
	"docgen/api/internal/vector"
	"docgen/api/internal/workspace"
)

type searcher interface {
	Search(ctx context.Context, q search.Query) search.Response
	Resolve(ctx context.Context, ids []string) ([]search.Document, error)
	Index(doc store.ReferenceDocument)
	IndexAll(docs []store.ReferenceDocument) error
}

type contentSource interface {
	Passages(ctx context.Context, query string, topK int) ([]vector.Document, error)
	Images(ctx context.Context, query string, topK int) ([]vector.Image, error)
}

type library interface {
	InsertDocument(ctx context.Context, doc store.ReferenceDocument) (store.ReferenceDocument, error)
	InsertUpload(ctx context.Context, upload store.Upload, chunks []store.ReferenceDocument) (store.Upload, error)
	UploadByBlobKey(ctx context.Context, key string) (store.Upload, error)
	Ping(ctx context.Context) error
}

type exporter interface {
	Export(ctx context.Context, doc export.Document, format export.Format) (*export.Result, error)
	Templates() ([]export.Template, error)
	RenderTemplate(name string, data map[string]any) (*export.Result, error)
	Presentation(ctx context.Context, deck export.Deck) (*export.Result, error)
}

type archiver interface {
	Archive(workspaceID string, versions []history.Version) ([]archive.CommitInfo, error)
	History(workspaceID string, limit int) ([]archive.CommitInfo, error)
	Content(workspaceID, hash string) (string, error)
}

// Options carries the collaborators. Search, Content, Library, Blobs and Archive may be nil; the matching
// endpoints then degrade or report that the feature is not configured.
type Options struct {
	Generator  llm.Generator
	Search     searcher
	Content    contentSource
	Library    library
	Blobs      blob.Store
	Exporter   exporter
	Archive    archiver
	Workspaces *workspace.Registry
	Selections session.Store
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

type Service struct {
	gen        llm.Generator
	search     searcher
	content    contentSource
	library    library
	blobs      blob.Store
	exporter   exporter
	archive    archiver
	workspaces *workspace.Registry
	selections session.Store
	retriever  *retrieval.Retriever
	coord      *selection.Coordinator
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Service{
		gen:        opts.Generator,
		search:     opts.Search,
		content:    opts.Content,
		library:    opts.Library,
		blobs:      opts.Blobs,
		exporter:   opts.Exporter,
		archive:    opts.Archive,
		workspaces: opts.Workspaces,
		selections: opts.Selections,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		now:        opts.Now,
	}
	var lib retrieval.Library
	if opts.Search != nil {
		lib = retrieval.LibraryFunc(s.resolveReferences)
	}
	s.retriever = retrieval.NewRetriever(lib, opts.Logger.With().Str("component", "retrieval").Logger(), opts.Metrics)
	s.coord = selection.NewCoordinator(opts.Selections, opts.Generator, opts.Logger.With().Str("component", "selection").Logger(), opts.Metrics)
	return s
}

func (s *Service) resolveReferences(ctx context.Context, ids []string) ([]retrieval.Reference, error) {
	docs, err := s.search.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	refs := make([]retrieval.Reference, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, retrieval.Reference{ID: d.ID, Title: d.Metadata.Title, Content: d.Metadata.Content})
	}
	return refs, nil
}

// Ping reports the first failing backing store.
func (s *Service) Ping(ctx context.Context) map[string]error {
	checks := map[string]error{}
	if s.library != nil {
		checks["database"] = s.library.Ping(ctx)
	}
	if s.selections != nil {
		checks["selections"] = s.selections.Ping(ctx)
	}
	return checks
}

type GenerateResult struct {
	Content    string  `json:"content"`
	OutputType string  `json:"outputType"`
	GrantType  *string `json:"grantType"`
}

type ContextInput struct {
	SelectedIDs []string
	Selected    []retrieval.Reference
	Attachments []retrieval.Attachment
}

func (c ContextInput) empty() bool {
	return len(c.SelectedIDs) == 0 && len(c.Selected) == 0 && len(c.Attachments) == 0
}

type ContextResult struct {
	GenerateResult
	UsedContext bool `json:"usedContext"`
	Degraded    bool `json:"degraded"`
}

func generateResult(text string, req prompt.Request) GenerateResult {
	res := GenerateResult{Content: text, OutputType: req.OutputType}
	if req.OutputType == "grant" {
		grantType := req.EffectiveGrantType()
		res.GrantType = &grantType
	}
	return res
}

func (s *Service) Generate(ctx context.Context, req prompt.Request) (GenerateResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return GenerateResult{}, validationError("Query is required")
	}
	p, err := prompt.Generate(req)
	if err != nil {
		return GenerateResult{}, err
	}
	text, err := s.gen.Generate(ctx, "generate", p)
	if err != nil {
		return GenerateResult{}, err
	}
	return generateResult(text, req), nil
}

// GenerateWithContext builds the context preamble first. Context problems degrade to the fallback context
// and never fail the request.
func (s *Service) GenerateWithContext(ctx context.Context, req prompt.Request, in ContextInput) (ContextResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return ContextResult{}, validationError("Query is required")
	}
	built := s.retriever.Build(ctx, retrieval.Request{
		SelectedIDs: in.SelectedIDs,
		Selected:    in.Selected,
		Attachments: in.Attachments,
	})

	var (
		p   string
		err error
	)
	if built.Used {
		p, err = prompt.GenerateWithContext(req, built.Context)
	} else {
		p, err = prompt.Generate(req)
	}
	if err != nil {
		return ContextResult{}, err
	}
	text, err := s.gen.Generate(ctx, "generate-with-context", p)
	if err != nil {
		return ContextResult{}, err
	}
	return ContextResult{GenerateResult: generateResult(text, req), UsedContext: built.Used, Degraded: built.Degraded}, nil
}

func (s *Service) SearchDocuments(ctx context.Context, query string) (search.Response, error) {
	if strings.TrimSpace(query) == "" {
		return search.Response{}, validationError("Query is required")
	}
	if s.search == nil {
		s.metrics.Degraded(string(search.SourceMock))
		return search.Response{Documents: search.SampleDocuments(), Degraded: true, Source: search.SourceMock}, nil
	}
	return s.search.Search(ctx, search.Query{Text: query}), nil
}

func (s *Service) AIEdit(ctx context.Context, query, currentHTML, grantType string) (string, error) {
	if strings.TrimSpace(query) == "" || strings.TrimSpace(currentHTML) == "" {
		return "", validationError("Query and current HTML are required")
	}
	return s.gen.Generate(ctx, "ai-edit", prompt.AIEdit(query, currentHTML, grantType))
}

func (s *Service) SelectiveEdit(ctx context.Context, selectedText, query, fullDocument, grantType string) (string, error) {
	if selectedText == "" || strings.TrimSpace(query) == "" || fullDocument == "" {
		return "", validationError("Selected text, query, and full document are required")
	}
	text, err := s.gen.Generate(ctx, "selective-edit", prompt.SelectiveEdit(selectedText, query, fullDocument, grantType))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *Service) Review(ctx context.Context, documentHTML string) ([]suggest.Suggestion, error) {
	if strings.TrimSpace(documentHTML) == "" {
		return nil, validationError("Document content is required")
	}
	text, err := s.gen.Generate(ctx, "review", prompt.Review(documentHTML))
	if err != nil {
		return nil, err
	}
	suggestions, err := suggest.Parse(text)
	if err != nil {
		s.logger.Warn().Err(err).Int("response_chars", len(text)).Msg("review response could not be parsed")
		return nil, domainError(http.StatusInternalServerError, "PARSE_ERROR", "Failed to parse suggestions", map[string]any{"rawResponse": text})
	}
	return suggestions, nil
}

func (s *Service) Templates() ([]export.Template, error) {
	return s.exporter.Templates()
}

func (s *Service) RenderTemplate(name string, data map[string]any) (*export.Result, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationError("Template name is required")
	}
	res, err := s.exporter.RenderTemplate(name, data)
	if err != nil && !errors.Is(err, export.ErrTemplateNotFound) {
		s.logger.Error().Err(err).Str("template", name).Msg("template render failed")
		return nil, domainError(http.StatusInternalServerError, "RENDER_ERROR", "Failed to generate document", err.Error())
	}
	return res, err
}
