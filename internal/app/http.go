package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"docgen/api/internal/export"
	"docgen/api/internal/metrics"
	"docgen/api/internal/prompt"
	"docgen/api/internal/retrieval"
	"docgen/api/internal/search"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
	router     chi.Router
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	s := &HTTPServer{
		service:    service,
		corsOrigin: corsOrigin,
		router:     chi.NewRouter(),
		logger:     service.logger.With().Str("component", "http").Logger(),
		metrics:    service.metrics,
	}
	s.routes()
	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) routes() {
	s.router.Use(s.withMiddleware)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	s.router.Get("/api/health", s.handleHealth)
	s.router.Head("/api/health", s.handleHealth)
	s.router.Get("/api/ready", s.handleReady)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Post("/api/generate", s.handleGenerate)
	s.router.Post("/api/generate-with-context", s.handleGenerateWithContext)
	s.router.Post("/api/search-documents", s.handleSearchDocuments)
	s.router.Post("/api/ai-edit", s.handleAIEdit)
	s.router.Post("/api/selective-edit", s.handleSelectiveEdit)
	s.router.Post("/api/review-document", s.handleReviewDocument)
	s.router.Get("/api/templates", s.handleTemplates)
	s.router.Post("/api/generate-from-template", s.handleGenerateFromTemplate)
	s.router.Post("/api/generate-ppt-from-template", s.handleGeneratePresentation)
	s.router.Post("/api/preview-ppt-from-template", s.handlePreviewPresentation)

	s.router.Post("/api/documents", s.handleAddDocument)
	s.router.Post("/api/uploads", s.handleUpload)

	s.router.Route("/api/workspaces", func(r chi.Router) {
		r.Post("/", s.handleCreateWorkspace)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetWorkspace)
			r.Delete("/", s.handleDeleteWorkspace)
			r.Post("/generate", s.handleWorkspaceGenerate)
			r.Post("/versions", s.handleSaveVersion)
			r.Post("/versions/{index}/view", s.handleViewVersion)
			r.Post("/versions/{index}/revert", s.handleRevertVersion)
			r.Post("/selections", s.handleCaptureSelection)
			r.Delete("/selections/{sid}", s.handleDismissSelection)
			r.Post("/selections/{sid}/submit", s.handleSubmitSelection)
			r.Post("/suggestions/apply", s.handleApplySuggestions)
			r.Post("/review", s.handleWorkspaceReview)
			r.Get("/fields", s.handleGetFields)
			r.Put("/fields", s.handlePutFields)
			r.Post("/export", s.handleWorkspaceExport)
			r.Post("/archive", s.handleArchive)
			r.Get("/archive", s.handleArchiveHistory)
			r.Get("/archive/{hash}", s.handleArchivedContent)
		})
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{}
	for name, err := range s.service.Ping(ctx) {
		if err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks[name] = map[string]any{"status": "error", "error": err.Error()}
			continue
		}
		checks[name] = map[string]any{"status": "ok"}
	}

	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

// flexInt accepts a JSON number or a numeric string. Anything else decodes as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

type generateBody struct {
	Query      string  `json:"query"`
	OutputType string  `json:"outputType"`
	NumPages   flexInt `json:"numPages"`
	GrantType  string  `json:"grantType"`
}

func (b generateBody) request() prompt.Request {
	outputType := b.OutputType
	if outputType == "" {
		outputType = "pdf"
	}
	return prompt.Request{Query: b.Query, OutputType: outputType, NumPages: int(b.NumPages), GrantType: b.GrantType}
}

type selectedDocument struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Metadata *search.Metadata `json:"metadata"`
}

type contextBody struct {
	generateBody
	SelectedDocumentIDs []string               `json:"selectedDocumentIds"`
	SelectedDocuments   []selectedDocument     `json:"selectedDocuments"`
	AdditionalContext   []retrieval.Attachment `json:"additionalContext"`
}

func (b contextBody) input() ContextInput {
	in := ContextInput{SelectedIDs: b.SelectedDocumentIDs, Attachments: b.AdditionalContext}
	for _, d := range b.SelectedDocuments {
		ref := retrieval.Reference{ID: d.ID, Title: d.Title, Content: d.Content}
		if d.Metadata != nil {
			if ref.Title == "" {
				ref.Title = d.Metadata.Title
			}
			if ref.Content == "" {
				ref.Content = d.Metadata.Content
			}
		}
		if ref.Content == "" && ref.ID != "" {
			in.SelectedIDs = append(in.SelectedIDs, ref.ID)
			continue
		}
		in.Selected = append(in.Selected, ref)
	}
	return in
}

func (s *HTTPServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.service.Generate(r.Context(), body.request())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleGenerateWithContext(w http.ResponseWriter, r *http.Request) {
	var body contextBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.service.GenerateWithContext(r.Context(), body.request(), body.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleSearchDocuments(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.service.SearchDocuments(r.Context(), body.Query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleAIEdit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query       string `json:"query"`
		CurrentHTML string `json:"currentHtml"`
		GrantType   string `json:"grantType"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	edited, err := s.service.AIEdit(r.Context(), body.Query, body.CurrentHTML, body.GrantType)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"editedHtml": edited, "message": "Document edited successfully"})
}

func (s *HTTPServer) handleSelectiveEdit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SelectedText string `json:"selectedText"`
		Query        string `json:"query"`
		FullDocument string `json:"fullDocument"`
		GrantType    string `json:"grantType"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	edited, err := s.service.SelectiveEdit(r.Context(), body.SelectedText, body.Query, body.FullDocument, body.GrantType)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"editedDocument": edited, "message": "Document edited successfully"})
}

func (s *HTTPServer) handleReviewDocument(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DocumentHTML string `json:"documentHtml"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	suggestions, err := s.service.Review(r.Context(), body.DocumentHTML)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *HTTPServer) handleTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.service.Templates()
	if err != nil {
		s.logger.Error().Err(err).Msg("list templates")
		writeError(w, http.StatusInternalServerError, "TEMPLATES_ERROR", "Failed to load templates", err.Error())
		return
	}
	if templates == nil {
		templates = []export.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (s *HTTPServer) handleGenerateFromTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TemplateName string         `json:"templateName"`
		Data         map[string]any `json:"data"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.service.RenderTemplate(body.TemplateName, body.Data)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeFile(w, res)
}

type deckBody struct {
	NumSlides flexInt `json:"numSlides"`
	Query     string  `json:"query"`
}

func (s *HTTPServer) handleGeneratePresentation(w http.ResponseWriter, r *http.Request) {
	var body deckBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.service.Presentation(r.Context(), int(body.NumSlides), body.Query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeFile(w, res)
}

func (s *HTTPServer) handlePreviewPresentation(w http.ResponseWriter, r *http.Request) {
	var body deckBody
	if !s.decode(w, r, &body) {
		return
	}
	preview, err := s.service.PreviewPresentation(r.Context(), int(body.NumSlides), body.Query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *HTTPServer) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var body DocumentInput
	if !s.decode(w, r, &body) {
		return
	}
	doc, err := s.service.AddDocument(r.Context(), body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 32 << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "failed to parse upload form", err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "File is required", nil)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "failed to read upload", err.Error())
		return
	}
	res, err := s.service.Upload(r.Context(), UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        buf.Bytes(),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"id":        res.Upload.ID,
		"name":      res.Upload.FileName,
		"chunks":    res.Upload.ChunkCount,
		"duplicate": res.Duplicate,
		"upload":    res.Upload,
		"documents": res.Documents,
	})
}

func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeBody(r, target); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return false
	}
	return true
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := mapError(err)
	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("request_id", RequestID(r.Context())).
		Str("code", code).
		Int("status", status).
		Msg("request failed")
	writeError(w, status, code, message, details)
}

func writeFile(w http.ResponseWriter, res *export.Result) {
	w.Header().Set("Content-Disposition", "attachment; filename=\""+res.Filename+"\"")
	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}
