package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"docgen/api/internal/archive"
	"docgen/api/internal/export"
	"docgen/api/internal/fields"
	"docgen/api/internal/format"
	"docgen/api/internal/history"
	"docgen/api/internal/prompt"
	"docgen/api/internal/selection"
	"docgen/api/internal/session"
	"docgen/api/internal/suggest"
	"docgen/api/internal/workspace"
)

const (
	DescriptionSuggestion = "Applied suggestion"
	DescriptionFields     = "Edited content"

	defaultArchiveLimit = 50
)

var errArchiveDisabled = domainError(http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Version archive is not configured", nil)

func (s *Service) workspace(id string) (*workspace.Workspace, error) {
	if s.workspaces == nil {
		return nil, workspace.ErrNotFound
	}
	return s.workspaces.Get(id)
}

func (s *Service) CreateWorkspace() workspace.Snapshot {
	ws := s.workspaces.Create()
	s.logger.Info().Str("workspace_id", ws.ID).Msg("workspace created")
	return ws.Snapshot()
}

func (s *Service) WorkspaceSnapshot(id string) (workspace.Snapshot, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return workspace.Snapshot{}, err
	}
	return ws.Snapshot(), nil
}

func (s *Service) DeleteWorkspace(id string) error {
	if s.workspaces == nil || !s.workspaces.Delete(id) {
		return workspace.ErrNotFound
	}
	return nil
}

// WorkspaceGenerateResult is the formatted document that now seeds the workspace history.
type WorkspaceGenerateResult struct {
	ContextResult
	HTML     string             `json:"html"`
	Snapshot workspace.Snapshot `json:"workspace"`
}

// GenerateInWorkspace generates, formats and reseeds the history. The request is validated before it
// claims a generation token, and a failed generation gives its claim up. While a later generation is in
// flight or has landed, this one reports ErrStaleGeneration.
func (s *Service) GenerateInWorkspace(ctx context.Context, id string, req prompt.Request, in ContextInput) (WorkspaceGenerateResult, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return WorkspaceGenerateResult{}, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return WorkspaceGenerateResult{}, validationError("Query is required")
	}
	if _, err := prompt.Generate(req); err != nil {
		return WorkspaceGenerateResult{}, err
	}

	token := ws.BeginGeneration()
	var res ContextResult
	if in.empty() {
		var plain GenerateResult
		plain, err = s.Generate(ctx, req)
		res = ContextResult{GenerateResult: plain}
	} else {
		res, err = s.GenerateWithContext(ctx, req, in)
	}
	if err != nil {
		ws.AbandonGeneration(token)
		return WorkspaceGenerateResult{}, err
	}

	html := format.Format(res.Content, req.OutputType)
	if err := ws.CompleteGeneration(token, html, req.OutputType, req.EffectiveGrantType()); err != nil {
		if errors.Is(err, workspace.ErrStaleGeneration) {
			s.metrics.StaleGeneration()
			s.logger.Info().Str("workspace_id", id).Msg("discarding stale generation")
		}
		return WorkspaceGenerateResult{}, err
	}
	return WorkspaceGenerateResult{ContextResult: res, HTML: html, Snapshot: ws.Snapshot()}, nil
}

func (s *Service) ViewVersion(id string, index int) (history.View, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return history.View{}, err
	}
	return ws.History().View(index)
}

// RevertVersion takes the confirmation answer collected by the client up front.
func (s *Service) RevertVersion(id string, index int, confirmed bool) (history.View, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return history.View{}, err
	}
	return ws.History().Revert(index, history.Confirmed(confirmed))
}

func (s *Service) SaveVersion(id, content, description string) (history.View, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return history.View{}, err
	}
	if strings.TrimSpace(content) == "" {
		return history.View{}, validationError("Content is required")
	}
	return ws.History().SaveCurrent(content, description)
}

func (s *Service) CaptureSelection(ctx context.Context, id, text string, rangeInfo *session.RangeInfo) (session.Record, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return session.Record{}, err
	}
	return s.coord.Capture(ctx, ws, text, rangeInfo)
}

func (s *Service) DismissSelection(ctx context.Context, id, selectionID string) error {
	ws, err := s.workspace(id)
	if err != nil {
		return err
	}
	return s.coord.Dismiss(ctx, ws, selectionID)
}

func (s *Service) SubmitSelection(ctx context.Context, id, selectionID, query string, opts selection.SubmitOptions) (selection.Result, error) {
	switch opts.Mode {
	case "", selection.ModeDocument, selection.ModeSpan:
	default:
		return selection.Result{}, validationError(fmt.Sprintf("Unknown selection mode %q", opts.Mode))
	}
	ws, err := s.workspace(id)
	if err != nil {
		return selection.Result{}, err
	}
	return s.coord.Submit(ctx, ws, selectionID, query, opts)
}

type ApplyResult struct {
	suggest.Result
	View history.View `json:"view"`
}

// ApplySuggestions applies every suggestion to the displayed version and records one new version.
// When no suggestion matches, nothing is recorded and the displayed version comes back as is.
func (s *Service) ApplySuggestions(ctx context.Context, id string, suggestions []suggest.Suggestion) (ApplyResult, error) {
	if len(suggestions) == 0 {
		return ApplyResult{}, validationError("Suggestions are required")
	}
	ws, err := s.workspace(id)
	if err != nil {
		return ApplyResult{}, err
	}
	var applied suggest.Result
	view, err := ws.Tracked(DescriptionSuggestion, func(_ context.Context, current history.Version) (string, error) {
		applied = suggest.ApplyAll(current.Content, suggestions)
		if applied.Changed == 0 {
			return "", workspace.ErrNoChange
		}
		return applied.HTML, nil
	})(ctx)
	if errors.Is(err, workspace.ErrNoChange) {
		_, index, _ := ws.History().Current()
		view, err = ws.History().View(index)
	}
	if err != nil {
		return ApplyResult{}, err
	}
	return ApplyResult{Result: applied, View: view}, nil
}

func (s *Service) ReviewWorkspace(ctx context.Context, id string) ([]suggest.Suggestion, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return nil, err
	}
	current, _, ok := ws.History().Current()
	if !ok {
		return nil, workspace.ErrNoDocument
	}
	return s.Review(ctx, current.Content)
}

func (s *Service) Fields(id string) (fields.Model, []fields.Field, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return fields.Model{}, nil, err
	}
	current, _, ok := ws.History().Current()
	if !ok {
		return fields.Model{}, nil, workspace.ErrNoDocument
	}
	model, err := fields.Extract(current.Content, current.OutputType, current.GrantType)
	if err != nil {
		return fields.Model{}, nil, err
	}
	return model, fields.Definitions(current.OutputType, current.GrantType), nil
}

// UpdateFields merges values over the fields of the displayed version and records the re-rendered document.
// Unknown field ids are ignored.
func (s *Service) UpdateFields(ctx context.Context, id string, values map[string]string) (history.View, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return history.View{}, err
	}
	return ws.Tracked(DescriptionFields, func(_ context.Context, current history.Version) (string, error) {
		model, err := fields.Extract(current.Content, current.OutputType, current.GrantType)
		if err != nil {
			return "", err
		}
		for key, value := range values {
			if _, ok := model.Fields[key]; ok {
				model.Fields[key] = value
			}
		}
		return fields.Render(model), nil
	})(ctx)
}

func (s *Service) ExportWorkspace(ctx context.Context, id string, f export.Format) (*export.Result, error) {
	ws, err := s.workspace(id)
	if err != nil {
		return nil, err
	}
	if f != export.FormatPDF && f != export.FormatDOCX {
		return nil, fmt.Errorf("%w: %s", export.ErrUnsupportedFormat, f)
	}
	current, _, ok := ws.History().Current()
	if !ok {
		return nil, export.ErrContentUnavailable
	}
	return s.exporter.Export(ctx, export.Document{
		HTML:        current.Content,
		OutputType:  current.OutputType,
		GrantType:   current.GrantType,
		Description: current.Description,
		UpdatedAt:   current.Timestamp,
	}, f)
}

// ArchiveWorkspace commits the versions not yet archived and returns the new commits, oldest first.
func (s *Service) ArchiveWorkspace(id string) ([]archive.CommitInfo, error) {
	if s.archive == nil {
		return nil, errArchiveDisabled
	}
	ws, err := s.workspace(id)
	if err != nil {
		return nil, err
	}
	snap := ws.History().Snapshot()
	if len(snap.Versions) == 0 {
		return nil, workspace.ErrNoDocument
	}
	commits, err := s.archive.Archive(ws.ID, snap.Versions)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("workspace_id", ws.ID).Int("commits", len(commits)).Msg("workspace archived")
	return commits, nil
}

func (s *Service) ArchiveHistory(id string, limit int) ([]archive.CommitInfo, error) {
	if s.archive == nil {
		return nil, errArchiveDisabled
	}
	if limit <= 0 {
		limit = defaultArchiveLimit
	}
	return s.archive.History(id, limit)
}

// ArchivedContent returns the document as it was archived in commit hash.
func (s *Service) ArchivedContent(id, hash string) (string, error) {
	if s.archive == nil {
		return "", errArchiveDisabled
	}
	if strings.TrimSpace(hash) == "" {
		return "", validationError("Commit hash is required")
	}
	return s.archive.Content(id, hash)
}
