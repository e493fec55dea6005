package app

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"docgen/api/internal/export"
	"docgen/api/internal/selection"
	"docgen/api/internal/session"
	"docgen/api/internal/suggest"
)

func workspaceID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func versionIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Version index must be an integer", nil)
		return 0, false
	}
	return index, true
}

func (s *HTTPServer) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, s.service.CreateWorkspace())
}

func (s *HTTPServer) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.WorkspaceSnapshot(workspaceID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *HTTPServer) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteWorkspace(workspaceID(r)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleWorkspaceGenerate(w http.ResponseWriter, r *http.Request) {
	var body contextBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.service.GenerateInWorkspace(r.Context(), workspaceID(r), body.request(), body.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleViewVersion(w http.ResponseWriter, r *http.Request) {
	index, ok := versionIndex(w, r)
	if !ok {
		return
	}
	view, err := s.service.ViewVersion(workspaceID(r), index)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleRevertVersion(w http.ResponseWriter, r *http.Request) {
	index, ok := versionIndex(w, r)
	if !ok {
		return
	}
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	view, err := s.service.RevertVersion(workspaceID(r), index, body.Confirm)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleSaveVersion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content     string `json:"content"`
		Description string `json:"description"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	view, err := s.service.SaveVersion(workspaceID(r), body.Content, body.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *HTTPServer) handleCaptureSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text      string             `json:"text"`
		RangeInfo *session.RangeInfo `json:"rangeInfo"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	rec, err := s.service.CaptureSelection(r.Context(), workspaceID(r), body.Text, body.RangeInfo)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *HTTPServer) handleDismissSelection(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DismissSelection(r.Context(), workspaceID(r), chi.URLParam(r, "sid")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleSubmitSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query     string                    `json:"query"`
		Mode      selection.Mode            `json:"mode"`
		GrantType string                    `json:"grantType"`
		Focused   *selection.FocusedControl `json:"focused"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.service.SubmitSelection(r.Context(), workspaceID(r), chi.URLParam(r, "sid"), body.Query, selection.SubmitOptions{
		Mode:      body.Mode,
		GrantType: body.GrantType,
		Focused:   body.Focused,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleApplySuggestions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Suggestions []suggest.Suggestion `json:"suggestions"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.service.ApplySuggestions(r.Context(), workspaceID(r), body.Suggestions)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleWorkspaceReview(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.service.ReviewWorkspace(r.Context(), workspaceID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *HTTPServer) handleGetFields(w http.ResponseWriter, r *http.Request) {
	model, defs, err := s.service.Fields(workspaceID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"outputType":  model.OutputType,
		"grantType":   model.GrantType,
		"fields":      model.Fields,
		"definitions": defs,
	})
}

func (s *HTTPServer) handlePutFields(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if len(body.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Fields are required", nil)
		return
	}
	view, err := s.service.UpdateFields(r.Context(), workspaceID(r), body.Fields)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleWorkspaceExport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Format string `json:"format"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.service.ExportWorkspace(r.Context(), workspaceID(r), export.Format(body.Format))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeFile(w, res)
}

func (s *HTTPServer) handleArchive(w http.ResponseWriter, r *http.Request) {
	commits, err := s.service.ArchiveWorkspace(workspaceID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commits": commits})
}

func (s *HTTPServer) handleArchiveHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	commits, err := s.service.ArchiveHistory(workspaceID(r), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": commits})
}

func (s *HTTPServer) handleArchivedContent(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	content, err := s.service.ArchivedContent(workspaceID(r), hash)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hash": hash, "content": content})
}
