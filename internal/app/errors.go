package app

import (
	"errors"
	"fmt"
	"net/http"

	"docgen/api/internal/archive"
	"docgen/api/internal/export"
	"docgen/api/internal/history"
	"docgen/api/internal/llm"
	"docgen/api/internal/prompt"
	"docgen/api/internal/retrieval"
	"docgen/api/internal/selection"
	"docgen/api/internal/session"
	"docgen/api/internal/store"
	"docgen/api/internal/workspace"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func validationError(message string) *DomainError {
	return domainError(http.StatusBadRequest, "VALIDATION_ERROR", message, nil)
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}

	var (
		upstreamErr *llm.UpstreamError
		extractErr  *retrieval.ExtractError
	)
	switch {
	case errors.As(err, &upstreamErr), errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusInternalServerError, "UPSTREAM_ERROR", "Language model request failed", err.Error()
	case errors.Is(err, prompt.ErrUnknownOutputType), errors.Is(err, prompt.ErrUnknownGrantType),
		errors.Is(err, selection.ErrEmptySelection), errors.Is(err, selection.ErrEmptyQuery),
		errors.Is(err, history.ErrCancelled), errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil
	case errors.Is(err, retrieval.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE", "Unsupported file type", nil
	case errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity, "EXTRACT_ERROR", "Could not extract text from the file", err.Error()
	case errors.Is(err, workspace.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Workspace not found", nil
	case errors.Is(err, session.ErrNotFound), errors.Is(err, selection.ErrWrongWorkspace):
		return http.StatusNotFound, "NOT_FOUND", "Selection not found", nil
	case errors.Is(err, history.ErrOutOfRange):
		return http.StatusNotFound, "NOT_FOUND", "Version not found", nil
	case errors.Is(err, export.ErrTemplateNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Template not found", nil
	case errors.Is(err, archive.ErrNoArchive), errors.Is(err, archive.ErrUnknownCommit), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	case errors.Is(err, history.ErrNotConfirmed):
		return http.StatusPreconditionRequired, "CONFIRMATION_REQUIRED", history.RevertPrompt, nil
	case errors.Is(err, workspace.ErrStaleGeneration):
		return http.StatusConflict, "STALE_GENERATION", "A newer generation started in this workspace", nil
	case errors.Is(err, workspace.ErrNoDocument), errors.Is(err, history.ErrEmpty), errors.Is(err, export.ErrContentUnavailable):
		return http.StatusConflict, "NO_DOCUMENT", "Workspace has no document yet", nil
	case errors.Is(err, workspace.ErrNoChange):
		return http.StatusConflict, "NO_CHANGE", "The edit did not change the document", nil
	case errors.Is(err, workspace.ErrEmptyContent):
		return http.StatusInternalServerError, "UPSTREAM_ERROR", "Generated content is empty", nil
	case errors.Is(err, export.ErrPDFDependencyMissing), errors.Is(err, export.ErrPandocMissing):
		return http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", err.Error(), nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
