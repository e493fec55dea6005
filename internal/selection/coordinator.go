// Package selection runs the capture, submit and dismiss lifecycle of selective edits.
package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"docgen/api/internal/history"
	"docgen/api/internal/llm"
	"docgen/api/internal/metrics"
	"docgen/api/internal/prompt"
	"docgen/api/internal/session"
	"docgen/api/internal/util"
	"docgen/api/internal/workspace"
)

const (
	DescriptionDocument = "Applied AI suggestion"
	DescriptionSpan     = "Edited selection"
)

var (
	ErrEmptySelection = errors.New("selected text is empty")
	ErrEmptyQuery     = errors.New("edit instruction is empty")
	ErrWrongWorkspace = errors.New("selection belongs to another workspace")
)

type Mode string

const (
	ModeDocument Mode = "document"
	ModeSpan     Mode = "span"
)

// Outcome says how a span edit reached the user.
type Outcome string

const (
	OutcomeApplied        Outcome = "applied"
	OutcomeFocusedControl Outcome = "focused_control"
	OutcomePlainText      Outcome = "plain_text"
)

// FocusedControl is the editable control that had focus when the edit was submitted.
// SelectionStart and SelectionEnd are byte offsets into Value.
type FocusedControl struct {
	Value          string `json:"value"`
	SelectionStart int    `json:"selectionStart"`
	SelectionEnd   int    `json:"selectionEnd"`
}

func (f *FocusedControl) hasSelection() bool {
	return f != nil && f.SelectionStart >= 0 && f.SelectionStart < f.SelectionEnd && f.SelectionEnd <= len(f.Value)
}

type SubmitOptions struct {
	Mode      Mode
	GrantType string
	Focused   *FocusedControl
}

type Result struct {
	Outcome      Outcome       `json:"outcome"`
	View         *history.View `json:"view,omitempty"`
	EditedText   string        `json:"editedText"`
	ControlValue string        `json:"controlValue,omitempty"`
}

type Coordinator struct {
	store   session.Store
	gen     llm.Generator
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCoordinator(store session.Store, gen llm.Generator, logger zerolog.Logger, m *metrics.Metrics) *Coordinator {
	return &Coordinator{store: store, gen: gen, logger: logger, metrics: m, now: time.Now}
}

// Capture stores a selection made in ws.
func (c *Coordinator) Capture(ctx context.Context, ws *workspace.Workspace, text string, rangeInfo *session.RangeInfo) (session.Record, error) {
	if strings.TrimSpace(text) == "" {
		return session.Record{}, ErrEmptySelection
	}
	rec := session.Record{
		ID:          util.NewID("sel"),
		WorkspaceID: ws.ID,
		Text:        text,
		RangeInfo:   rangeInfo,
		CreatedAt:   c.now().UTC(),
	}
	if err := c.store.Save(ctx, rec); err != nil {
		return session.Record{}, err
	}
	return rec, nil
}

func (c *Coordinator) Dismiss(ctx context.Context, ws *workspace.Workspace, id string) error {
	if _, err := c.record(ctx, ws, id); err != nil {
		return err
	}
	return c.store.Delete(ctx, id)
}

func (c *Coordinator) record(ctx context.Context, ws *workspace.Workspace, id string) (session.Record, error) {
	rec, err := c.store.Get(ctx, id)
	if err != nil {
		return session.Record{}, err
	}
	if rec.WorkspaceID != ws.ID {
		return session.Record{}, ErrWrongWorkspace
	}
	return rec, nil
}

// Submit sends the selection and query to the model. On any failure the document and the record stay as they were.
func (c *Coordinator) Submit(ctx context.Context, ws *workspace.Workspace, id, query string, opts SubmitOptions) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, ErrEmptyQuery
	}
	rec, err := c.record(ctx, ws, id)
	if err != nil {
		return Result{}, err
	}
	rec.Query = query

	current, _, ok := ws.History().Current()
	if !ok {
		return Result{}, workspace.ErrNoDocument
	}
	grantType := opts.GrantType
	if grantType == "" {
		grantType = current.GrantType
	}

	var res Result
	switch opts.Mode {
	case ModeSpan:
		res, err = c.submitSpan(ctx, ws, rec, grantType, opts.Focused)
	case ModeDocument, "":
		res, err = c.submitDocument(ctx, ws, rec, grantType)
	default:
		return Result{}, fmt.Errorf("unknown selection mode %q", opts.Mode)
	}
	if err != nil {
		return Result{}, err
	}

	if err := c.store.Delete(ctx, rec.ID); err != nil {
		c.logger.Warn().Err(err).Str("selection_id", rec.ID).Msg("could not delete consumed selection")
	}
	c.metrics.SelectionSubmitted(string(res.Outcome))
	return res, nil
}

func (c *Coordinator) submitDocument(ctx context.Context, ws *workspace.Workspace, rec session.Record, grantType string) (Result, error) {
	var edited string
	view, err := ws.Tracked(DescriptionDocument, func(ctx context.Context, latest history.Version) (string, error) {
		text, err := c.gen.Generate(ctx, "selective-edit", prompt.SelectiveEdit(rec.Text, rec.Query, latest.Content, grantType))
		if err != nil {
			return "", err
		}
		edited = strings.TrimSpace(text)
		return edited, nil
	})(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeApplied, View: &view, EditedText: edited}, nil
}

func (c *Coordinator) submitSpan(ctx context.Context, ws *workspace.Workspace, rec session.Record, grantType string, focused *FocusedControl) (Result, error) {
	var (
		edited    string
		generated bool
	)
	view, err := ws.Tracked(DescriptionSpan, func(ctx context.Context, latest history.Version) (string, error) {
		sectionText := ""
		if rec.RangeInfo != nil {
			sectionText, _ = SectionText(latest.Content, rec.RangeInfo.Anchor)
		}
		if sectionText == "" {
			sectionText = rec.Text
		}
		text, err := c.gen.Generate(ctx, "selection-rewrite", prompt.SelectionRewrite(rec.Text, rec.Query, sectionText, grantType))
		if err != nil {
			return "", err
		}
		edited = strings.TrimSpace(text)
		generated = true

		span, err := Resolve(latest.Content, rec.RangeInfo, rec.Text)
		if err != nil {
			return "", err
		}
		spliced := span.Splice(latest.Content, edited)
		if spliced == latest.Content {
			return "", workspace.ErrNoChange
		}
		return spliced, nil
	})(ctx)
	switch {
	case err == nil:
		return Result{Outcome: OutcomeApplied, View: &view, EditedText: edited}, nil
	case generated && (errors.Is(err, ErrUnresolved) || errors.Is(err, workspace.ErrNoChange)):
		c.logger.Info().Err(err).Str("selection_id", rec.ID).Msg("selection did not resolve, returning edit for manual application")
	default:
		return Result{}, err
	}

	if focused.hasSelection() {
		value := focused.Value[:focused.SelectionStart] + edited + focused.Value[focused.SelectionEnd:]
		return Result{Outcome: OutcomeFocusedControl, EditedText: edited, ControlValue: value}, nil
	}
	return Result{Outcome: OutcomePlainText, EditedText: edited}, nil
}
