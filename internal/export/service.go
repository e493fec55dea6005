package export

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Document is the version being exported.
type Document struct {
	HTML        string
	OutputType  string
	GrantType   string
	Description string
	UpdatedAt   time.Time
}

// Service provides document export functionality
type Service struct {
	templatesDir string
	logger       zerolog.Logger

	pdf    func(ctx context.Context, html string) ([]byte, error)
	pandoc func(ctx context.Context, from, to string, input []byte, extra ...string) ([]byte, error)
}

// NewService creates a new export service
func NewService(templatesDir string, logger zerolog.Logger) *Service {
	return &Service{templatesDir: templatesDir, logger: logger, pdf: renderPDF, pandoc: runPandoc}
}

// Export renders doc as a PDF or DOCX download.
func (s *Service) Export(ctx context.Context, doc Document, format Format) (*Result, error) {
	if strings.TrimSpace(doc.HTML) == "" {
		return nil, ErrContentUnavailable
	}
	page, err := PreparePage(doc.HTML)
	if err != nil {
		return nil, err
	}
	title := page.Title
	if title == "" {
		title = "document"
	}

	html, err := RenderDocumentHTML(TemplateData{
		Title:       title,
		OutputType:  doc.OutputType,
		GrantType:   doc.GrantType,
		Description: doc.Description,
		ContentHTML: template.HTML(page.Body),
		UpdatedAt:   doc.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	var data []byte
	switch format {
	case FormatPDF:
		data, err = s.pdf(ctx, html)
	case FormatDOCX:
		data, err = s.pandoc(ctx, "html", "docx", []byte(html))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("format", string(format)).Msg("export failed")
		return nil, err
	}
	return &Result{
		Data:     data,
		Filename: sanitizeFilename(title) + "." + string(format),
		MimeType: MimeType(string(format)),
	}, nil
}

func (s *Service) Templates() ([]Template, error) {
	return ListTemplates(s.templatesDir)
}

// RenderTemplate fills the named template. The output keeps the template's format and is named
// after the requested name.
func (s *Service) RenderTemplate(name string, data map[string]any) (*Result, error) {
	t, err := FindTemplate(s.templatesDir, name)
	if err != nil {
		return nil, err
	}
	out, err := FillTemplate(filepath.Join(s.templatesDir, t.Filename), data)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(t.Type)
	return &Result{
		Data:     out,
		Filename: name + "." + ext,
		MimeType: MimeType(ext),
	}, nil
}

// Presentation encodes deck as PPTX through pandoc.
func (s *Service) Presentation(ctx context.Context, deck Deck) (*Result, error) {
	data, err := s.pandoc(ctx, "markdown", "pptx", []byte(deck.Markdown()), "--slide-level=2")
	if err != nil {
		s.logger.Error().Err(err).Int("slides", len(deck.Slides)).Msg("presentation export failed")
		return nil, err
	}
	return &Result{
		Data:     data,
		Filename: PresentationFilename,
		MimeType: MimeType("pptx"),
	}, nil
}
