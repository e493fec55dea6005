// Package prompt builds the natural-language prompts sent to the language model.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

const (
	GrantRFP       = "rfp"
	GrantGeneric   = "generic"
	GrantNonprofit = "nonprofit"
	GrantResearch  = "research"
)

const DefaultPages = 1

var (
	ErrUnknownOutputType = errors.New("unknown output type")
	ErrUnknownGrantType  = errors.New("unknown grant type")
)

var grantTemplates = map[string]string{
	GrantRFP:       rfpTemplate,
	GrantGeneric:   genericTemplate,
	GrantNonprofit: nonprofitTemplate,
	GrantResearch:  researchTemplate,
}

// Request carries the user inputs a generation prompt depends on.
type Request struct {
	Query      string `json:"query"`
	OutputType string `json:"outputType"`
	NumPages   int    `json:"numPages"`
	GrantType  string `json:"grantType"`
}

// EffectiveGrantType returns the grant type a grant request is built with. rfp is the default.
func (r Request) EffectiveGrantType() string {
	if r.OutputType != "grant" {
		return ""
	}
	if r.GrantType == "" {
		return GrantRFP
	}
	return r.GrantType
}

func (r Request) pages() int {
	if r.NumPages <= 0 {
		return DefaultPages
	}
	return r.NumPages
}

// Generate returns the structured prompt for r.
func Generate(r Request) (string, error) {
	switch r.OutputType {
	case "grant":
		tmpl, ok := grantTemplates[r.EffectiveGrantType()]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownGrantType, r.GrantType)
		}
		return fmt.Sprintf(tmpl, r.Query) + fmt.Sprintf(grantSuffix, r.Query), nil
	case "pdf":
		return fmt.Sprintf(documentTemplate, "PDF", r.pages(), r.Query), nil
	case "docx":
		return fmt.Sprintf(documentTemplate, "DOCX", r.pages(), r.Query), nil
	case "ppt":
		return fmt.Sprintf(pptTemplate, r.pages(), r.Query), nil
	case "x":
		return fmt.Sprintf(xTemplate, r.Query), nil
	case "instagram":
		return fmt.Sprintf(instagramTemplate, r.Query), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOutputType, r.OutputType)
	}
}

// GenerateWithContext prefixes the structured prompt with the retrieved context.
// Blank context yields the plain structured prompt.
func GenerateWithContext(r Request, context string) (string, error) {
	structured, err := Generate(r)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(context) == "" {
		return structured, nil
	}
	kind := r.OutputType
	if r.OutputType == "grant" {
		kind = r.EffectiveGrantType() + " grant proposal"
	}
	return fmt.Sprintf(contextPreamble, context, kind, r.Query) + structured, nil
}

func AIEdit(query, currentHTML, grantType string) string {
	return fmt.Sprintf(aiEditTemplate, grantType, query, currentHTML)
}

func SelectiveEdit(selectedText, query, fullDocument, grantType string) string {
	return fmt.Sprintf(selectiveEditTemplate, grantType, query, selectedText, fullDocument)
}

// SelectionRewrite asks for the rewritten passage alone, for edits spliced in place.
func SelectionRewrite(selectedText, query, sectionText, grantType string) string {
	return fmt.Sprintf(selectionRewriteTemplate, grantType, query, selectedText, sectionText)
}

func Review(documentHTML string) string {
	return fmt.Sprintf(reviewTemplate, documentHTML)
}
