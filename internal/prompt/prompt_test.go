package prompt

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateGrantDefaultsToRFP(t *testing.T) {
	got, err := Generate(Request{Query: "community garden funding", OutputType: "grant"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(got, "Generate a structured grant RFP (Request for Proposal) document about: community garden funding.") {
		t.Fatalf("unexpected prefix: %q", got[:80])
	}
	for _, want := range []string{"## POSTING DATE", "### F. REVISIONS AND FINAL REPORT", "| A. Grant Application Period | [Date range] |"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in prompt", want)
		}
	}
	if !strings.HasSuffix(got, "IMPORTANT: Make all tables well-formatted with proper rows and columns to be easily converted to a Word document table.") {
		t.Fatal("expected grant suffix")
	}
	if !strings.Contains(got, "specific to the query: community garden funding.") {
		t.Fatal("expected query repeated in suffix")
	}
}

func TestGenerateGrantTypes(t *testing.T) {
	cases := map[string]string{
		GrantGeneric:   "# GRANT PROPOSAL: [Title]",
		GrantNonprofit: "# NON-PROFIT GRANT PROPOSAL: [Title]",
		GrantResearch:  "# RESEARCH GRANT PROPOSAL: [Title]",
	}
	for grantType, marker := range cases {
		t.Run(grantType, func(t *testing.T) {
			got, err := Generate(Request{Query: "q", OutputType: "grant", GrantType: grantType})
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if !strings.Contains(got, marker) {
				t.Fatalf("expected %q in prompt", marker)
			}
		})
	}
}

func TestGenerateOutputTypes(t *testing.T) {
	cases := []struct {
		req  Request
		want string
	}{
		{Request{Query: "q", OutputType: "pdf", NumPages: 3}, "Generate a structured PDF document with 3 pages about: q."},
		{Request{Query: "q", OutputType: "docx"}, "Generate a structured DOCX document with 1 pages about: q."},
		{Request{Query: "q", OutputType: "ppt", NumPages: 5}, "Generate content for a PowerPoint presentation with exactly 5 slides about: q."},
		{Request{Query: "q", OutputType: "x"}, "Craft a structured Twitter/X post about: q."},
		{Request{Query: "q", OutputType: "instagram"}, "Create an Instagram post about: q."},
	}
	for _, tc := range cases {
		t.Run(tc.req.OutputType, func(t *testing.T) {
			got, err := Generate(tc.req)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if !strings.HasPrefix(got, tc.want) {
				t.Fatalf("expected prefix %q, got %q", tc.want, got)
			}
		})
	}
}

func TestGenerateRejectsUnknownTypes(t *testing.T) {
	if _, err := Generate(Request{Query: "q", OutputType: "fax"}); !errors.Is(err, ErrUnknownOutputType) {
		t.Fatalf("expected ErrUnknownOutputType, got %v", err)
	}
	if _, err := Generate(Request{Query: "q", OutputType: "grant", GrantType: "loan"}); !errors.Is(err, ErrUnknownGrantType) {
		t.Fatalf("expected ErrUnknownGrantType, got %v", err)
	}
}

func TestGenerateWithContextPrependsPreamble(t *testing.T) {
	req := Request{Query: "food pantry", OutputType: "grant", GrantType: GrantNonprofit}
	got, err := GenerateWithContext(req, "DOCUMENT: Overview\nFacts\n\n")
	if err != nil {
		t.Fatalf("GenerateWithContext() error = %v", err)
	}
	if !strings.HasPrefix(got, "You are a helpful AI assistant creating a document based on user request.") {
		t.Fatal("expected preamble first")
	}
	if !strings.Contains(got, `create a nonprofit grant proposal document about: "food pantry"`) {
		t.Fatal("expected grant kind in user request line")
	}
	if !strings.Contains(got, "Generate a structured non-profit grant proposal about: food pantry.") {
		t.Fatal("expected structured prompt after preamble")
	}

	plain, _ := GenerateWithContext(req, "   ")
	structured, _ := Generate(req)
	if plain != structured {
		t.Fatal("expected blank context to yield the structured prompt")
	}
}

func TestEditPrompts(t *testing.T) {
	if got := AIEdit("shorten", "<p>x</p>", "rfp"); !strings.Contains(got, `I have a rfp grant document in HTML format, and I need you to edit it according to this request: "shorten"`) {
		t.Fatalf("unexpected ai-edit prompt %q", got)
	}
	got := SelectiveEdit("old text", "make it formal", "<div>doc</div>", "generic")
	if !strings.Contains(got, "THE SECTION TO EDIT IS:\n\"old text\"") || !strings.Contains(got, "FULL DOCUMENT HTML:\n<div>doc</div>") {
		t.Fatalf("unexpected selective-edit prompt %q", got)
	}
	if got := Review("<p>doc</p>"); !strings.HasSuffix(got, "Here is the document content:\n<p>doc</p>") {
		t.Fatalf("unexpected review prompt suffix %q", got)
	}
}
