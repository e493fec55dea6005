package fields

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"docgen/api/internal/format"
)

const rfpMarkdown = `# GRANT RFP: Community Garden Funding
## POSTING DATE
May 1, 2024
## SOLICITED BY
Capital Area Food Bank
## I. PURPOSE OF REQUEST FOR PROPOSAL
Fund **urban** gardens.
## III. TIMELINE FOR SCOPE OF SERVICES
| ACTIVITY | PROJECTED DATE |
| -------- | -------------- |
| A. Grant Application Period | June 1 - June 30 |
| F. Revisions and Final Report | December |
## IV. SCOPE OF SERVICES
### A. GRANT APPLICATION PERIOD
Applicants submit forms.
### B. PRIOR TO FINAL GRANT SUBMISSIONS
Workshops are held.
## VI. QUESTIONS / INQUIRIES INFORMATION
Email grants@example.org`

func TestExtractRFPFromFormattedDocument(t *testing.T) {
	doc := format.Format(rfpMarkdown, format.TypeGrant)
	model, err := Extract(doc, "grant", "rfp")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := map[string]string{
		"title":                      "Community Garden Funding",
		"postingDate":                "May 1, 2024",
		"solicitor":                  "Capital Area Food Bank",
		"purpose":                    "Fund urban gardens.",
		"timeline_applicationPeriod": "June 1 - June 30",
		"timeline_revisionsReport":   "December",
		"applicationPeriod":          "Applicants submit forms.",
		"priorToSubmissions":         "Workshops are held.",
		"inquiries":                  "Email grants@example.org",
	}
	for id, value := range want {
		if got := model.Fields[id]; got != value {
			t.Fatalf("field %s: expected %q, got %q", id, value, got)
		}
	}
	if got, ok := model.Fields["background"]; !ok || got != "" {
		t.Fatalf("expected missing section to be present and empty, got %q (present=%v)", got, ok)
	}
	if len(model.Fields) != len(rfpFields) {
		t.Fatalf("expected %d fields, got %d", len(rfpFields), len(model.Fields))
	}
}

func TestRenderRFPEscapesAndAnchors(t *testing.T) {
	out := Render(Model{OutputType: "grant", GrantType: "rfp", Fields: map[string]string{
		"title":                      "Garden <Funding>",
		"purpose":                    "Grow & share",
		"timeline_applicationPeriod": "June",
		"applicationPeriod":          "Apply online",
	}})

	for _, frag := range []string{
		`<h1 id="sec-1-grant-rfp-garden-funding">GRANT RFP: Garden &lt;Funding&gt;</h1>`,
		`<h2 id="sec-2-i-purpose-of-request-for-proposal">I. PURPOSE OF REQUEST FOR PROPOSAL</h2><p>Grow &amp; share</p>`,
		`<tr><td>A. Grant Application Period</td><td>June</td></tr>`,
		`<h2 id="sec-4-iv-scope-of-services">IV. SCOPE OF SERVICES</h2>`,
		`<h3 id="sec-5-a-grant-application-period">A. GRANT APPLICATION PERIOD</h3><p>Apply online</p>`,
	} {
		if !strings.Contains(out, frag) {
			t.Fatalf("expected %q in %q", frag, out)
		}
	}
	if strings.Contains(out, "#<h1>") {
		t.Fatalf("expected no stray markdown markers, got %q", out)
	}
}

func TestRoundTripPerGrantType(t *testing.T) {
	for _, grantType := range []string{"rfp", "generic", "nonprofit", "research"} {
		t.Run(grantType, func(t *testing.T) {
			in := Model{OutputType: "grant", GrantType: grantType, Fields: map[string]string{}}
			for i, f := range Definitions("grant", grantType) {
				in.Fields[f.ID] = "value " + strings.Repeat("x", i+1)
			}

			out, err := Extract(Render(in), "grant", grantType)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if diff := cmp.Diff(in, out); diff != "" {
				t.Fatalf("round trip mismatch (-in +out):\n%s", diff)
			}
		})
	}
}

func TestDefaultShape(t *testing.T) {
	doc := format.Format("# Pantry Report\nFirst paragraph.\n\nSecond paragraph.", format.TypeDOCX)
	model, err := Extract(doc, "docx", "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if model.Fields["title"] != "Pantry Report" {
		t.Fatalf("expected title, got %q", model.Fields["title"])
	}
	if model.Fields["content"] != "First paragraph.\n\nSecond paragraph." {
		t.Fatalf("unexpected content %q", model.Fields["content"])
	}

	out := Render(model)
	want := `<div class="document-container"><h1 id="sec-1-pantry-report">Pantry Report</h1><p>First paragraph.</p><p>Second paragraph.</p></div>`
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}
