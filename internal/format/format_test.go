package format

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTableRoundTrip(t *testing.T) {
	got, ok := TableHTML("| A | B |\n| - | - |\n| 1 | 2 |")
	if !ok {
		t.Fatal("expected a table")
	}
	want := `<table class="content-table"><thead><tr><th>A</th><th>B</th></tr></thead>` +
		`<tbody><tr><td>1</td><td>2</td></tr></tbody></table>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if n := strings.Count(got, "<th>"); n != 2 {
		t.Fatalf("expected 2 header cells, got %d", n)
	}
	if n := strings.Count(got, "<tr>"); n != 2 {
		t.Fatalf("expected header row plus one body row, got %d rows", n)
	}
}

func TestTableKeepsInnerEmptyCells(t *testing.T) {
	got, _ := TableHTML("Item | Cost | Notes\n---|---|---\nSeeds | | spring")
	if !strings.Contains(got, "<tr><td>Seeds</td><td></td><td>spring</td></tr>") {
		t.Fatalf("unexpected body row in %q", got)
	}
}

func TestTableSingleRowIsNotATable(t *testing.T) {
	got, ok := TableHTML("| only | header |")
	if ok || got != "| only | header |" {
		t.Fatalf("expected raw text back, got %q (ok=%v)", got, ok)
	}
}

func TestExtractTablesLeavesSurroundingText(t *testing.T) {
	in := "Intro line\n| A | B |\n|---|---|\n| 1 | 2 |\nAfter table\nend"
	got := ExtractTables(in)
	if !strings.HasPrefix(got, "Intro line\n<table") {
		t.Fatalf("expected intro before table, got %q", got)
	}
	if !strings.HasSuffix(got, "</table>\nAfter table\nend") {
		t.Fatalf("expected trailing text after table, got %q", got)
	}
}

func TestDocumentHeadingsGetStableAnchors(t *testing.T) {
	in := "# GRANT RFP: Community Garden Funding\n## POSTING DATE\nMay 1\n### A. GRANT APPLICATION PERIOD\nJune"
	got := Format(in, TypeGrant)

	if !strings.HasPrefix(got, `<div class="document-container grant-proposal">`) {
		t.Fatalf("expected grant container, got %q", got)
	}
	for _, frag := range []string{
		`<h1 id="sec-1-grant-rfp-community-garden-funding">GRANT RFP: Community Garden Funding</h1>`,
		`<h2 id="sec-2-posting-date">POSTING DATE</h2>`,
		`<h3 id="sec-3-a-grant-application-period">A. GRANT APPLICATION PERIOD</h3>`,
	} {
		if !strings.Contains(got, frag) {
			t.Fatalf("expected %q in %q", frag, got)
		}
	}

	want := []Heading{
		{Anchor: "sec-1-grant-rfp-community-garden-funding", Level: 1, Title: "GRANT RFP: Community Garden Funding"},
		{Anchor: "sec-2-posting-date", Level: 2, Title: "POSTING DATE"},
		{Anchor: "sec-3-a-grant-application-period", Level: 3, Title: "A. GRANT APPLICATION PERIOD"},
	}
	if diff := cmp.Diff(want, Headings(got)); diff != "" {
		t.Fatalf("headings mismatch (-want +got):\n%s", diff)
	}
}

func TestCRLFOutputMatchesLF(t *testing.T) {
	lf := "# Community Garden Funding\n## Budget\n| A | B |\n| - | - |\n| 1 | 2 |\nSeeds"
	crlf := strings.ReplaceAll(lf, "\n", "\r\n")

	got := Format(crlf, TypeGrant)
	if want := Format(lf, TypeGrant); got != want {
		t.Fatalf("expected CRLF input to format like LF input:\nwant %q\ngot  %q", want, got)
	}
	if strings.Contains(got, "\r") {
		t.Fatalf("expected no carriage returns, got %q", got)
	}
	want := []Heading{
		{Anchor: "sec-1-community-garden-funding", Level: 1, Title: "Community Garden Funding"},
		{Anchor: "sec-2-budget", Level: 2, Title: "Budget"},
	}
	if diff := cmp.Diff(want, Headings(got)); diff != "" {
		t.Fatalf("headings mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentEmphasisAndBreaks(t *testing.T) {
	got := Format("**Bold** and *soft*\n\nNext\nline", TypePDF)
	want := `<div class="document-container"><strong>Bold</strong> and <em>soft</em><br><br>Next<br>line</div>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDocumentTablesBeforeHeadings(t *testing.T) {
	got := Format("## BUDGET\n| Item | Cost |\n|---|---|\n| **Seeds** | $100 |", TypeDOCX)
	if !strings.Contains(got, `<h2 id="sec-1-budget">BUDGET</h2><br><table class="content-table">`) {
		t.Fatalf("expected heading followed by table, got %q", got)
	}
	if !strings.Contains(got, "<td><strong>Seeds</strong></td>") {
		t.Fatalf("expected emphasis inside cells, got %q", got)
	}
}

func TestFourHashesIsNotAHeading(t *testing.T) {
	got := Format("#### deep", TypePDF)
	if strings.Contains(got, "<h") {
		t.Fatalf("expected no heading, got %q", got)
	}
}

func TestSlides(t *testing.T) {
	in := "Slide 1: Welcome\n• Point one\n• Point two\nSlide 2: Plan\nDetails"
	got := Format(in, TypePPT)
	want := `<div class="slides">` +
		`<div class="slide"><h3>Welcome</h3><div class="slide-content"><li>Point one</li><br><li>Point two</li></div></div>` +
		`<div class="slide"><h3>Plan</h3><div class="slide-content">Details</div></div>` +
		`</div>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSlidesFallbacks(t *testing.T) {
	got := Format("intro\nslide 1: lower\nbody", TypePPT)
	if !strings.Contains(got, `<h3>Slide 1</h3>`) {
		t.Fatalf("expected case-insensitive fallback split, got %q", got)
	}
	if got := Format("no markers\nhere", TypePPT); got != "no markers<br>here" {
		t.Fatalf("expected plain breaks, got %q", got)
	}
}

func TestXPost(t *testing.T) {
	in := "POST: Help us grow\nfood!\nHASHTAGS: #garden\n#food\nENGAGEMENT PROMPT: Share your story"
	got := Format(in, TypeX)
	want := `<div class="social-post x-post">` +
		`<div class="post-content">Help us grow<br>food!</div>` +
		`<div class="hashtags">#garden #food</div>` +
		`<div class="engagement">Share your story</div>` +
		`</div>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSocialMissingLabelsYieldEmptySections(t *testing.T) {
	got := Format("just text", TypeInstagram)
	want := `<div class="social-post instagram-post"><div class="caption"></div><div class="hashtags"></div></div>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	got = Format("CAPTION: Fresh produce\nHASHTAGS: #cafb", TypeInstagram)
	if !strings.Contains(got, `<div class="caption">Fresh produce</div>`) || !strings.Contains(got, `<div class="hashtags">#cafb</div>`) {
		t.Fatalf("unexpected instagram html %q", got)
	}
}

func TestDefaultFormat(t *testing.T) {
	if got := Format("a\nb", "other"); got != "a<br>b" {
		t.Fatalf("expected a<br>b, got %q", got)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"VI. QUESTIONS / INQUIRIES INFORMATION": "vi-questions-inquiries-information",
		"  **Budget**  ":                        "budget",
		"!!!":                                   "section",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) expected %q, got %q", in, want, got)
		}
	}
}
