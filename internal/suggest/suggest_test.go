package suggest

import (
	"regexp"
	"strings"
	"testing"
)

func tagSequence(html string) []string {
	return regexp.MustCompile(`<[^>]*>`).FindAllString(html, -1)
}

func TestApplyReplacesFirstTextMatch(t *testing.T) {
	html := `<h2 id="sec-1-budget">Budget</h2><p>The budjet is $500. The budjet covers seeds.</p>`
	got, ok := Apply(html, Suggestion{Problem: "budjet", Suggestion: "budget"})
	if !ok {
		t.Fatal("expected suggestion to apply")
	}
	want := `<h2 id="sec-1-budget">Budget</h2><p>The budget is $500. The budjet covers seeds.</p>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestApplyIgnoresAttributeOnlyMatch(t *testing.T) {
	html := `<div class="document-container grant-proposal"><p title="garden">Funding request</p></div>`
	got, ok := Apply(html, Suggestion{Problem: "grant-proposal", Suggestion: "broken"})
	if ok {
		t.Fatal("expected no match inside tag fragments")
	}
	if got != html {
		t.Fatalf("expected input unchanged, got %q", got)
	}
}

func TestApplyPreservesTagSequence(t *testing.T) {
	html := `<table class="content-table"><tr><td>Seeds</td><td>$100</td></tr></table><p>Plant in spring.</p>`
	got, ok := Apply(html, Suggestion{Problem: "spring", Suggestion: "early <spring> & summer"})
	if !ok {
		t.Fatal("expected suggestion to apply")
	}
	if !strings.Contains(got, "Plant in early &lt;spring&gt; &amp; summer.") {
		t.Fatalf("expected escaped replacement text, got %q", got)
	}
	before := tagSequence(html)
	after := tagSequence(got)
	if strings.Join(before, "") != strings.Join(after, "") {
		t.Fatalf("tag sequence changed: %v vs %v", before, after)
	}
}

func TestApplyCaseInsensitiveSecondPass(t *testing.T) {
	html := `<p>Community Garden Funding</p><p>community garden</p>`
	got, ok := Apply(html, Suggestion{Problem: "COMMUNITY GARDEN", Suggestion: "Neighborhood Garden"})
	if !ok {
		t.Fatal("expected case-insensitive match")
	}
	want := `<p>Neighborhood Garden Funding</p><p>community garden</p>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestApplyPrefersExactMatchOverEarlierFoldedMatch(t *testing.T) {
	html := `<p>Goals</p><p>goals</p>`
	got, _ := Apply(html, Suggestion{Problem: "goals", Suggestion: "objectives"})
	if got != `<p>Goals</p><p>objectives</p>` {
		t.Fatalf("expected exact pass to win, got %q", got)
	}
}

func TestApplyRegexMetacharactersAreLiteral(t *testing.T) {
	html := `<p>Cost (est.) is $5.00*</p>`
	got, ok := Apply(html, Suggestion{Problem: "COST (EST.) IS $5.00*", Suggestion: "Cost is $6"})
	if !ok || got != `<p>Cost is $6</p>` {
		t.Fatalf("expected literal folded replacement, got %q (ok=%v)", got, ok)
	}
}

func TestApplyProblemAcrossTagBoundary(t *testing.T) {
	html := `<p>community <strong>garden</strong> funding</p>`
	got, ok := Apply(html, Suggestion{Problem: "community garden", Suggestion: "urban farm"})
	if ok {
		t.Fatal("expected suggestion spanning a tag boundary to be dropped")
	}
	if got != html {
		t.Fatalf("expected input unchanged, got %q", got)
	}
}

func TestApplyInvalidInputs(t *testing.T) {
	cases := []struct {
		name string
		html string
		s    Suggestion
	}{
		{name: "empty html", html: "", s: Suggestion{Problem: "a", Suggestion: "b"}},
		{name: "empty problem", html: "<p>a</p>", s: Suggestion{Suggestion: "b"}},
		{name: "empty suggestion", html: "<p>a</p>", s: Suggestion{Problem: "a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Apply(tc.html, tc.s)
			if ok || got != tc.html {
				t.Fatalf("expected no-op, got %q (ok=%v)", got, ok)
			}
		})
	}
}

func TestApplyAll(t *testing.T) {
	html := `<p>teh garden needs watr.</p>`
	res := ApplyAll(html, []Suggestion{
		{Problem: "teh", Suggestion: "the"},
		{Problem: "missing", Suggestion: "x"},
		{Problem: "watr", Suggestion: "water"},
	})
	if res.HTML != `<p>the garden needs water.</p>` {
		t.Fatalf("unexpected html %q", res.HTML)
	}
	if res.Changed != 2 {
		t.Fatalf("expected 2 changes, got %d", res.Changed)
	}
	if res.Applied[0] != true || res.Applied[1] != false || res.Applied[2] != true {
		t.Fatalf("unexpected applied flags %v", res.Applied)
	}
}

func TestSplitRoundTrips(t *testing.T) {
	html := `a<b>c</b><br>d`
	parts := split(html)
	if strings.Join(parts, "") != html {
		t.Fatalf("expected join to reproduce input, got %v", parts)
	}
}
