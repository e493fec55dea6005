// Package suggest applies review suggestions to rendered HTML without touching markup.
package suggest

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Suggestion is one (problem, reason, suggestion) triple produced by a review pass.
type Suggestion struct {
	Problem    string `json:"problem"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}

// Result reports what ApplyAll did with each suggestion, in input order.
type Result struct {
	HTML    string `json:"html"`
	Applied []bool `json:"applied"`
	Changed int    `json:"changed"`
}

// Apply replaces the first occurrence of s.Problem found in a text fragment of doc with the escaped
// suggestion. Tag fragments are never inspected. When nothing matches, doc comes back unchanged with false.
func Apply(doc string, s Suggestion) (string, bool) {
	if doc == "" || s.Problem == "" || s.Suggestion == "" {
		return doc, false
	}
	parts := split(doc)
	replacement := html.EscapeString(s.Suggestion)

	for i, part := range parts {
		if isTag(part) {
			continue
		}
		if idx := strings.Index(part, s.Problem); idx >= 0 {
			parts[i] = part[:idx] + replacement + part[idx+len(s.Problem):]
			return strings.Join(parts, ""), true
		}
	}

	fold := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s.Problem))
	for i, part := range parts {
		if isTag(part) {
			continue
		}
		if loc := fold.FindStringIndex(part); loc != nil {
			parts[i] = part[:loc[0]] + replacement + part[loc[1]:]
			return strings.Join(parts, ""), true
		}
	}
	return doc, false
}

// ApplyAll applies suggestions in order, each against the output of the previous one.
func ApplyAll(doc string, suggestions []Suggestion) Result {
	res := Result{HTML: doc, Applied: make([]bool, len(suggestions))}
	for i, s := range suggestions {
		var ok bool
		res.HTML, ok = Apply(res.HTML, s)
		res.Applied[i] = ok
		if ok {
			res.Changed++
		}
	}
	return res
}

// split cuts doc into alternating text and tag fragments. Joining the result yields doc again.
func split(doc string) []string {
	locs := tagPattern.FindAllStringIndex(doc, -1)
	parts := make([]string, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		parts = append(parts, doc[prev:loc[0]], doc[loc[0]:loc[1]])
		prev = loc[1]
	}
	return append(parts, doc[prev:])
}

func isTag(part string) bool {
	return strings.HasPrefix(part, "<") && strings.HasSuffix(part, ">")
}
