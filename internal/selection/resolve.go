package selection

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"docgen/api/internal/session"
)

// ErrUnresolved means a RangeInfo no longer points at the recorded text.
var ErrUnresolved = errors.New("selection range no longer resolves")

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	nextAnchorOpen = regexp.MustCompile(`<h[1-3] id="sec-[^"]*">`)
)

// fragment is one run of text between tags. raw indexes html; text is the decoded run.
type fragment struct {
	rawStart, rawEnd int
	textStart        int
	text             string
}

// Span is a resolved selection inside one text fragment.
type Span struct {
	frag       fragment
	start, end int
}

// section returns the byte range of html from just inside the anchored heading to the next anchored heading.
func section(doc, anchor string) (int, int, bool) {
	if anchor == "" {
		return 0, 0, false
	}
	open := regexp.MustCompile(`<h[1-3] id="` + regexp.QuoteMeta(anchor) + `">`)
	loc := open.FindStringIndex(doc)
	if loc == nil {
		return 0, 0, false
	}
	start := loc[1]
	end := len(doc)
	if next := nextAnchorOpen.FindStringIndex(doc[start:]); next != nil {
		end = start + next[0]
	}
	return start, end, true
}

func fragments(doc string, start, end int) []fragment {
	var (
		out    []fragment
		offset int
		cursor = start
	)
	add := func(from, to int) {
		if from >= to {
			return
		}
		text := html.UnescapeString(doc[from:to])
		out = append(out, fragment{rawStart: from, rawEnd: to, textStart: offset, text: text})
		offset += len(text)
	}
	for _, loc := range tagPattern.FindAllStringIndex(doc[start:end], -1) {
		add(cursor, start+loc[0])
		cursor = start + loc[1]
	}
	add(cursor, end)
	return out
}

// SectionText is the decoded text of the section under anchor, heading included.
func SectionText(doc, anchor string) (string, bool) {
	start, end, ok := section(doc, anchor)
	if !ok {
		return "", false
	}
	var b strings.Builder
	for _, f := range fragments(doc, start, end) {
		b.WriteString(f.text)
	}
	return b.String(), true
}

// Resolve finds r in doc. The offsets must fall inside a single text fragment whose decoded text
// there equals want.
func Resolve(doc string, r *session.RangeInfo, want string) (Span, error) {
	if r == nil {
		return Span{}, fmt.Errorf("%w: no range recorded", ErrUnresolved)
	}
	start, end, ok := section(doc, r.Anchor)
	if !ok {
		return Span{}, fmt.Errorf("%w: anchor %q not found", ErrUnresolved, r.Anchor)
	}
	if r.StartOffset < 0 || r.EndOffset <= r.StartOffset {
		return Span{}, fmt.Errorf("%w: invalid offsets [%d,%d)", ErrUnresolved, r.StartOffset, r.EndOffset)
	}
	for _, f := range fragments(doc, start, end) {
		fEnd := f.textStart + len(f.text)
		if r.StartOffset < f.textStart || r.StartOffset >= fEnd {
			continue
		}
		if r.EndOffset > fEnd {
			return Span{}, fmt.Errorf("%w: range crosses markup", ErrUnresolved)
		}
		s := Span{frag: f, start: r.StartOffset - f.textStart, end: r.EndOffset - f.textStart}
		if got := f.text[s.start:s.end]; got != want {
			return Span{}, fmt.Errorf("%w: text at range is %q", ErrUnresolved, got)
		}
		return s, nil
	}
	return Span{}, fmt.Errorf("%w: offsets [%d,%d) outside section", ErrUnresolved, r.StartOffset, r.EndOffset)
}

// Splice replaces the span with replacement and leaves every other byte of doc as it was.
func (s Span) Splice(doc, replacement string) string {
	raw := doc[s.frag.rawStart:s.frag.rawEnd]
	var rewritten string
	if !strings.Contains(raw, "&") {
		rewritten = raw[:s.start] + html.EscapeString(replacement) + raw[s.end:]
	} else {
		text := s.frag.text
		rewritten = html.EscapeString(text[:s.start] + replacement + text[s.end:])
	}
	return doc[:s.frag.rawStart] + rewritten + doc[s.frag.rawEnd:]
}
