// Package format turns model output into the HTML shapes the editor renders.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Output types understood by Format.
const (
	TypePDF       = "pdf"
	TypeDOCX      = "docx"
	TypeGrant     = "grant"
	TypePPT       = "ppt"
	TypeX         = "x"
	TypeInstagram = "instagram"
)

var (
	headingPattern  = regexp.MustCompile(`(?m)^[ \t]*(#{1,3}) (.*)$`)
	boldPattern     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emPattern       = regexp.MustCompile(`\*(.*?)\*`)
	slideMarker     = regexp.MustCompile(`Slide \d+:`)
	slideMarkerFold = regexp.MustCompile(`(?i)Slide \d+:`)
	bulletPattern   = regexp.MustCompile(`• (.*)`)
	anchorPattern   = regexp.MustCompile(`<h([1-3]) id="(sec-[^"]*)">(.*?)</h[1-3]>`)
	tagStrip        = regexp.MustCompile(`<[^>]*>`)
)

// IsDocument reports whether outputType renders as a document container.
func IsDocument(outputType string) bool {
	switch outputType {
	case TypePDF, TypeDOCX, TypeGrant:
		return true
	}
	return false
}

// Format renders content for outputType. Unknown types fall back to line breaks only.
func Format(content, outputType string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	switch {
	case IsDocument(outputType):
		return document(content, outputType == TypeGrant)
	case outputType == TypePPT:
		return slides(content)
	case outputType == TypeX:
		return xPost(content)
	case outputType == TypeInstagram:
		return instagramPost(content)
	default:
		return strings.ReplaceAll(content, "\n", "<br>")
	}
}

func document(content string, grant bool) string {
	out := ExtractTables(content)

	ordinal := 0
	out = headingPattern.ReplaceAllStringFunc(out, func(line string) string {
		m := headingPattern.FindStringSubmatch(line)
		level := len(m[1])
		ordinal++
		return fmt.Sprintf(`<h%d id="%s">%s</h%d>`, level, Anchor(ordinal, m[2]), m[2], level)
	})
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = emPattern.ReplaceAllString(out, "<em>$1</em>")
	out = strings.ReplaceAll(out, "\n\n", "<br><br>")
	out = strings.ReplaceAll(out, "\n", "<br>")

	if grant {
		return `<div class="document-container grant-proposal">` + out + `</div>`
	}
	return `<div class="document-container">` + out + `</div>`
}

func slides(content string) string {
	locs := slideMarker.FindAllStringIndex(content, -1)
	if len(locs) > 0 {
		var b strings.Builder
		b.WriteString(`<div class="slides">`)
		for i, loc := range locs {
			end := len(content)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			body := content[loc[1]:end]
			title, rest, _ := strings.Cut(body, "\n")
			title = strings.TrimSpace(title)
			if title == "" {
				title = fmt.Sprintf("Slide %d", i+1)
			}
			writeSlide(&b, title, strings.TrimSpace(rest))
		}
		b.WriteString(`</div>`)
		return b.String()
	}

	parts := slideMarkerFold.Split(content, -1)
	if len(parts) < 2 {
		return strings.ReplaceAll(content, "\n", "<br>")
	}
	var b strings.Builder
	b.WriteString(`<div class="slides">`)
	for i := 1; i < len(parts); i++ {
		writeSlide(&b, fmt.Sprintf("Slide %d", i), parts[i])
	}
	b.WriteString(`</div>`)
	return b.String()
}

func writeSlide(b *strings.Builder, title, body string) {
	body = bulletPattern.ReplaceAllString(body, "<li>$1</li>")
	body = strings.ReplaceAll(body, "\n", "<br>")
	fmt.Fprintf(b, `<div class="slide"><h3>%s</h3><div class="slide-content">%s</div></div>`, title, body)
}

func xPost(content string) string {
	post := section(content, "POST:", "HASHTAGS:")
	hashtags := section(content, "HASHTAGS:", "ENGAGEMENT PROMPT:")
	engagement := section(content, "ENGAGEMENT PROMPT:")
	return `<div class="social-post x-post">` +
		`<div class="post-content">` + strings.ReplaceAll(post, "\n", "<br>") + `</div>` +
		`<div class="hashtags">` + strings.ReplaceAll(hashtags, "\n", " ") + `</div>` +
		`<div class="engagement">` + strings.ReplaceAll(engagement, "\n", "<br>") + `</div>` +
		`</div>`
}

func instagramPost(content string) string {
	caption := section(content, "CAPTION:", "HASHTAGS:")
	hashtags := section(content, "HASHTAGS:")
	return `<div class="social-post instagram-post">` +
		`<div class="caption">` + strings.ReplaceAll(caption, "\n", "<br>") + `</div>` +
		`<div class="hashtags">` + strings.ReplaceAll(hashtags, "\n", " ") + `</div>` +
		`</div>`
}

// section returns the trimmed text after label up to the first terminator, or to the end.
// A missing label yields "".
func section(content, label string, terminators ...string) string {
	start := strings.Index(content, label)
	if start < 0 {
		return ""
	}
	rest := content[start+len(label):]
	end := len(rest)
	for _, term := range terminators {
		if idx := strings.Index(rest, term); idx >= 0 && idx < end {
			end = idx
		}
	}
	return strings.TrimSpace(rest[:end])
}

// Anchor builds the stable id of the ordinal-th heading.
func Anchor(ordinal int, title string) string {
	return fmt.Sprintf("sec-%d-%s", ordinal, Slug(title))
}

// Slug lowercases s and joins its letter and digit runs with dashes.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 64 {
		slug = strings.TrimRight(slug[:64], "-")
	}
	if slug == "" {
		return "section"
	}
	return slug
}

// Heading is one anchored heading found in formatted HTML.
type Heading struct {
	Anchor string `json:"anchor"`
	Level  int    `json:"level"`
	Title  string `json:"title"`
}

// Headings lists the anchored headings of html in document order.
func Headings(html string) []Heading {
	matches := anchorPattern.FindAllStringSubmatch(html, -1)
	out := make([]Heading, 0, len(matches))
	for _, m := range matches {
		out = append(out, Heading{
			Anchor: m[2],
			Level:  int(m[1][0] - '0'),
			Title:  strings.TrimSpace(tagStrip.ReplaceAllString(m[3], "")),
		})
	}
	return out
}
