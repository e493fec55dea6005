// Package fields maps structured document HTML to a flat form model and back.
package fields

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"

	"docgen/api/internal/format"
)

var (
	titlePrefix     = regexp.MustCompile(`(?i)NON-PROFIT GRANT PROPOSAL:|RESEARCH GRANT PROPOSAL:|GRANT RFP:|GRANT PROPOSAL:`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
	inlineSpace     = regexp.MustCompile(`[ \t\r]+`)
	headingSelector = "h1, h2, h3"
)

// Model is the flat form view of one document version.
type Model struct {
	OutputType string            `json:"outputType"`
	GrantType  string            `json:"grantType,omitempty"`
	Fields     map[string]string `json:"fields"`
}

// Extract reads the form fields for the given shape out of document HTML.
// Sections are delimited by h1 to h3 headings. Unknown headings are ignored and missing ones yield "".
func Extract(doc, outputType, grantType string) (Model, error) {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return Model{}, fmt.Errorf("parse document: %w", err)
	}

	defs := Definitions(outputType, grantType)
	model := Model{OutputType: outputType, GrantType: grantType, Fields: make(map[string]string, len(defs))}
	for _, f := range defs {
		model.Fields[f.ID] = ""
	}

	titleEl := root.Find("h1").First()
	if titleEl.Length() > 0 {
		title := titleEl.Text()
		if loc := titlePrefix.FindStringIndex(title); loc != nil {
			title = title[:loc[0]] + title[loc[1]:]
		}
		model.Fields["title"] = strings.TrimSpace(title)
	}

	if outputType != "grant" {
		model.Fields["content"] = documentText(root, titleEl)
		return model, nil
	}

	byHeading := make(map[string]string, len(defs))
	for _, f := range defs {
		if f.Heading != "" {
			byHeading[f.Heading] = f.ID
		}
	}
	root.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		id, ok := byHeading[normalizeHeading(h.Text())]
		if !ok {
			return
		}
		model.Fields[id] = sectionText(h.Nodes[0])
	})

	rows := root.Find("table").First().Find("tbody tr")
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		activity := strings.TrimSpace(cells.Eq(0).Text())
		date := strings.TrimSpace(cells.Eq(1).Text())
		for _, f := range defs {
			if f.Row != "" && strings.Contains(activity, f.Row) {
				model.Fields[f.ID] = date
				break
			}
		}
	})
	return model, nil
}

func normalizeHeading(s string) string {
	s = strings.TrimLeft(strings.TrimSpace(s), "# ")
	return strings.ToUpper(strings.TrimSpace(s))
}

// sectionText collects the text following heading up to the next heading. Tables are skipped.
func sectionText(heading *xhtml.Node) string {
	var b strings.Builder
	for n := heading.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == xhtml.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3":
				return cleanText(b.String())
			case "table":
				continue
			case "br":
				b.WriteByte(' ')
				continue
			}
			b.WriteString(goquery.NewDocumentFromNode(n).Text())
			b.WriteByte(' ')
			continue
		}
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
		}
	}
	return cleanText(b.String())
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "#", "")
	return strings.Join(strings.Fields(s), " ")
}

// documentText flattens the document into paragraphs separated by blank lines, leaving out skip.
func documentText(root *goquery.Document, skip *goquery.Selection) string {
	var skipNode *xhtml.Node
	if skip.Length() > 0 {
		skipNode = skip.Nodes[0]
	}
	var b strings.Builder
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n == skipNode {
			return
		}
		switch n.Type {
		case xhtml.TextNode:
			b.WriteString(n.Data)
			return
		case xhtml.ElementNode:
			if n.Data == "br" {
				b.WriteByte('\n')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == xhtml.ElementNode {
			switch n.Data {
			case "p", "h1", "h2", "h3", "li", "tr", "table":
				b.WriteString("\n\n")
			}
		}
	}
	for _, n := range root.Find("body").Nodes {
		walk(n)
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// Render regenerates document HTML from the model. Values are escaped and every heading
// carries a fresh section anchor.
func Render(m Model) string {
	r := renderer{}
	if m.OutputType != "grant" {
		r.open(`<div class="document-container">`)
		if title := m.Fields["title"]; title != "" {
			r.heading(1, title)
		}
		for _, para := range strings.Split(m.Fields["content"], "\n\n") {
			if strings.TrimSpace(para) != "" {
				r.b.WriteString("<p>" + html.EscapeString(para) + "</p>")
			}
		}
		return r.close()
	}

	r.open(`<div class="document-container grant-proposal">`)
	prefix, ok := titlePrefixes[m.GrantType]
	if !ok {
		prefix = titlePrefixes["rfp"]
	}
	if title := m.Fields["title"]; title != "" {
		r.heading(1, prefix+title)
	}

	if m.GrantType != "generic" && m.GrantType != "nonprofit" && m.GrantType != "research" {
		renderRFP(&r, m.Fields)
		return r.close()
	}
	for _, f := range Definitions(m.OutputType, m.GrantType) {
		if f.Heading == "" || m.Fields[f.ID] == "" {
			continue
		}
		r.heading(2, f.Heading)
		r.b.WriteString("<p>" + html.EscapeString(m.Fields[f.ID]) + "</p>")
	}
	return r.close()
}

func renderRFP(r *renderer, values map[string]string) {
	for _, f := range rfpFields {
		switch {
		case f.ID == "title" || f.Row != "":
			continue
		case f.ID == "applicationPeriod":
			renderTimeline(r, values)
			r.heading(2, rfpScopeHeading)
		}
		if values[f.ID] == "" {
			continue
		}
		level := 2
		if isScopeSubsection(f.ID) {
			level = 3
		}
		r.heading(level, f.Heading)
		r.b.WriteString("<p>" + html.EscapeString(values[f.ID]) + "</p>")
	}
}

func renderTimeline(r *renderer, values map[string]string) {
	r.heading(2, rfpTimelineHeading)
	r.b.WriteString(`<table class="content-table"><thead><tr><th>ACTIVITY</th><th>PROJECTED DATE</th></tr></thead><tbody>`)
	for _, f := range rfpFields {
		if f.Row == "" || values[f.ID] == "" {
			continue
		}
		r.b.WriteString("<tr><td>" + html.EscapeString(f.Label) + "</td><td>" + html.EscapeString(values[f.ID]) + "</td></tr>")
	}
	r.b.WriteString("</tbody></table>")
}

func isScopeSubsection(id string) bool {
	switch id {
	case "applicationPeriod", "priorToSubmissions", "afterSubmissions", "underwritingPeriod", "underwritingReview", "revisionsReport":
		return true
	}
	return false
}

type renderer struct {
	b       strings.Builder
	ordinal int
}

func (r *renderer) open(container string) { r.b.WriteString(container) }

func (r *renderer) close() string {
	r.b.WriteString("</div>")
	return r.b.String()
}

func (r *renderer) heading(level int, title string) {
	r.ordinal++
	fmt.Fprintf(&r.b, `<h%d id="%s">%s</h%d>`, level, format.Anchor(r.ordinal, title), html.EscapeString(title), level)
}
