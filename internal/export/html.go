package export

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a document body cleaned up for printing.
type Page struct {
	Title string
	Body  string
}

// PreparePage drops scripts, styles and editor-only attributes and picks the first heading as title.
func PreparePage(fragment string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Page{}, fmt.Errorf("parse document html: %w", err)
	}
	doc.Find("script, style, iframe").Remove()
	doc.Find("[contenteditable]").RemoveAttr("contenteditable")
	doc.Find("[onclick]").RemoveAttr("onclick")

	title := strings.TrimSpace(doc.Find("h1, h2, h3").First().Text())
	body, err := doc.Find("body").Html()
	if err != nil {
		return Page{}, fmt.Errorf("serialize document html: %w", err)
	}
	return Page{Title: title, Body: strings.TrimSpace(body)}, nil
}
