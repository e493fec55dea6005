package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
)

const (
	PresentationFilename = "CAFB_Presentation.pptx"

	deckOrganization  = "Capital Area Food Bank"
	deckTagline       = "Serving our community"
	maxDeckIterations = 20
	maxBullets        = 5
)

type Theme struct {
	Name string `json:"name"`
	Fill string `json:"fill"`
	Text string `json:"text"`
}

var (
	ThemeDarkGreen  = Theme{Name: "darkGreen", Fill: "004D40", Text: "FFFFFF"}
	ThemeOrange     = Theme{Name: "orange", Fill: "FF5722", Text: "FFFFFF"}
	ThemeLightGreen = Theme{Name: "lightGreen", Fill: "8BC34A", Text: "333333"}
)

func (t Theme) next() Theme {
	switch t.Name {
	case ThemeDarkGreen.Name:
		return ThemeOrange
	case ThemeOrange.Name:
		return ThemeLightGreen
	default:
		return ThemeDarkGreen
	}
}

type SlideKind string

const (
	SlideTitle   SlideKind = "title"
	SlideSection SlideKind = "section"
	SlideContent SlideKind = "content"
	SlideImages  SlideKind = "images"
	SlideClosing SlideKind = "closing"
)

type Slide struct {
	Kind     SlideKind `json:"kind"`
	Theme    Theme     `json:"theme"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Date     string    `json:"date,omitempty"`
	Bullets  []string  `json:"bullets,omitempty"`
	Images   []string  `json:"images,omitempty"`
}

// DeckText is one retrieved passage.
type DeckText struct {
	Title string
	Body  string
}

type Deck struct {
	Slides []Slide `json:"slides"`
}

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// Bullets splits text into at most max trimmed sentences.
func Bullets(text string, max int) []string {
	var out []string
	for _, s := range sentenceBreak.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

// PlanDeck lays out at most numSlides slides from texts and image URLs. Empty image URLs are
// placeholders for images without a location.
func PlanDeck(numSlides int, texts []DeckText, images []string, now time.Time) Deck {
	title := Slide{
		Kind:     SlideTitle,
		Theme:    ThemeDarkGreen,
		Title:    deckOrganization,
		Subtitle: deckTagline,
		Date:     fmt.Sprintf("%d/%d/%d", int(now.Month()), now.Day(), now.Year()),
	}
	if len(images) > 0 && images[0] != "" {
		title.Images = []string{images[0]}
	}
	slides := []Slide{title}

	remaining := numSlides - 1
	if remaining > maxDeckIterations {
		remaining = maxDeckIterations
	}
	theme := ThemeDarkGreen
	needsHeader := true

	for i := 0; i < remaining && len(slides) < numSlides && len(texts) > 0; i++ {
		text := texts[i%len(texts)]
		slideTitle := text.Title
		if slideTitle == "" {
			slideTitle = "Section Title"
		}
		image := ""
		if i < len(images) {
			image = images[i]
		}

		if i%3 == 0 {
			theme = theme.next()
			needsHeader = true
		}

		if needsHeader {
			section := Slide{Kind: SlideSection, Theme: theme, Title: slideTitle}
			if image != "" {
				section.Images = []string{image}
			}
			slides = append(slides, section)
			needsHeader = false
			if len(slides) >= numSlides {
				break
			}
		}

		content := Slide{Kind: SlideContent, Theme: theme, Title: slideTitle, Bullets: Bullets(text.Body, maxBullets)}
		if image != "" {
			content.Images = []string{image}
		}
		slides = append(slides, content)

		if i < len(images)-1 && len(slides) < numSlides {
			if next := images[i+1]; image != "" && next != "" {
				slides = append(slides, Slide{Kind: SlideImages, Theme: theme, Title: slideTitle, Images: []string{image, next}})
				i++
			}
		}
	}

	if len(slides) < numSlides {
		slides = append(slides, Slide{Kind: SlideClosing, Theme: ThemeDarkGreen, Title: "Thank You", Subtitle: deckOrganization})
	}
	return Deck{Slides: slides}
}

var markdownSpecial = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`,
)

// Markdown renders the deck for pandoc's pptx writer with one slide per level-2 heading.
// Section slides use level-1 headings, which pandoc turns into section header slides. The title
// slide comes from the metadata block and carries no image.
func (d Deck) Markdown() string {
	var b strings.Builder
	for _, s := range d.Slides {
		switch s.Kind {
		case SlideTitle:
			fmt.Fprintf(&b, "---\ntitle: %q\nsubtitle: %q\ndate: %q\n---\n\n", s.Title, s.Subtitle, s.Date)
		case SlideSection:
			fmt.Fprintf(&b, "# %s\n\n", markdownSpecial.Replace(s.Title))
		case SlideContent:
			fmt.Fprintf(&b, "## %s\n\n", markdownSpecial.Replace(s.Title))
			if len(s.Images) > 0 {
				b.WriteString(":::::: {.columns}\n::: {.column}\n")
			}
			for _, bullet := range s.Bullets {
				fmt.Fprintf(&b, "- %s\n", markdownSpecial.Replace(bullet))
			}
			if len(s.Images) > 0 {
				fmt.Fprintf(&b, "\n:::\n::: {.column}\n![](%s)\n:::\n::::::\n", s.Images[0])
			}
			b.WriteString("\n")
		case SlideImages:
			fmt.Fprintf(&b, "## %s\n\n:::::: {.columns}\n", markdownSpecial.Replace(s.Title))
			for _, img := range s.Images {
				fmt.Fprintf(&b, "::: {.column}\n![](%s)\n:::\n", img)
			}
			b.WriteString("::::::\n\n")
		case SlideClosing:
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", markdownSpecial.Replace(s.Title), markdownSpecial.Replace(s.Subtitle))
		}
	}
	return b.String()
}

// PreviewHTML renders the same plan as static HTML.
func (d Deck) PreviewHTML() string {
	var b strings.Builder
	b.WriteString(`<div class="ppt-preview">`)
	for i, s := range d.Slides {
		fill, text := s.Theme.Fill, s.Theme.Text
		if s.Kind == SlideContent || s.Kind == SlideImages {
			fill, text = "FFFFFF", "333333"
		}
		fmt.Fprintf(&b, `<div class="slide slide-%s" data-slide="%d" style="background-color:#%s;color:#%s">`, s.Kind, i+1, fill, text)
		switch s.Kind {
		case SlideTitle, SlideClosing:
			fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(s.Title))
			if s.Subtitle != "" {
				fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(s.Subtitle))
			}
			if s.Date != "" {
				fmt.Fprintf(&b, `<p class="slide-date">%s</p>`, html.EscapeString(s.Date))
			}
		case SlideSection:
			fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(s.Title))
		default:
			fmt.Fprintf(&b, `<div class="slide-header" style="background-color:#%s;color:#%s"><h2>%s</h2></div>`,
				s.Theme.Fill, s.Theme.Text, html.EscapeString(s.Title))
			if len(s.Bullets) > 0 {
				b.WriteString("<ul>")
				for _, bullet := range s.Bullets {
					fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(bullet))
				}
				b.WriteString("</ul>")
			}
		}
		for _, img := range s.Images {
			fmt.Fprintf(&b, `<img src="%s" alt="">`, html.EscapeString(img))
		}
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
	return b.String()
}
