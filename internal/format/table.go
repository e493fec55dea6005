package format

import (
	"regexp"
	"strings"
)

var separatorRow = regexp.MustCompile(`^[|\-:\s]+$`)

// ExtractTables replaces every markdown table block in content with an HTML table.
// A block starts at a line holding more than one pipe and runs while lines contain a pipe.
// The line break after a block is kept so a heading on the next line still starts a line.
func ExtractTables(content string) string {
	lines := strings.Split(content, "\n")
	var (
		out   strings.Builder
		block []string
	)
	flush := func(more bool) {
		if len(block) == 0 {
			return
		}
		raw := strings.Join(block, "\n")
		block = nil
		if html, ok := TableHTML(raw); ok {
			out.WriteString(html)
		} else {
			out.WriteString(raw)
		}
		if more {
			out.WriteByte('\n')
		}
	}

	for i, line := range lines {
		if len(block) > 0 {
			if strings.Contains(line, "|") {
				block = append(block, line)
				continue
			}
			flush(true)
		} else if strings.Count(line, "|") > 1 {
			block = append(block, line)
			continue
		}
		out.WriteString(line)
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}
	}
	flush(false)
	return out.String()
}

// TableHTML converts one markdown table block. The first row is the header and the
// first separator row after it is skipped. ok is false when the block has fewer than two rows.
func TableHTML(block string) (string, bool) {
	rows := strings.Split(strings.TrimSpace(block), "\n")
	if len(rows) < 2 {
		return block, false
	}

	var b strings.Builder
	b.WriteString(`<table class="content-table">`)
	if header := cells(rows[0]); len(header) > 0 {
		b.WriteString("<thead><tr>")
		for _, c := range header {
			b.WriteString("<th>" + c + "</th>")
		}
		b.WriteString("</tr></thead>")
	}

	separator := -1
	for i := 1; i < len(rows); i++ {
		if separatorRow.MatchString(rows[i]) {
			separator = i
			break
		}
	}

	b.WriteString("<tbody>")
	for i := 1; i < len(rows); i++ {
		if i == separator || !strings.Contains(rows[i], "|") {
			continue
		}
		row := cells(rows[i])
		if len(row) == 0 {
			continue
		}
		b.WriteString("<tr>")
		for _, c := range row {
			b.WriteString("<td>" + c + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String(), true
}

// cells splits a row on pipes, trimming each cell. Empty cells produced by a leading
// or trailing pipe are dropped; empty cells in between are kept.
func cells(row string) []string {
	parts := strings.Split(row, "|")
	out := make([]string, 0, len(parts))
	last := len(parts) - 1
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if (i == 0 || i == last) && p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
