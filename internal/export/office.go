package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Template is an office file that can be filled with data.
type Template struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
}

var templateExtensions = map[string]bool{".docx": true, ".xlsx": true, ".pptx": true}

// placeholderPattern matches {d.path} markers, e.g. {d.client.name} or {d.items[0].amount}.
var placeholderPattern = regexp.MustCompile(`\{d\.([A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+|\[[0-9]+\])*)\}`)

var pathSegment = regexp.MustCompile(`[A-Za-z0-9_]+|\[[0-9]+\]`)

// ListTemplates returns the office templates in dir, sorted by filename.
func ListTemplates(dir string) ([]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir: %w", err)
	}
	templates := []Template{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !templateExtensions[ext] {
			continue
		}
		templates = append(templates, Template{
			Name:     strings.TrimSuffix(e.Name(), ext),
			Filename: e.Name(),
			Type:     strings.ToUpper(strings.TrimPrefix(ext, ".")),
		})
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Filename < templates[j].Filename })
	return templates, nil
}

// FindTemplate matches name against the filename or the name without extension, ignoring case.
func FindTemplate(dir, name string) (Template, error) {
	templates, err := ListTemplates(dir)
	if err != nil {
		return Template{}, err
	}
	for _, t := range templates {
		if strings.EqualFold(t.Filename, name) || strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

// FillTemplate copies the OOXML package at path and substitutes placeholders in every XML part.
// Unknown paths render as empty text.
func FillTemplate(path string, data map[string]any) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer r.Close()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range r.File {
		if err := copyPart(w, f, data); err != nil {
			return nil, fmt.Errorf("template part %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func copyPart(w *zip.Writer, f *zip.File, data map[string]any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	if strings.HasSuffix(f.Name, ".xml") {
		content = fillPlaceholders(content, data)
	}
	header := f.FileHeader
	out, err := w.CreateHeader(&zip.FileHeader{Name: header.Name, Method: header.Method, Modified: header.Modified})
	if err != nil {
		return err
	}
	_, err = out.Write(content)
	return err
}

func fillPlaceholders(part []byte, data map[string]any) []byte {
	return placeholderPattern.ReplaceAllFunc(part, func(m []byte) []byte {
		path := string(placeholderPattern.FindSubmatch(m)[1])
		value, ok := lookup(data, path)
		if !ok || value == nil {
			return nil
		}
		var escaped bytes.Buffer
		_ = xml.EscapeText(&escaped, []byte(fmt.Sprint(value)))
		return escaped.Bytes()
	})
}

func lookup(data map[string]any, path string) (any, bool) {
	var cur any = data
	for _, seg := range pathSegment.FindAllString(path, -1) {
		if strings.HasPrefix(seg, "[") {
			idx, _ := strconv.Atoi(strings.Trim(seg, "[]"))
			list, ok := cur.([]any)
			if !ok || idx >= len(list) {
				return nil, false
			}
			cur = list[idx]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}
