package suggest

import (
	"encoding/json"
	"errors"
	"regexp"
)

var ErrUnparseable = errors.New("review response contains no suggestion array")

var jsonArray = regexp.MustCompile(`(?s)\[.*\]`)

// Parse reads the suggestion list out of a review response. The outermost bracketed span wins,
// which tolerates code fences and prose around the array.
func Parse(text string) ([]Suggestion, error) {
	candidate := text
	if m := jsonArray.FindString(text); m != "" {
		candidate = m
	}
	var out []Suggestion
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil, errors.Join(ErrUnparseable, err)
	}
	if out == nil {
		out = []Suggestion{}
	}
	return out, nil
}
