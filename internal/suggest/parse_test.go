package suggest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	want := []Suggestion{{Problem: "teh", Reason: "typo", Suggestion: "the"}}
	cases := []struct {
		name string
		text string
	}{
		{name: "bare array", text: `[{"problem":"teh","reason":"typo","suggestion":"the"}]`},
		{name: "fenced", text: "```json\n[{\"problem\":\"teh\",\"reason\":\"typo\",\"suggestion\":\"the\"}]\n```"},
		{name: "prose around", text: "Here you go:\n[{\"problem\":\"teh\",\"reason\":\"typo\",\"suggestion\":\"the\"}]\nThanks"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseEmptyArray(t *testing.T) {
	got, err := Parse("[]")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestParseFailure(t *testing.T) {
	for _, text := range []string{"no issues found", "[not json]", ""} {
		if _, err := Parse(text); !errors.Is(err, ErrUnparseable) {
			t.Fatalf("Parse(%q) expected ErrUnparseable, got %v", text, err)
		}
	}
}
