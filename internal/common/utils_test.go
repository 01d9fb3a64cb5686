package common

import (
	"reflect"
	"strings"
	"testing"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  https://example.com  ", "https://example.com"},
		{"[docs](https://example.com/docs)", "https://example.com/docs"},
		{"https://example.com,", "https://example.com"},
		{"(https://example.com)", "https://example.com"},
		{`"https://example.com/a".`, "https://example.com/a"},
		{"<https://example.com>", "https://example.com"},
	}
	for _, tt := range tests {
		if got := SanitizeURL(tt.in); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	valid, invalid := SanitizeAndValidateURLs([]string{
		"https://en.wikipedia.org/wiki/Osmosis,",
		"http://localhost:8080/page",
		"ftp://example.com",
		"https://exa mple.com",
		"not a url",
		"",
	})
	wantValid := []string{"https://en.wikipedia.org/wiki/Osmosis", "http://localhost:8080/page"}
	if !reflect.DeepEqual(valid, wantValid) {
		t.Errorf("valid = %v, want %v", valid, wantValid)
	}
	if len(invalid) != 4 {
		t.Errorf("invalid = %v, want 4 entries", invalid)
	}
}

func TestContentHash(t *testing.T) {
	got := ContentHash([]byte("hello"))
	if got != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("ContentHash(hello) = %s", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, ,b,c ")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("SplitList() = %v", got)
	}
	if SplitList("") != nil {
		t.Error("SplitList(\"\") should be nil")
	}
}

func TestToYAML(t *testing.T) {
	out, err := ToYAML(map[string]int{"sets": 2})
	if err != nil {
		t.Fatalf("ToYAML() error = %v", err)
	}
	if !strings.Contains(out, "sets: 2") {
		t.Errorf("ToYAML() = %q", out)
	}
}
