package sets

import (
	"strings"
	"testing"

	"github.com/dtnitsch/studybot/models"
	dbpkg "github.com/dtnitsch/studybot/pkg/db"
)

type fakeLister []dbpkg.StudySetInfo

func (f fakeLister) ListStudySets(limit int) ([]dbpkg.StudySetInfo, error) {
	if limit > 0 && limit < len(f) {
		return f[:limit], nil
	}
	return f, nil
}

func TestResolveSetID(t *testing.T) {
	sets := fakeLister{
		{ID: "3f2a9c1d-0000-4000-8000-000000000001"},
		{ID: "3f2b0000-0000-4000-8000-000000000002"},
		{ID: "short"},
	}

	tests := []struct {
		arg     string
		want    string
		wantErr string
	}{
		{"3f2a9c1d-0000-4000-8000-000000000001", "3f2a9c1d-0000-4000-8000-000000000001", ""},
		{"3f2a", "3f2a9c1d-0000-4000-8000-000000000001", ""},
		{" short ", "short", ""},
		{"3f2", "", "ambiguous"},
		{"ffff", "", "not found"},
		{"", "", "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ResolveSetID(tt.arg, sets)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ResolveSetID(%q) error = %v, want %q", tt.arg, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveSetID(%q) error = %v", tt.arg, err)
			}
			if got != tt.want {
				t.Errorf("ResolveSetID(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestFindCard(t *testing.T) {
	cards := []models.Flashcard{
		{ID: "aa11"},
		{ID: "ab22"},
		{ID: "c333"},
	}

	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"1", "aa11", false},
		{"3", "c333", false},
		{"0", "", true},
		{"4", "", true},
		{"ab22", "ab22", false},
		{"c", "c333", false},
		{"a", "", true},
		{"zz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := FindCard(cards, tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindCard(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FindCard(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f2a9c1d-0000"); got != "3f2a9c1d" {
		t.Errorf("shortID() = %q, want %q", got, "3f2a9c1d")
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q, want %q", got, "abc")
	}
}
