package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/dtnitsch/studybot/models"
)

var day = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

func testStorage() *Storage {
	n := 0
	return &Storage{
		NewID: func() string { n++; return "new-" + strconv.Itoa(n) },
		Now:   func() time.Time { return day },
	}
}

func testSet() *models.StudySet {
	return &models.StudySet{
		ID:    "orig",
		Title: "Cell Biology",
		StudyMaterials: models.StudyMaterials{
			Summary: map[models.DetailLevel]models.Summary{
				models.DetailStandard: {Text: "Cells.", KeyPoints: []string{"cells"}},
			},
			Flashcards: []models.Flashcard{{ID: "c1", Question: "Q", Answer: "A", Known: true}},
			Quiz:       []models.QuizQuestion{{ID: "q1", Question: "Q?", Type: models.QuestionTrueFalse, Options: []string{"True", "False"}, CorrectAnswerIndex: 1}},
			Metadata:   models.StudyMetadata{Title: "Cell Biology", Source: models.SourceClaudeAPI},
		},
		CreatedAt: day.Add(-48 * time.Hour),
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		title  string
		format string
		want   string
	}{
		{"Cell Biology", FormatJSON, "Cell Biology-2026-10-18.json"},
		{"a/b: c?", FormatJSON, "a-b- c--2026-10-18.json"},
		{"Notes", FormatYAML, "Notes-2026-10-18.yaml"},
		{"  ", "", "study-set-2026-10-18.json"},
	}
	for _, tt := range tests {
		if got := ExportFilename(tt.title, day, tt.format); got != tt.want {
			t.Errorf("ExportFilename(%q, %q) = %q, want %q", tt.title, tt.format, got, tt.want)
		}
	}
}

func TestExportImport(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			s := testStorage()
			dir := t.TempDir()

			path, err := s.Export(testSet(), dir, format)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if filepath.Base(path) != ExportFilename("Cell Biology", day, format) {
				t.Errorf("Export() path = %q", path)
			}

			got, err := s.Import(path)
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if got.ID == "orig" || got.Flashcards[0].ID == "c1" || got.Quiz[0].ID == "q1" {
				t.Errorf("Import() kept original ids: set %q card %q quiz %q", got.ID, got.Flashcards[0].ID, got.Quiz[0].ID)
			}
			if !got.CreatedAt.Equal(day) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, day)
			}
			if got.Title != "Cell Biology" || !got.Flashcards[0].Known || got.Quiz[0].CorrectAnswer() != "False" {
				t.Errorf("Import() content mismatch: %+v", got)
			}
			if got.Summary[models.DetailStandard].Text != "Cells." {
				t.Errorf("summary = %+v", got.Summary)
			}
		})
	}
}

func TestImport_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"not json", "bad.json", "{not json"},
		{"missing title", "notitle.json", `{"flashcards": []}`},
		{"missing flashcards", "nocards.json", `{"title": "x"}`},
		{"bad answer index", "index.json", `{"title":"x","flashcards":[],"quiz":[{"question":"q","options":["a"],"correct_answer_index":3}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := testStorage().Import(path); err == nil {
				t.Errorf("Import(%s) error = nil, want error", tt.file)
			}
		})
	}

	if _, err := testStorage().Import(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Import(missing file) error = nil, want error")
	}
}

func TestMarshal_UnknownFormat(t *testing.T) {
	if _, err := Marshal(testSet(), "xml"); err == nil {
		t.Error("Marshal(xml) error = nil, want error")
	}
}
