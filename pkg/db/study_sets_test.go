package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dtnitsch/studybot/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

var testNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func sampleSet(id, title string) *models.StudySet {
	return &models.StudySet{
		ID:        id,
		Title:     title,
		SourceURL: "https://en.wikipedia.org/wiki/" + title,
		Content:   "Osmosis is the movement of water across a membrane.",
		Language:  "en",
		Keywords:  []string{"osmosis", "water", "membrane"},
		StudyMaterials: models.StudyMaterials{
			Summary: map[models.DetailLevel]models.Summary{
				models.DetailBrief:    {Text: "Water moves.", KeyPoints: []string{"water"}},
				models.DetailStandard: {Text: "Water moves across membranes.", KeyPoints: []string{"water", "membrane"}},
			},
			Flashcards: []models.Flashcard{
				{ID: id + "-c1", Question: "What is Osmosis?", Answer: "the movement of water", Category: "Definitions", Difficulty: "easy"},
				{ID: id + "-c2", Question: "Explain: Membrane", Answer: "A barrier", Category: "Concepts", Difficulty: "medium"},
			},
			Quiz: []models.QuizQuestion{
				{ID: id + "-q1", Question: "Osmosis moves water.", Type: models.QuestionTrueFalse, Options: []string{"True", "False"}, CorrectAnswerIndex: 0, Difficulty: "easy"},
			},
			Metadata: models.StudyMetadata{
				Title:          title,
				CharacterCount: 52,
				SentenceCount:  1,
				GeneratedAt:    testNow,
				Source:         models.SourceTemplateFallback,
			},
		},
		CreatedAt: testNow,
	}
}

func TestSaveAndGetStudySet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	set := sampleSet("set-1", "Osmosis")
	if err := db.SaveStudySet(set); err != nil {
		t.Fatalf("SaveStudySet() error = %v", err)
	}

	got, err := db.GetStudySet("set-1")
	if err != nil {
		t.Fatalf("GetStudySet() error = %v", err)
	}

	if got.Title != "Osmosis" {
		t.Errorf("Title = %q, want %q", got.Title, "Osmosis")
	}
	if got.SourceURL != set.SourceURL {
		t.Errorf("SourceURL = %q, want %q", got.SourceURL, set.SourceURL)
	}
	if len(got.Flashcards) != 2 || got.Flashcards[0].ID != "set-1-c1" || got.Flashcards[1].ID != "set-1-c2" {
		t.Errorf("Flashcards = %+v, want c1 then c2", got.Flashcards)
	}
	if len(got.Quiz) != 1 || got.Quiz[0].CorrectAnswer() != "True" {
		t.Errorf("Quiz = %+v, want one true/false question answered True", got.Quiz)
	}
	if s := got.Summary[models.DetailStandard]; s.Text != "Water moves across membranes." || len(s.KeyPoints) != 2 {
		t.Errorf("standard summary = %+v", s)
	}
	if len(got.Keywords) != 3 || got.Keywords[0] != "osmosis" {
		t.Errorf("Keywords = %v", got.Keywords)
	}
	if got.Metadata.Source != models.SourceTemplateFallback {
		t.Errorf("Metadata.Source = %q", got.Metadata.Source)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testNow)
	}
	if got.LastStudied != nil {
		t.Errorf("LastStudied = %v, want nil", got.LastStudied)
	}
}

func TestSaveStudySet_AssignsIDAndReplaces(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	db.SetClock(func() time.Time { return testNow })

	set := sampleSet("", "Cells")
	set.CreatedAt = time.Time{}
	for i := range set.Flashcards {
		set.Flashcards[i].ID = fmt.Sprintf("card-%d", i)
	}
	set.Quiz[0].ID = "quiz-0"

	if err := db.SaveStudySet(set); err != nil {
		t.Fatalf("SaveStudySet() error = %v", err)
	}
	if set.ID == "" {
		t.Fatal("SaveStudySet() did not assign an ID")
	}
	if !set.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", set.CreatedAt, testNow)
	}

	set.Title = "Cells, revised"
	set.Flashcards = set.Flashcards[:1]
	if err := db.SaveStudySet(set); err != nil {
		t.Fatalf("SaveStudySet() second save error = %v", err)
	}

	got, err := db.GetStudySet(set.ID)
	if err != nil {
		t.Fatalf("GetStudySet() error = %v", err)
	}
	if got.Title != "Cells, revised" || len(got.Flashcards) != 1 {
		t.Errorf("after replace: title %q, %d flashcards", got.Title, len(got.Flashcards))
	}
}

func TestSaveStudySet_RejectsInvalid(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	set := sampleSet("bad", "Bad")
	set.Quiz[0].CorrectAnswerIndex = 5
	if err := db.SaveStudySet(set); err == nil {
		t.Error("SaveStudySet() with out-of-range answer index should fail")
	}
}

func TestGetStudySet_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetStudySet("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetStudySet() error = %v, want ErrNotFound", err)
	}
}

func TestListAndSearchStudySets(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	older := sampleSet("a", "Osmosis")
	older.CreatedAt = testNow.Add(-time.Hour)
	newer := sampleSet("b", "Photosynthesis")
	newer.Keywords = []string{"chlorophyll"}
	newer.Flashcards[0].Known = true
	for _, s := range []*models.StudySet{older, newer} {
		if err := db.SaveStudySet(s); err != nil {
			t.Fatalf("SaveStudySet(%s) error = %v", s.ID, err)
		}
	}

	sets, err := db.ListStudySets(0)
	if err != nil {
		t.Fatalf("ListStudySets() error = %v", err)
	}
	if len(sets) != 2 || sets[0].ID != "b" {
		t.Fatalf("ListStudySets() = %+v, want newest first", sets)
	}
	if sets[0].CardCount != 2 || sets[0].KnownCount != 1 || sets[0].QuizCount != 1 {
		t.Errorf("counts = %+v", sets[0])
	}

	limited, err := db.ListStudySets(1)
	if err != nil || len(limited) != 1 {
		t.Errorf("ListStudySets(1) = %d sets, err %v", len(limited), err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"photo", []string{"b"}},
		{"CHLOROPHYLL", []string{"b"}},
		{"osmosis", []string{"b", "a"}}, // both have the Osmosis flashcard
		{"membrane", []string{"b", "a"}},
		{"100%", nil},
		{"nothing-matches", nil},
	}
	for _, tt := range tests {
		got, err := db.SearchStudySets(tt.query, 0)
		if err != nil {
			t.Fatalf("SearchStudySets(%q) error = %v", tt.query, err)
		}
		var ids []string
		for _, s := range got {
			ids = append(ids, s.ID)
		}
		if fmt.Sprint(ids) != fmt.Sprint(tt.want) {
			t.Errorf("SearchStudySets(%q) = %v, want %v", tt.query, ids, tt.want)
		}
	}
}

func TestDeleteStudySet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.SaveStudySet(sampleSet("gone", "Gone")); err != nil {
		t.Fatalf("SaveStudySet() error = %v", err)
	}
	if err := db.DeleteStudySet("gone"); err != nil {
		t.Fatalf("DeleteStudySet() error = %v", err)
	}

	var cards int
	if err := db.QueryRow("SELECT COUNT(*) FROM flashcards WHERE set_id = 'gone'").Scan(&cards); err != nil {
		t.Fatalf("count flashcards: %v", err)
	}
	if cards != 0 {
		t.Errorf("flashcards left after delete = %d, want 0", cards)
	}

	if err := db.DeleteStudySet("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteStudySet() error = %v, want ErrNotFound", err)
	}
}

func TestRecordStudyAndStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	db.SetClock(func() time.Time { return testNow })

	set := sampleSet("s", "Stats")
	set.Flashcards[1].Known = true
	if err := db.SaveStudySet(set); err != nil {
		t.Fatalf("SaveStudySet() error = %v", err)
	}

	if err := db.RecordStudy("s", 5, 3); err != nil {
		t.Fatalf("RecordStudy() error = %v", err)
	}
	if err := db.RecordStudy("s", 2, 2); err != nil {
		t.Fatalf("RecordStudy() error = %v", err)
	}
	if err := db.RecordStudy("s", 1, 2); err == nil {
		t.Error("RecordStudy() with correct > studied should fail")
	}
	if err := db.RecordStudy("missing", 1, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordStudy(missing) error = %v, want ErrNotFound", err)
	}

	got, err := db.GetStudySet("s")
	if err != nil {
		t.Fatalf("GetStudySet() error = %v", err)
	}
	if got.CardsStudied != 7 || got.CardsCorrect != 5 {
		t.Errorf("studied/correct = %d/%d, want 7/5", got.CardsStudied, got.CardsCorrect)
	}
	if got.LastStudied == nil || !got.LastStudied.Equal(testNow) {
		t.Errorf("LastStudied = %v, want %v", got.LastStudied, testNow)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := models.Stats{TotalSets: 1, TotalCards: 2, KnownCards: 1, CardsStudied: 7, CardsCorrect: 5}
	if fmt.Sprint(*stats) != fmt.Sprint(want) {
		t.Errorf("Stats() = %+v, want %+v", *stats, want)
	}

	kw, err := db.Keywords()
	if err != nil {
		t.Fatalf("Keywords() error = %v", err)
	}
	if len(kw) != 1 || len(kw[0]) != 3 {
		t.Errorf("Keywords() = %v", kw)
	}
}
