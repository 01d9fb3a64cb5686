package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dtnitsch/studybot/models"
	"github.com/google/uuid"
)

// StudySetInfo is a list row: a set without its content and materials.
type StudySetInfo struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	SourceURL  string    `json:"source_url,omitempty"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	CardCount  int       `json:"card_count"`
	KnownCount int       `json:"known_count"`
	QuizCount  int       `json:"quiz_count"`
}

// SaveStudySet inserts or replaces a study set with all of its materials.
// A missing ID or CreatedAt is filled in.
func (db *DB) SaveStudySet(set *models.StudySet) error {
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = db.clock()
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("invalid study set: %w", err)
	}

	keywords, err := json.Marshal(set.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // No-op after commit

	_, err = tx.Exec(`
		INSERT INTO study_sets (
			set_id, title, source_url, content, is_selection, was_truncated, language, keywords,
			source, provider, character_count, sentence_count, generated_at,
			created_at, last_studied, cards_studied, cards_correct
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(set_id) DO UPDATE SET
			title = excluded.title,
			source_url = excluded.source_url,
			content = excluded.content,
			is_selection = excluded.is_selection,
			was_truncated = excluded.was_truncated,
			language = excluded.language,
			keywords = excluded.keywords,
			source = excluded.source,
			provider = excluded.provider,
			character_count = excluded.character_count,
			sentence_count = excluded.sentence_count,
			generated_at = excluded.generated_at,
			last_studied = excluded.last_studied,
			cards_studied = excluded.cards_studied,
			cards_correct = excluded.cards_correct
	`, set.ID, set.Title, nullString(set.SourceURL), set.Content, set.IsSelection, set.WasTruncated,
		nullString(set.Language), string(keywords),
		set.Metadata.Source, nullString(set.Metadata.Provider), set.Metadata.CharacterCount,
		set.Metadata.SentenceCount, set.Metadata.GeneratedAt.UTC(),
		set.CreatedAt.UTC(), nullTime(set.LastStudied), set.CardsStudied, set.CardsCorrect)
	if err != nil {
		return fmt.Errorf("failed to save study set: %w", err)
	}

	for _, table := range []string{"summaries", "flashcards", "quiz_questions"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE set_id = ?", set.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for level, s := range set.Summary {
		points, err := json.Marshal(s.KeyPoints)
		if err != nil {
			return fmt.Errorf("failed to encode key points: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO summaries (set_id, level, text, key_points)
			VALUES (?, ?, ?, ?)
		`, set.ID, string(level), s.Text, string(points))
		if err != nil {
			return fmt.Errorf("failed to insert summary: %w", err)
		}
	}

	for i, c := range set.Flashcards {
		_, err := tx.Exec(`
			INSERT INTO flashcards (card_id, set_id, position, question, answer, category, difficulty, known)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, set.ID, i, c.Question, c.Answer, c.Category, c.Difficulty, c.Known)
		if err != nil {
			return fmt.Errorf("failed to insert flashcard: %w", err)
		}
	}

	for i, q := range set.Quiz {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO quiz_questions (question_id, set_id, position, question, type, options, correct_answer_index, difficulty)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, q.ID, set.ID, i, q.Question, q.Type, string(options), q.CorrectAnswerIndex, q.Difficulty)
		if err != nil {
			return fmt.Errorf("failed to insert quiz question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit study set: %w", err)
	}
	return nil
}

// GetStudySet loads a set and all of its materials.
func (db *DB) GetStudySet(id string) (*models.StudySet, error) {
	set := &models.StudySet{ID: id}
	var (
		sourceURL, language, keywords, provider sql.NullString
		generatedAt, lastStudied                sql.NullTime
	)
	err := db.QueryRow(`
		SELECT title, source_url, content, is_selection, was_truncated, language, keywords,
			source, provider, character_count, sentence_count, generated_at,
			created_at, last_studied, cards_studied, cards_correct
		FROM study_sets
		WHERE set_id = ?
	`, id).Scan(&set.Title, &sourceURL, &set.Content, &set.IsSelection, &set.WasTruncated, &language, &keywords,
		&set.Metadata.Source, &provider, &set.Metadata.CharacterCount, &set.Metadata.SentenceCount, &generatedAt,
		&set.CreatedAt, &lastStudied, &set.CardsStudied, &set.CardsCorrect)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("study set %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get study set: %w", err)
	}

	set.SourceURL = sourceURL.String
	set.Language = language.String
	set.Metadata.Provider = provider.String
	set.Metadata.Title = set.Title
	if generatedAt.Valid {
		set.Metadata.GeneratedAt = generatedAt.Time.UTC()
	}
	if lastStudied.Valid {
		t := lastStudied.Time.UTC()
		set.LastStudied = &t
	}
	set.CreatedAt = set.CreatedAt.UTC()
	if keywords.Valid && keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &set.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
	}

	if set.Summary, err = db.summaries(id); err != nil {
		return nil, err
	}
	if set.Flashcards, err = db.flashcards(id); err != nil {
		return nil, err
	}
	if set.Quiz, err = db.quiz(id); err != nil {
		return nil, err
	}
	return set, nil
}

func (db *DB) summaries(setID string) (map[models.DetailLevel]models.Summary, error) {
	rows, err := db.Query(`SELECT level, text, key_points FROM summaries WHERE set_id = ?`, setID)
	if err != nil {
		return nil, fmt.Errorf("failed to load summaries: %w", err)
	}
	defer rows.Close()

	out := make(map[models.DetailLevel]models.Summary)
	for rows.Next() {
		var level, text string
		var points sql.NullString
		if err := rows.Scan(&level, &text, &points); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		s := models.Summary{Text: text, KeyPoints: []string{}}
		if points.Valid && points.String != "" {
			if err := json.Unmarshal([]byte(points.String), &s.KeyPoints); err != nil {
				return nil, fmt.Errorf("failed to decode key points: %w", err)
			}
		}
		out[models.DetailLevel(level)] = s
	}
	return out, rows.Err()
}

func (db *DB) flashcards(setID string) ([]models.Flashcard, error) {
	rows, err := db.Query(`
		SELECT card_id, question, answer, category, difficulty, known
		FROM flashcards
		WHERE set_id = ?
		ORDER BY position
	`, setID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flashcards: %w", err)
	}
	defer rows.Close()

	cards := []models.Flashcard{}
	for rows.Next() {
		var c models.Flashcard
		var category, difficulty sql.NullString
		if err := rows.Scan(&c.ID, &c.Question, &c.Answer, &category, &difficulty, &c.Known); err != nil {
			return nil, fmt.Errorf("failed to scan flashcard: %w", err)
		}
		c.Category, c.Difficulty = category.String, difficulty.String
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (db *DB) quiz(setID string) ([]models.QuizQuestion, error) {
	rows, err := db.Query(`
		SELECT question_id, question, type, options, correct_answer_index, difficulty
		FROM quiz_questions
		WHERE set_id = ?
		ORDER BY position
	`, setID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	defer rows.Close()

	quiz := []models.QuizQuestion{}
	for rows.Next() {
		var q models.QuizQuestion
		var options string
		var difficulty sql.NullString
		if err := rows.Scan(&q.ID, &q.Question, &q.Type, &options, &q.CorrectAnswerIndex, &difficulty); err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
		q.Difficulty = difficulty.String
		quiz = append(quiz, q)
	}
	return quiz, rows.Err()
}

const listColumns = `
	s.set_id, s.title, s.source_url, s.source, s.created_at,
	(SELECT COUNT(*) FROM flashcards f WHERE f.set_id = s.set_id),
	(SELECT COUNT(*) FROM flashcards f WHERE f.set_id = s.set_id AND f.known = 1),
	(SELECT COUNT(*) FROM quiz_questions q WHERE q.set_id = s.set_id)`

// ListStudySets returns the newest sets first. limit <= 0 means no limit.
func (db *DB) ListStudySets(limit int) ([]StudySetInfo, error) {
	if limit <= 0 {
		limit = -1
	}
	return db.listSets(`SELECT`+listColumns+`
		FROM study_sets s
		ORDER BY s.created_at DESC
		LIMIT ?`, limit)
}

// SearchStudySets matches query against titles, source URLs, keywords and
// flashcard text, case-insensitively.
func (db *DB) SearchStudySets(query string, limit int) ([]StudySetInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return db.ListStudySets(limit)
	}
	if limit <= 0 {
		limit = -1
	}
	like := "%" + escapeLike(strings.ToLower(query)) + "%"
	return db.listSets(`SELECT`+listColumns+`
		FROM study_sets s
		WHERE lower(s.title) LIKE ? ESCAPE '\'
			OR lower(coalesce(s.source_url, '')) LIKE ? ESCAPE '\'
			OR lower(coalesce(s.keywords, '')) LIKE ? ESCAPE '\'
			OR EXISTS (
				SELECT 1 FROM flashcards f
				WHERE f.set_id = s.set_id
					AND (lower(f.question) LIKE ? ESCAPE '\' OR lower(f.answer) LIKE ? ESCAPE '\')
			)
		ORDER BY s.created_at DESC
		LIMIT ?`, like, like, like, like, like, limit)
}

func (db *DB) listSets(query string, args ...any) ([]StudySetInfo, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list study sets: %w", err)
	}
	defer rows.Close()

	var sets []StudySetInfo
	for rows.Next() {
		var info StudySetInfo
		var sourceURL sql.NullString
		err := rows.Scan(&info.ID, &info.Title, &sourceURL, &info.Source, &info.CreatedAt,
			&info.CardCount, &info.KnownCount, &info.QuizCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study set: %w", err)
		}
		info.SourceURL = sourceURL.String
		info.CreatedAt = info.CreatedAt.UTC()
		sets = append(sets, info)
	}
	return sets, rows.Err()
}

// DeleteStudySet removes a set and, by cascade, its materials.
func (db *DB) DeleteStudySet(id string) error {
	res, err := db.Exec("DELETE FROM study_sets WHERE set_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete study set: %w", err)
	}
	return requireAffected(res, "study set "+id)
}

// RecordStudy adds a study session's results and stamps last_studied.
func (db *DB) RecordStudy(setID string, studied, correct int) error {
	if studied < 0 || correct < 0 || correct > studied {
		return fmt.Errorf("invalid study result: studied=%d correct=%d", studied, correct)
	}
	res, err := db.Exec(`
		UPDATE study_sets SET
			cards_studied = cards_studied + ?,
			cards_correct = cards_correct + ?,
			last_studied = ?
		WHERE set_id = ?
	`, studied, correct, db.clock(), setID)
	if err != nil {
		return fmt.Errorf("failed to record study: %w", err)
	}
	return requireAffected(res, "study set "+setID)
}

// Keywords returns the stored keyword list of every set.
func (db *DB) Keywords() ([][]string, error) {
	rows, err := db.Query("SELECT keywords FROM study_sets WHERE keywords IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to load keywords: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan keywords: %w", err)
		}
		var kw []string
		if err := json.Unmarshal([]byte(raw), &kw); err != nil {
			continue
		}
		if len(kw) > 0 {
			out = append(out, kw)
		}
	}
	return out, rows.Err()
}

// Stats aggregates set and card counts. TopKeywords is left to the caller.
func (db *DB) Stats() (*models.Stats, error) {
	var s models.Stats
	err := db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM study_sets),
			(SELECT COUNT(*) FROM flashcards),
			(SELECT COUNT(*) FROM flashcards WHERE known = 1),
			(SELECT coalesce(SUM(cards_studied), 0) FROM study_sets),
			(SELECT coalesce(SUM(cards_correct), 0) FROM study_sets)
	`).Scan(&s.TotalSets, &s.TotalCards, &s.KnownCards, &s.CardsStudied, &s.CardsCorrect)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &s, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// nullString creates a sql.NullString from a string value.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
