package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/studybot/models"
	"github.com/google/uuid"
)

// ErrFlashcardLimit is returned when a set already holds the maximum number
// of flashcards.
var ErrFlashcardLimit = fmt.Errorf("a study set holds at most %d flashcards", models.MaxFlashcards)

// UpdateFlashcard applies patch to one card and returns the result.
func (db *DB) UpdateFlashcard(setID, cardID string, patch models.FlashcardPatch) (*models.Flashcard, error) {
	var sets []string
	var args []any
	if patch.Known != nil {
		sets = append(sets, "known = ?")
		args = append(args, *patch.Known)
	}
	if patch.Question != nil {
		q := strings.TrimSpace(*patch.Question)
		if q == "" {
			return nil, errors.New("flashcard question cannot be empty")
		}
		sets = append(sets, "question = ?")
		args = append(args, q)
	}
	if patch.Answer != nil {
		a := strings.TrimSpace(*patch.Answer)
		if a == "" {
			return nil, errors.New("flashcard answer cannot be empty")
		}
		sets = append(sets, "answer = ?")
		args = append(args, a)
	}

	if len(sets) > 0 {
		args = append(args, cardID, setID)
		res, err := db.Exec("UPDATE flashcards SET "+strings.Join(sets, ", ")+" WHERE card_id = ? AND set_id = ?", args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update flashcard: %w", err)
		}
		if err := requireAffected(res, "flashcard "+cardID); err != nil {
			return nil, err
		}
	}
	return db.getFlashcard(setID, cardID)
}

// AddFlashcard appends a card to a set. An empty ID is generated.
func (db *DB) AddFlashcard(setID string, card models.Flashcard) (*models.Flashcard, error) {
	card.Question = strings.TrimSpace(card.Question)
	card.Answer = strings.TrimSpace(card.Answer)
	if card.Question == "" || card.Answer == "" {
		return nil, errors.New("flashcard needs a question and an answer")
	}
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.Difficulty == "" {
		card.Difficulty = models.DifficultyMedium
	}
	if card.Category == "" {
		card.Category = "Custom"
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // No-op after commit

	var exists int
	err = tx.QueryRow("SELECT 1 FROM study_sets WHERE set_id = ?", setID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("study set %s: %w", setID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check study set: %w", err)
	}

	var count, next int
	err = tx.QueryRow("SELECT COUNT(*), coalesce(MAX(position) + 1, 0) FROM flashcards WHERE set_id = ?", setID).Scan(&count, &next)
	if err != nil {
		return nil, fmt.Errorf("failed to count flashcards: %w", err)
	}
	if count >= models.MaxFlashcards {
		return nil, ErrFlashcardLimit
	}

	_, err = tx.Exec(`
		INSERT INTO flashcards (card_id, set_id, position, question, answer, category, difficulty, known)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, card.ID, setID, next, card.Question, card.Answer, card.Category, card.Difficulty, card.Known)
	if err != nil {
		return nil, fmt.Errorf("failed to insert flashcard: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit flashcard: %w", err)
	}
	return &card, nil
}

// DeleteFlashcard removes one card from a set.
func (db *DB) DeleteFlashcard(setID, cardID string) error {
	res, err := db.Exec("DELETE FROM flashcards WHERE card_id = ? AND set_id = ?", cardID, setID)
	if err != nil {
		return fmt.Errorf("failed to delete flashcard: %w", err)
	}
	return requireAffected(res, "flashcard "+cardID)
}

func (db *DB) getFlashcard(setID, cardID string) (*models.Flashcard, error) {
	var c models.Flashcard
	var category, difficulty sql.NullString
	err := db.QueryRow(`
		SELECT card_id, question, answer, category, difficulty, known
		FROM flashcards
		WHERE card_id = ? AND set_id = ?
	`, cardID, setID).Scan(&c.ID, &c.Question, &c.Answer, &category, &difficulty, &c.Known)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("flashcard %s: %w", cardID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcard: %w", err)
	}
	c.Category, c.Difficulty = category.String, difficulty.String
	return &c, nil
}
