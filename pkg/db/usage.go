package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/studybot/models"
)

const monthLayout = "2006-01"

// GetUsage reports proxy generations in the current UTC month against limit.
func (db *DB) GetUsage(limit int) (models.Usage, error) {
	now := db.clock()
	month := now.Format(monthLayout)

	var count int
	err := db.QueryRow("SELECT count FROM usage WHERE month = ?", month).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.Usage{}, fmt.Errorf("failed to get usage: %w", err)
	}
	return newUsage(now, count, limit), nil
}

// IncrementUsage counts one proxy generation in the current month.
func (db *DB) IncrementUsage(limit int) (models.Usage, error) {
	now := db.clock()
	_, err := db.Exec(`
		INSERT INTO usage (month, count, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT(month) DO UPDATE SET count = count + 1, updated_at = excluded.updated_at
	`, now.Format(monthLayout), now)
	if err != nil {
		return models.Usage{}, fmt.Errorf("failed to increment usage: %w", err)
	}
	return db.GetUsage(limit)
}

// ResetUsage clears the current month's count.
func (db *DB) ResetUsage() error {
	if _, err := db.Exec("DELETE FROM usage WHERE month = ?", db.clock().Format(monthLayout)); err != nil {
		return fmt.Errorf("failed to reset usage: %w", err)
	}
	return nil
}

func newUsage(now time.Time, count, limit int) models.Usage {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	u := models.Usage{
		Month:   now.Format(monthLayout),
		Count:   count,
		Limit:   limit,
		ResetAt: first.AddDate(0, 1, 0),
	}
	if limit > 0 {
		u.Remaining = max(limit-count, 0)
	}
	return u
}
