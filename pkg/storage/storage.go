// Package storage writes study sets to export files and reads them back.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dtnitsch/studybot/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Storage struct {
	// NewID and Now default to uuid.NewString and time.Now.
	NewID func() string
	Now   func() time.Time
}

func (s *Storage) SaveFile(filePath string, content []byte) error {
	if err := os.WriteFile(filePath, content, 0o644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

var unsafeFilename = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]+`)

// ExportFilename is "<title>-<YYYY-MM-DD>.<ext>" with path separators and
// other unsafe characters replaced.
func ExportFilename(title string, day time.Time, format string) string {
	name := strings.TrimSpace(unsafeFilename.ReplaceAllString(title, "-"))
	if name == "" {
		name = "study-set"
	}
	ext := FormatJSON
	if format == FormatYAML {
		ext = FormatYAML
	}
	return fmt.Sprintf("%s-%s.%s", name, day.UTC().Format("2006-01-02"), ext)
}

// Marshal encodes a set as indented JSON or YAML.
func Marshal(set *models.StudySet, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(set)
	case FormatJSON, "":
		return json.MarshalIndent(set, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// Export writes set into dir and returns the file path.
func (s *Storage) Export(set *models.StudySet, dir, format string) (string, error) {
	data, err := Marshal(set, format)
	if err != nil {
		return "", fmt.Errorf("failed to encode study set: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(set.Title, s.now(), format))
	if err := s.SaveFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Import reads an exported set from path. The set, its flashcards and its
// quiz questions get fresh ids and CreatedAt is reset, so importing the same
// file twice yields two independent sets.
func (s *Storage) Import(path string) (*models.StudySet, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var set models.StudySet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &set)
	default:
		err = json.Unmarshal(data, &set)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid study set file: %w", err)
	}
	if err := set.ValidateImport(); err != nil {
		return nil, err
	}

	newID := s.newID()
	set.ID = newID()
	set.CreatedAt = s.now().UTC()
	for i := range set.Flashcards {
		set.Flashcards[i].ID = newID()
	}
	for i := range set.Quiz {
		set.Quiz[i].ID = newID()
	}
	if set.Metadata.Source == "" {
		set.Metadata.Source = models.SourceTemplateFallback
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid study set: %w", err)
	}
	return &set, nil
}

func (s *Storage) newID() func() string {
	if s.NewID != nil {
		return s.NewID
	}
	return uuid.NewString
}

func (s *Storage) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
