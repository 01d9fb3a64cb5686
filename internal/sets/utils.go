package sets

import (
	"fmt"
	"strings"

	dbpkg "github.com/dtnitsch/studybot/pkg/db"
	"github.com/urfave/cli/v2"
)

// setLister is the part of the store used to resolve ids.
type setLister interface {
	ListStudySets(limit int) ([]dbpkg.StudySetInfo, error)
}

// ResolveSetID accepts a full set id or an unambiguous prefix of one.
func ResolveSetID(arg string, database setLister) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("missing study set ID")
	}
	sets, err := database.ListStudySets(0)
	if err != nil {
		return "", fmt.Errorf("failed to list study sets: %w", err)
	}

	var matches []string
	for _, s := range sets {
		if s.ID == arg {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, arg) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("study set not found: %s", arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous study set ID %q matches %d sets", arg, len(matches))
	}
}

// GetSetIDOrLatest returns the set ID from the first argument, or the newest
// set if none was given.
func GetSetIDOrLatest(c *cli.Context, database setLister) (string, error) {
	if c.NArg() == 0 {
		sets, err := database.ListStudySets(1)
		if err != nil {
			return "", fmt.Errorf("failed to get latest study set: %w", err)
		}
		if len(sets) == 0 {
			return "", fmt.Errorf("no study sets found. Run 'studybot generate --url \"...\"' first")
		}
		return sets[0].ID, nil
	}
	return ResolveSetID(c.Args().First(), database)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
