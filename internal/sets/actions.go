package sets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dtnitsch/studybot/internal/app"
	"github.com/dtnitsch/studybot/internal/common"
	"github.com/dtnitsch/studybot/internal/generate"
	"github.com/dtnitsch/studybot/models"
	dbpkg "github.com/dtnitsch/studybot/pkg/db"
	"github.com/dtnitsch/studybot/pkg/mapreduce"
	"github.com/dtnitsch/studybot/pkg/storage"
	"github.com/urfave/cli/v2"
)

// TopKeywordCount is how many keywords stats reports.
const TopKeywordCount = 10

func ListAction(c *cli.Context) error {
	database, _, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	sets, err := database.ListStudySets(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list study sets: %w", err)
	}
	printSets(sets, "No study sets found")
	fmt.Printf("\nTip: Use 'studybot sets show <id>' to see details\n")
	return nil
}

func SearchAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("usage: studybot sets search <query>")
	}
	database, _, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	query := strings.Join(c.Args().Slice(), " ")
	sets, err := database.SearchStudySets(query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to search study sets: %w", err)
	}
	printSets(sets, fmt.Sprintf("No study sets match %q", query))
	return nil
}

func printSets(sets []dbpkg.StudySetInfo, empty string) {
	if len(sets) == 0 {
		fmt.Println(empty)
		return
	}

	fmt.Printf("%-10s %-20s %-6s %-6s %-6s %-18s %-40s\n",
		"ID", "Created", "Cards", "Known", "Quiz", "Source", "Title")
	fmt.Println(strings.Repeat("-", 110))
	for _, s := range sets {
		fmt.Printf("%-10s %-20s %-6d %-6d %-6d %-18s %-40s\n",
			shortID(s.ID),
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			s.CardCount,
			s.KnownCount,
			s.QuizCount,
			s.Source,
			s.Title,
		)
	}
	fmt.Printf("\nTotal: %d study sets\n", len(sets))
}

// ShowAction prints one set, the newest when no ID is given.
func ShowAction(c *cli.Context) error {
	database, cfg, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := GetSetIDOrLatest(c, database)
	if err != nil {
		return err
	}
	set, err := database.GetStudySet(id)
	if err != nil {
		return fmt.Errorf("failed to get study set: %w", err)
	}

	switch c.String("format") {
	case generate.FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	case generate.FormatYAML:
		out, err := common.ToYAML(set)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	level := models.ResolveDetailLevel(cfg.DetailLevel)
	if c.IsSet("detail") {
		level = models.ResolveDetailLevel(c.String("detail"))
	}
	generate.PrintStudySheet(set, level)
	fmt.Printf("\nCreated:     %s\n", set.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if set.LastStudied != nil {
		fmt.Printf("Studied:     %s (%d cards, %d correct)\n",
			set.LastStudied.Local().Format("2006-01-02 15:04:05"), set.CardsStudied, set.CardsCorrect)
	}
	return nil
}

func DeleteAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("usage: studybot sets delete <id>")
	}
	database, _, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := ResolveSetID(c.Args().First(), database)
	if err != nil {
		return err
	}
	if err := database.DeleteStudySet(id); err != nil {
		return fmt.Errorf("failed to delete study set: %w", err)
	}
	fmt.Printf("Deleted study set %s\n", id)
	return nil
}

// KnownAction marks a flashcard known, or unknown with --unknown.
func KnownAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("usage: studybot sets known <set-id> <card-id|number>")
	}
	known := !c.Bool("unknown")
	return patchCard(c, models.FlashcardPatch{Known: &known})
}

// EditCardAction replaces the question and/or answer of a flashcard.
func EditCardAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("usage: studybot sets edit-card <set-id> <card-id|number> [--question] [--answer]")
	}
	var patch models.FlashcardPatch
	if c.IsSet("question") {
		q := c.String("question")
		patch.Question = &q
	}
	if c.IsSet("answer") {
		a := c.String("answer")
		patch.Answer = &a
	}
	if patch.Question == nil && patch.Answer == nil {
		return errors.New("nothing to change: pass --question and/or --answer")
	}
	return patchCard(c, patch)
}

func patchCard(c *cli.Context, patch models.FlashcardPatch) error {
	database, _, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	setID, cardID, err := resolveCard(c, database)
	if err != nil {
		return err
	}
	card, err := database.UpdateFlashcard(setID, cardID, patch)
	if err != nil {
		return fmt.Errorf("failed to update flashcard: %w", err)
	}
	fmt.Printf("Updated flashcard %s (known: %t)\n", shortID(card.ID), card.Known)
	fmt.Printf("  Q: %s\n  A: %s\n", card.Question, card.Answer)
	return nil
}

func AddCardAction(c *cli.Context) error {
	database, _, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	setID, err := GetSetIDOrLatest(c, database)
	if err != nil {
		return err
	}
	card, err := database.AddFlashcard(setID, models.Flashcard{
		Question:   c.String("question"),
		Answer:     c.String("answer"),
		Category:   c.String("category"),
		Difficulty: c.String("difficulty"),
	})
	if err != nil {
		if errors.Is(err, dbpkg.ErrFlashcardLimit) {
			return fmt.Errorf("set already has %d flashcards", models.MaxFlashcards)
		}
		return fmt.Errorf("failed to add flashcard: %w", err)
	}
	fmt.Printf("Added flashcard %s to %s\n", shortID(card.ID), shortID(setID))
	return nil
}

func DeleteCardAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("usage: studybot sets delete-card <set-id> <card-id|number>")
	}
	database, _, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	setID, cardID, err := resolveCard(c, database)
	if err != nil {
		return err
	}
	if err := database.DeleteFlashcard(setID, cardID); err != nil {
		return fmt.Errorf("failed to delete flashcard: %w", err)
	}
	fmt.Printf("Deleted flashcard %s\n", shortID(cardID))
	return nil
}

// resolveCard reads <set-id> <card> where card is an ID, an ID prefix or a
// 1-based position.
func resolveCard(c *cli.Context, database *dbpkg.DB) (string, string, error) {
	setID, err := ResolveSetID(c.Args().Get(0), database)
	if err != nil {
		return "", "", err
	}
	set, err := database.GetStudySet(setID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get study set: %w", err)
	}
	cardID, err := FindCard(set.Flashcards, c.Args().Get(1))
	if err != nil {
		return "", "", err
	}
	return setID, cardID, nil
}

// FindCard resolves arg against cards by ID, ID prefix or 1-based number.
func FindCard(cards []models.Flashcard, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(cards) {
			return "", fmt.Errorf("flashcard number out of range: %d (set has %d)", n, len(cards))
		}
		return cards[n-1].ID, nil
	}

	var match string
	for _, fc := range cards {
		if fc.ID == arg {
			return fc.ID, nil
		}
		if arg != "" && strings.HasPrefix(fc.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("ambiguous flashcard ID %q", arg)
			}
			match = fc.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("flashcard not found: %s", arg)
	}
	return match, nil
}

// StudyAction records the outcome of a study session.
func StudyAction(c *cli.Context) error {
	database, _, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := GetSetIDOrLatest(c, database)
	if err != nil {
		return err
	}
	studied, correct := c.Int("studied"), c.Int("correct")
	if err := database.RecordStudy(id, studied, correct); err != nil {
		return fmt.Errorf("failed to record study session: %w", err)
	}
	fmt.Printf("Recorded %d cards studied, %d correct for %s\n", studied, correct, shortID(id))
	return nil
}

func ExportAction(c *cli.Context) error {
	database, _, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := GetSetIDOrLatest(c, database)
	if err != nil {
		return err
	}
	set, err := database.GetStudySet(id)
	if err != nil {
		return fmt.Errorf("failed to get study set: %w", err)
	}

	format := c.String("format")
	if format != storage.FormatJSON && format != storage.FormatYAML {
		return fmt.Errorf("unsupported export format: %s", format)
	}
	s := &storage.Storage{}
	path, err := s.Export(set, c.String("dir"), format)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %s to %s\n", set.Title, path)
	return nil
}

func ImportAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("usage: studybot sets import <file>")
	}
	database, _, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	s := &storage.Storage{}
	imported := 0
	for _, path := range c.Args().Slice() {
		set, err := s.Import(path)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		if err := database.SaveStudySet(set); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		fmt.Printf("Imported %q as %s (%d flashcards, %d quiz questions)\n",
			set.Title, shortID(set.ID), len(set.Flashcards), len(set.Quiz))
		imported++
	}
	fmt.Printf("\nTotal: %d imported\n", imported)
	return nil
}

// StatsAction prints totals across all sets and the keywords most sets share.
func StatsAction(c *cli.Context) error {
	database, cfg, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := database.Stats()
	if err != nil {
		return err
	}
	lists, err := database.Keywords()
	if err != nil {
		return err
	}
	counts, err := mapreduce.CountKeywords(c.Context, lists, cfg.Workers)
	if err != nil {
		return err
	}
	stats.TopKeywords = mapreduce.TopKeywords(counts, TopKeywordCount)

	if c.String("format") == generate.FormatYAML {
		out, err := common.ToYAML(stats)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	fmt.Println("Study stats")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Sets:        %d\n", stats.TotalSets)
	fmt.Printf("Flashcards:  %d (%d known)\n", stats.TotalCards, stats.KnownCards)
	fmt.Printf("Studied:     %d cards, %d correct", stats.CardsStudied, stats.CardsCorrect)
	if stats.CardsStudied > 0 {
		fmt.Printf(" (%.0f%%)", 100*float64(stats.CardsCorrect)/float64(stats.CardsStudied))
	}
	fmt.Println()
	if len(stats.TopKeywords) > 0 {
		fmt.Printf("Keywords:    %s\n", strings.Join(mapreduce.FormatCounts(counts, stats.TopKeywords), ", "))
	}
	return nil
}

// UsageAction shows this month's free tier usage, or clears it with --reset.
func UsageAction(c *cli.Context) error {
	database, cfg, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	if c.Bool("reset") {
		if err := database.ResetUsage(); err != nil {
			return err
		}
		fmt.Println("Usage reset")
	}

	u, err := database.GetUsage(cfg.FreeTierLimit)
	if err != nil {
		return err
	}
	fmt.Printf("Month:       %s\n", u.Month)
	if u.Limit > 0 {
		fmt.Printf("Used:        %d of %d\n", u.Count, u.Limit)
		fmt.Printf("Remaining:   %d\n", u.Remaining)
	} else {
		fmt.Printf("Used:        %d (no limit)\n", u.Count)
	}
	fmt.Printf("Resets:      %s\n", u.ResetAt.Format("2006-01-02"))
	return nil
}
