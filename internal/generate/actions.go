package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/studybot/internal/app"
	"github.com/dtnitsch/studybot/internal/common"
	"github.com/dtnitsch/studybot/models"
	"github.com/dtnitsch/studybot/pkg/extractor"
	"github.com/dtnitsch/studybot/pkg/pipeline"
	"github.com/dtnitsch/studybot/pkg/synth"
	"github.com/urfave/cli/v2"
)

// Output formats for generate and extract.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ExtractAction prints the extracted text of each source without generating
// anything.
func ExtractAction(c *cli.Context) error {
	a, err := app.New(c)
	if err != nil {
		return err
	}
	defer a.Close()

	ex := a.Extractor
	if c.IsSet("max-length") {
		ex = extractor.New(extractor.Options{MaxLength: c.Int("max-length"), Enrich: true, Logger: a.Logger})
	}

	sources, err := a.Sources(c, os.Stdin)
	if err != nil {
		return err
	}

	for _, src := range sources {
		if c.Bool("markdown") && src.SelectionText() == "" {
			root, err := src.DocumentRoot(c.Context)
			if err != nil {
				return fmt.Errorf("failed to load page %s: %w", src.URL(), err)
			}
			md, err := extractor.Markdown(root)
			if err != nil {
				return err
			}
			fmt.Println(md)
			continue
		}

		doc, err := ex.ExtractFrom(c.Context, src)
		if err != nil {
			if errors.Is(err, extractor.ErrExtractionEmpty) {
				return fmt.Errorf("no readable text found in %s", describe(src))
			}
			return err
		}
		if err := printDocument(doc, c.String("format")); err != nil {
			return err
		}
		if doc.WasTruncated {
			fmt.Fprintf(os.Stderr, "Note: content was truncated to %d characters\n", ex.MaxLength())
		}
	}
	return nil
}

// GenerateAction runs the full pipeline for each source. Several sources are
// processed by the worker pool.
func GenerateAction(c *cli.Context) error {
	a, err := app.New(c)
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := a.Sources(c, os.Stdin)
	if err != nil {
		return err
	}

	opts := pipeline.RunOptions{
		Title:  c.String("title"),
		NoSave: c.Bool("no-save"),
		Local:  c.Bool("local"),
	}
	level := models.ResolveDetailLevel(a.Config.DetailLevel)
	if c.IsSet("detail") {
		level = models.ResolveDetailLevel(c.String("detail"))
	}
	format := c.String("format")

	if len(sources) == 1 {
		res, err := a.Pipeline.Run(c.Context, sources[0], opts)
		if err != nil {
			return userError(err)
		}
		return printResult(res, format, level, a.Extractor.MaxLength())
	}

	workers := a.Config.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}
	results, runErr := a.Pipeline.RunAll(c.Context, sources, opts, workers)
	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", describe(r.Source), userError(r.Error))
			continue
		}
		if err := printResult(r.Result, format, level, a.Extractor.MaxLength()); err != nil {
			return err
		}
	}
	return runErr
}

// userError turns the pipeline sentinels into messages a reader can act on.
func userError(err error) error {
	switch {
	case errors.Is(err, extractor.ErrExtractionEmpty):
		return errors.New("no readable text found on the page")
	case errors.Is(err, synth.ErrFallbackExhausted):
		return errors.New("study materials could not be generated from this text")
	}
	return err
}

func printDocument(doc *models.ExtractedDocument, format string) error {
	switch format {
	case FormatJSON:
		return printJSON(doc)
	case FormatYAML:
		out, err := common.ToYAML(doc)
		if err != nil {
			return err
		}
		fmt.Print(out)
	default:
		fmt.Printf("# %s\n", doc.Title)
		if doc.SourceURL != "" {
			fmt.Printf("Source: %s\n", doc.SourceURL)
		}
		if doc.Meta.Language != "" {
			fmt.Printf("Language: %s (%.2f)\n", doc.Meta.Language, doc.Meta.LanguageConfidence)
		}
		fmt.Printf("Characters: %d | Words: %d\n\n", doc.Meta.CharacterCount, doc.Meta.WordCount)
		fmt.Println(doc.Text)
	}
	return nil
}

func printResult(res *pipeline.Result, format string, level models.DetailLevel, maxLength int) error {
	set := res.Set
	switch format {
	case FormatJSON:
		if err := printJSON(set); err != nil {
			return err
		}
	case FormatYAML:
		out, err := common.ToYAML(set)
		if err != nil {
			return err
		}
		fmt.Print(out)
	default:
		PrintStudySheet(set, level)
	}

	if set.WasTruncated {
		fmt.Fprintf(os.Stderr, "Note: content was truncated to %d characters\n", maxLength)
	}
	if res.CacheHit {
		fmt.Fprintln(os.Stderr, "Note: reused cached study materials")
	}
	if u := res.Usage; u != nil {
		fmt.Fprintf(os.Stderr, "Free tier: %d of %d used this month (resets %s)\n",
			u.Count, u.Limit, u.ResetAt.Format("2006-01-02"))
	}
	return nil
}

// PrintStudySheet writes a readable rendering of set at the given summary
// level.
func PrintStudySheet(set *models.StudySet, level models.DetailLevel) {
	fmt.Printf("%s\n", set.Title)
	fmt.Println(strings.Repeat("=", 60))
	if set.ID != "" {
		fmt.Printf("ID:          %s\n", set.ID)
	}
	if set.SourceURL != "" {
		fmt.Printf("Source:      %s\n", set.SourceURL)
	}
	fmt.Printf("Generated:   %s", set.Metadata.Source)
	if set.Metadata.Provider != "" {
		fmt.Printf(" (%s)", set.Metadata.Provider)
	}
	fmt.Println()
	if len(set.Keywords) > 0 {
		fmt.Printf("Keywords:    %s\n", strings.Join(set.Keywords, ", "))
	}

	if s, ok := set.Summary[level]; ok && s.Text != "" {
		fmt.Printf("\nSummary (%s):\n", level)
		fmt.Println(strings.Repeat("-", 60))
		fmt.Println(s.Text)
		for _, p := range s.KeyPoints {
			fmt.Printf("  * %s\n", p)
		}
	}

	if len(set.Flashcards) > 0 {
		fmt.Printf("\nFlashcards (%d):\n", len(set.Flashcards))
		fmt.Println(strings.Repeat("-", 60))
		for i, fc := range set.Flashcards {
			mark := " "
			if fc.Known {
				mark = "x"
			}
			fmt.Printf("%2d. [%s] Q: %s\n", i+1, mark, fc.Question)
			fmt.Printf("        A: %s\n", fc.Answer)
		}
	}

	if len(set.Quiz) > 0 {
		fmt.Printf("\nQuiz (%d):\n", len(set.Quiz))
		fmt.Println(strings.Repeat("-", 60))
		for i, q := range set.Quiz {
			fmt.Printf("%2d. %s [%s]\n", i+1, q.Question, q.Difficulty)
			for j, opt := range q.Options {
				mark := " "
				if j == q.CorrectAnswerIndex {
					mark = "*"
				}
				fmt.Printf("    %s %c) %s\n", mark, 'a'+j, opt)
			}
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func describe(src extractor.PageSource) string {
	if u := src.URL(); u != "" {
		return u
	}
	return "selection"
}
