package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/studybot/internal/generate"
	"github.com/dtnitsch/studybot/internal/mcpserver"
	"github.com/dtnitsch/studybot/internal/sets"
	"github.com/dtnitsch/studybot/pkg/help"
	"github.com/dtnitsch/studybot/pkg/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "studybot",
		Usage: "Turn web pages and text into summaries, flashcards and quizzes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "studybot.yaml",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the SQLite database (default: user config dir)",
			},
			&cli.StringFlag{
				Name:  "providers",
				Usage: "Provider order, e.g. \"anthropic|openai|proxy\" or \"none\"",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "extract",
				Usage:  "Print the readable text extracted from a page",
				Flags:  append(sourceFlags(), maxLengthFlag(), markdownFlag(), formatFlag(generate.FormatText)),
				Action: generate.ExtractAction,
			},
			{
				Name:    "generate",
				Aliases: []string{"gen"},
				Usage:   "Generate and save a study set from a page or text",
				Flags: append(sourceFlags(),
					&cli.BoolFlag{Name: "no-save", Usage: "Print the study set without saving it"},
					&cli.BoolFlag{Name: "local", Usage: "Skip remote providers and use the template generator"},
					&cli.StringFlag{Name: "detail", Usage: "Summary level to print: brief, standard or detailed"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent generations when several URLs are given"},
					formatFlag(generate.FormatText),
				),
				Action: generate.GenerateAction,
			},
			{
				Name:  "sets",
				Usage: "Manage saved study sets",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List study sets, newest first",
						Flags:  []cli.Flag{limitFlag(20)},
						Action: sets.ListAction,
					},
					{
						Name:      "show",
						Usage:     "Show a study set (default: newest)",
						ArgsUsage: "[id]",
						Flags: []cli.Flag{
							formatFlag(generate.FormatText),
							&cli.StringFlag{Name: "detail", Usage: "Summary level: brief, standard or detailed"},
						},
						Action: sets.ShowAction,
					},
					{
						Name:      "search",
						Usage:     "Search titles, sources, keywords and flashcards",
						ArgsUsage: "<query>",
						Flags:     []cli.Flag{limitFlag(20)},
						Action:    sets.SearchAction,
					},
					{
						Name:      "delete",
						Usage:     "Delete a study set",
						ArgsUsage: "<id>",
						Action:    sets.DeleteAction,
					},
					{
						Name:      "known",
						Usage:     "Mark a flashcard as known",
						ArgsUsage: "<set-id> <card-id|number>",
						Flags:     []cli.Flag{&cli.BoolFlag{Name: "unknown", Usage: "Mark as not known instead"}},
						Action:    sets.KnownAction,
					},
					{
						Name:      "study",
						Usage:     "Record a study session",
						ArgsUsage: "[id]",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "studied", Usage: "Cards studied", Required: true},
							&cli.IntFlag{Name: "correct", Usage: "Cards answered correctly", Required: true},
						},
						Action: sets.StudyAction,
					},
					{
						Name:      "add-card",
						Usage:     "Add a flashcard to a set (default: newest)",
						ArgsUsage: "[id]",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "question", Required: true},
							&cli.StringFlag{Name: "answer", Required: true},
							&cli.StringFlag{Name: "category", Value: "Custom"},
							&cli.StringFlag{Name: "difficulty", Value: "medium"},
						},
						Action: sets.AddCardAction,
					},
					{
						Name:      "edit-card",
						Usage:     "Change a flashcard's question or answer",
						ArgsUsage: "<set-id> <card-id|number>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "question"},
							&cli.StringFlag{Name: "answer"},
						},
						Action: sets.EditCardAction,
					},
					{
						Name:      "delete-card",
						Usage:     "Remove a flashcard",
						ArgsUsage: "<set-id> <card-id|number>",
						Action:    sets.DeleteCardAction,
					},
					{
						Name:      "export",
						Usage:     "Write a study set to a JSON or YAML file",
						ArgsUsage: "[id]",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: storage.FormatJSON, Usage: "json or yaml"},
							&cli.StringFlag{Name: "dir", Value: ".", Usage: "Output directory"},
						},
						Action: sets.ExportAction,
					},
					{
						Name:      "import",
						Usage:     "Import study sets from exported files",
						ArgsUsage: "<file>...",
						Action:    sets.ImportAction,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show totals across all study sets",
				Flags:  []cli.Flag{formatFlag(generate.FormatText)},
				Action: sets.StatsAction,
			},
			{
				Name:   "usage",
				Usage:  "Show this month's free tier usage",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "reset", Usage: "Reset the counter"}},
				Action: sets.UsageAction,
			},
			{
				Name:  "mcp",
				Usage: "Serve study-set tools over MCP (stdio by default)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "http", Usage: "Serve streamable HTTP on this address, e.g. :8080"},
				},
				Action: mcpserver.MCPAction,
			},
			{
				Name:  "quickstart",
				Usage: "Print example commands",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "url", Aliases: []string{"u"}, Usage: "Page URL (repeat or comma separate for several)"},
		&cli.StringSliceFlag{Name: "file", Usage: "Local HTML file"},
		&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Text to study, or - to read stdin"},
		&cli.StringFlag{Name: "source-url", Usage: "Source URL recorded with --text"},
		&cli.StringFlag{Name: "title", Usage: "Title for the study set"},
	}
}

func maxLengthFlag() cli.Flag {
	return &cli.IntFlag{Name: "max-length", Usage: "Maximum characters of extracted text"}
}

func markdownFlag() cli.Flag {
	return &cli.BoolFlag{Name: "markdown", Usage: "Print the page as markdown instead of plain text"}
}

func formatFlag(def string) cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: def, Usage: "text, yaml or json"}
}

func limitFlag(def int) cli.Flag {
	return &cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: def}
}
