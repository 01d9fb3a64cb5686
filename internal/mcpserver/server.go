// Package mcpserver exposes study-set generation and lookup as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/studybot/models"
	"github.com/dtnitsch/studybot/pkg/db"
	"github.com/dtnitsch/studybot/pkg/extractor"
	"github.com/dtnitsch/studybot/pkg/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	Name     = "studybot"
	Version  = "0.1.0"
	Endpoint = "/mcp"

	defaultListLimit = 20
)

// Runner generates and saves a study set.
type Runner interface {
	Run(ctx context.Context, src extractor.PageSource, opts pipeline.RunOptions) (*pipeline.Result, error)
}

// Store is the read/update side of the study-set store.
type Store interface {
	GetStudySet(id string) (*models.StudySet, error)
	ListStudySets(limit int) ([]db.StudySetInfo, error)
	SearchStudySets(query string, limit int) ([]db.StudySetInfo, error)
	UpdateFlashcard(setID, cardID string, patch models.FlashcardPatch) (*models.Flashcard, error)
}

type Deps struct {
	Runner Runner
	Store  Store
	// URLSource builds the page source for a URL argument.
	URLSource func(url, title string) extractor.PageSource
}

type GenerateRequest struct {
	URL   string `json:"url"`   // Page to fetch
	Text  string `json:"text"`  // Literal text, used instead of a URL
	Title string `json:"title"` // Optional title override
	Local bool   `json:"local"` // Skip remote generation
}

type GenerateResponse struct {
	Set          *models.StudySet `json:"study_set"`
	WasTruncated bool             `json:"was_truncated"`
	CacheHit     bool             `json:"cache_hit"`
	Usage        *models.Usage    `json:"usage,omitempty"`
}

type GetStudySetRequest struct {
	ID string `json:"id"`
}

type ListStudySetsRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type ListStudySetsResponse struct {
	Sets []db.StudySetInfo `json:"study_sets"`
}

type MarkFlashcardRequest struct {
	SetID  string `json:"set_id"`
	CardID string `json:"card_id"`
	Known  bool   `json:"known"`
}

// NewServer registers the study-set tools.
func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(false),
	)

	if deps.Runner != nil {
		generateTool := mcp.NewTool("generate_study_set",
			mcp.WithDescription("Extract a web page or text and generate a study set with a summary, flashcards and a quiz"),
			mcp.WithString("url",
				mcp.Description("The URL of the page to study"),
			),
			mcp.WithString("text",
				mcp.Description("Text to study, used instead of a URL"),
			),
			mcp.WithString("title",
				mcp.Description("Optional title for the study set"),
			),
			mcp.WithBoolean("local",
				mcp.Description("Use only the offline template generator"),
			),
		)
		s.AddTool(generateTool, mcp.NewTypedToolHandler(generateHandler(deps)))
	}

	getTool := mcp.NewTool("get_study_set",
		mcp.WithDescription("Get a saved study set with its summary, flashcards and quiz"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The study set ID"),
		),
	)
	s.AddTool(getTool, mcp.NewTypedToolHandler(getStudySetHandler(deps.Store)))

	listTool := mcp.NewTool("list_study_sets",
		mcp.WithDescription("List saved study sets, newest first, optionally filtered by a search query"),
		mcp.WithString("query",
			mcp.Description("Matches titles, source URLs, keywords and flashcard text"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of sets to return (default 20)"),
		),
	)
	s.AddTool(listTool, mcp.NewTypedToolHandler(listStudySetsHandler(deps.Store)))

	markTool := mcp.NewTool("mark_flashcard",
		mcp.WithDescription("Mark a flashcard as known or not known"),
		mcp.WithString("set_id",
			mcp.Required(),
			mcp.Description("The study set ID"),
		),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("The flashcard ID"),
		),
		mcp.WithBoolean("known",
			mcp.Required(),
			mcp.Description("Whether the card is known"),
		),
	)
	s.AddTool(markTool, mcp.NewTypedToolHandler(markFlashcardHandler(deps.Store)))

	return s
}

func generateHandler(deps Deps) func(ctx context.Context, request mcp.CallToolRequest, args GenerateRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GenerateRequest) (*mcp.CallToolResult, error) {
		var src extractor.PageSource
		switch {
		case strings.TrimSpace(args.Text) != "":
			src = &extractor.SelectionSource{Text: args.Text, PageURL: args.URL, PageTitle: args.Title}
		case args.URL != "":
			if deps.URLSource == nil {
				return mcp.NewToolResultError("fetching URLs is not enabled"), nil
			}
			src = deps.URLSource(args.URL, args.Title)
		default:
			return mcp.NewToolResultError("url or text is required"), nil
		}

		res, err := deps.Runner.Run(ctx, src, pipeline.RunOptions{Title: args.Title, Local: args.Local})
		if err != nil {
			if errors.Is(err, extractor.ErrExtractionEmpty) {
				return mcp.NewToolResultError("no readable content found on this page"), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to generate study set: %v", err)), nil
		}

		return jsonResult(GenerateResponse{
			Set:          res.Set,
			WasTruncated: res.Set.WasTruncated,
			CacheHit:     res.CacheHit,
			Usage:        res.Usage,
		})
	}
}

func getStudySetHandler(store Store) func(ctx context.Context, request mcp.CallToolRequest, args GetStudySetRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetStudySetRequest) (*mcp.CallToolResult, error) {
		if args.ID == "" {
			return mcp.NewToolResultError("id is required"), nil
		}
		set, err := store.GetStudySet(args.ID)
		if errors.Is(err, db.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("study set not found: %s", args.ID)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get study set: %v", err)), nil
		}
		return jsonResult(set)
	}
}

func listStudySetsHandler(store Store) func(ctx context.Context, request mcp.CallToolRequest, args ListStudySetsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ListStudySetsRequest) (*mcp.CallToolResult, error) {
		limit := args.Limit
		if limit <= 0 {
			limit = defaultListLimit
		}
		var (
			sets []db.StudySetInfo
			err  error
		)
		if strings.TrimSpace(args.Query) != "" {
			sets, err = store.SearchStudySets(args.Query, limit)
		} else {
			sets, err = store.ListStudySets(limit)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list study sets: %v", err)), nil
		}
		if sets == nil {
			sets = []db.StudySetInfo{}
		}
		return jsonResult(ListStudySetsResponse{Sets: sets})
	}
}

func markFlashcardHandler(store Store) func(ctx context.Context, request mcp.CallToolRequest, args MarkFlashcardRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args MarkFlashcardRequest) (*mcp.CallToolResult, error) {
		if args.SetID == "" {
			return mcp.NewToolResultError("set_id is required"), nil
		}
		if args.CardID == "" {
			return mcp.NewToolResultError("card_id is required"), nil
		}
		card, err := store.UpdateFlashcard(args.SetID, args.CardID, models.FlashcardPatch{Known: &args.Known})
		if errors.Is(err, db.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("flashcard not found: %s", args.CardID)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update flashcard: %v", err)), nil
		}
		return jsonResult(card)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
