package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// PageSource supplies either a parsed document or a literal selection.
type PageSource interface {
	DocumentRoot(ctx context.Context) (*html.Node, error)
	SelectionText() string
	URL() string
	Title() string
}

// HTMLFetcher downloads a page body.
type HTMLFetcher interface {
	GetHTMLBytes(ctx context.Context, url string) ([]byte, error)
}

// ByteCache stores fetched bodies keyed by URL.
type ByteCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte) error
}

// URLSource fetches a page over HTTP, consulting Cache first when set.
type URLSource struct {
	PageURL   string
	PageTitle string
	Fetcher   HTMLFetcher
	Cache     ByteCache
	Logger    *slog.Logger
}

func (s *URLSource) DocumentRoot(ctx context.Context) (*html.Node, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if s.Cache != nil {
		if body, ok := s.Cache.Get(s.PageURL); ok {
			logger.Debug("page cache hit", "url", s.PageURL)
			return parseHTML(body)
		}
	}

	body, err := s.Fetcher.GetHTMLBytes(ctx, s.PageURL)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(s.PageURL, body); err != nil {
			logger.Warn("failed to cache page", "url", s.PageURL, "error", err)
		}
	}
	return parseHTML(body)
}

func (s *URLSource) SelectionText() string { return "" }
func (s *URLSource) URL() string           { return s.PageURL }
func (s *URLSource) Title() string         { return s.PageTitle }

// FileSource reads a saved HTML page from disk.
type FileSource struct {
	Path      string
	PageTitle string
}

func (s *FileSource) DocumentRoot(ctx context.Context) (*html.Node, error) {
	body, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return parseHTML(body)
}

func (s *FileSource) SelectionText() string { return "" }

func (s *FileSource) URL() string {
	abs, err := filepath.Abs(s.Path)
	if err != nil {
		abs = s.Path
	}
	return "file://" + filepath.ToSlash(abs)
}

func (s *FileSource) Title() string { return s.PageTitle }

// HTMLSource wraps markup already in memory.
type HTMLSource struct {
	HTML      string
	PageURL   string
	PageTitle string
}

func (s *HTMLSource) DocumentRoot(ctx context.Context) (*html.Node, error) {
	return parseHTML([]byte(s.HTML))
}

func (s *HTMLSource) SelectionText() string { return "" }
func (s *HTMLSource) URL() string           { return s.PageURL }
func (s *HTMLSource) Title() string         { return s.PageTitle }

// SelectionSource is text the user highlighted. It has no document.
type SelectionSource struct {
	Text      string
	PageURL   string
	PageTitle string
}

func (s *SelectionSource) DocumentRoot(ctx context.Context) (*html.Node, error) {
	return nil, nil
}

func (s *SelectionSource) SelectionText() string { return s.Text }
func (s *SelectionSource) URL() string           { return s.PageURL }
func (s *SelectionSource) Title() string         { return s.PageTitle }

func parseHTML(body []byte) (*html.Node, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return root, nil
}

// SelectionTitle derives a title for selection input lacking one.
func SelectionTitle(text string) string {
	words := strings.Fields(text)
	if len(words) > 8 {
		words = words[:8]
		return strings.Join(words, " ") + "..."
	}
	return strings.Join(words, " ")
}
