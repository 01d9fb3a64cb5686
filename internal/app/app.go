// Package app builds the services a command needs from config and flags.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtnitsch/studybot/models"
	"github.com/dtnitsch/studybot/pkg/caching"
	"github.com/dtnitsch/studybot/pkg/db"
	"github.com/dtnitsch/studybot/pkg/extractor"
	"github.com/dtnitsch/studybot/pkg/fetcher"
	"github.com/dtnitsch/studybot/pkg/llm"
	"github.com/dtnitsch/studybot/pkg/pipeline"
	"github.com/dtnitsch/studybot/pkg/synth"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// App holds everything built for one command invocation.
type App struct {
	Config    *models.Config
	Logger    *slog.Logger
	DB        *db.DB
	Fetcher   *fetcher.Fetcher
	Extractor *extractor.Extractor
	Generator *llm.Generator
	Pipeline  *pipeline.Pipeline

	pageCache *caching.Cache
}

// NewLogger returns the JSON stderr logger used by every command.
func NewLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LoadConfig reads .env, then the YAML config, then applies global flags.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("providers") {
		cfg.Providers = c.String("providers")
	}
	return cfg, nil
}

// OpenDB opens only the store, for commands that do not generate.
func OpenDB(c *cli.Context) (*db.DB, *models.Config, error) {
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, cfg, nil
}

// New builds the full generation stack.
func New(c *cli.Context) (*App, error) {
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, err
	}
	logger := NewLogger(c.Bool("quiet"))
	slog.SetDefault(logger)

	timeout, err := cfg.RequestTimeoutDuration()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.CacheTTLDuration()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      database,
		Fetcher: fetcher.NewFetcher(timeout),
		Extractor: extractor.New(extractor.Options{
			MaxLength: cfg.MaxContentLength,
			Enrich:    true,
			Logger:    logger,
		}),
	}

	var resultCache pipeline.ResultCache
	if cfg.CacheDir != "" && ttl > 0 {
		pages, materials, err := openCaches(cfg.CacheDir, ttl, logger)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		a.pageCache = pages
		resultCache = materials
	}

	providers, err := llm.BuildProviders(cfg, llm.HTTPOptions{Timeout: timeout})
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	if len(providers) > 0 {
		a.Generator = llm.NewGenerator(providers, llm.GeneratorOptions{Logger: logger})
		logger.Info("remote generation enabled", "providers", a.Generator.Names())
	} else {
		logger.Info("no remote provider configured, using template fallback")
	}

	a.Pipeline = pipeline.New(pipeline.Options{
		Extractor:     a.Extractor,
		Synth:         synth.New(nil, synth.NewFallback(synth.FallbackOptions{}), logger),
		Generator:     a.Generator,
		Store:         database,
		Cache:         resultCache,
		FreeTierLimit: cfg.FreeTierLimit,
		Logger:        logger,
	})
	return a, nil
}

// openCaches opens the page and result caches and drops expired entries.
func openCaches(dir string, ttl time.Duration, logger *slog.Logger) (pages, materials *caching.Cache, err error) {
	var caches [2]*caching.Cache
	for i, ns := range []string{"pages", "materials"} {
		c, err := caching.NewCache(dir, ns, ttl)
		if err != nil {
			return nil, nil, err
		}
		if n, err := c.Prune(); err != nil {
			logger.Warn("failed to prune cache", "namespace", ns, "error", err)
		} else if n > 0 {
			logger.Debug("pruned cache", "namespace", ns, "removed", n)
		}
		caches[i] = c
	}
	return caches[0], caches[1], nil
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// URLSource builds a fetching page source that shares the page cache.
func (a *App) URLSource(rawURL, title string) *extractor.URLSource {
	src := &extractor.URLSource{
		PageURL:   rawURL,
		PageTitle: title,
		Fetcher:   a.Fetcher,
		Logger:    a.Logger,
	}
	if a.pageCache != nil {
		src.Cache = a.pageCache
	}
	return src
}

// Sources turns the --url, --file and --text flags into page sources.
// "--text -" reads the selection from stdin.
func (a *App) Sources(c *cli.Context, stdin io.Reader) ([]extractor.PageSource, error) {
	title := c.String("title")
	var sources []extractor.PageSource

	if urls := c.StringSlice("url"); len(urls) > 0 {
		valid, invalid := sanitizeURLs(urls)
		if len(invalid) > 0 {
			return nil, fmt.Errorf("invalid URLs: %s", strings.Join(invalid, ", "))
		}
		for _, u := range valid {
			sources = append(sources, a.URLSource(u, title))
		}
	}
	for _, f := range c.StringSlice("file") {
		sources = append(sources, &extractor.FileSource{Path: filepath.Clean(f), PageTitle: title})
	}
	if c.IsSet("text") {
		text := c.String("text")
		if text == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}
		sources = append(sources, &extractor.SelectionSource{Text: text, PageURL: c.String("source-url"), PageTitle: title})
	}

	if len(sources) == 0 {
		return nil, errors.New("no input: pass --url, --file or --text")
	}
	return sources, nil
}
