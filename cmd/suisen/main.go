// Package main is the suisen CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/suisen/internal/cli"
	"github.com/hyperjump/suisen/internal/config"
	"github.com/hyperjump/suisen/internal/dataset"
	"github.com/hyperjump/suisen/internal/indexer"
	"github.com/hyperjump/suisen/internal/metrics"
	"github.com/hyperjump/suisen/internal/models"
	"github.com/hyperjump/suisen/internal/ranking"
	"github.com/hyperjump/suisen/internal/search"
	"github.com/hyperjump/suisen/internal/server"
	"github.com/hyperjump/suisen/internal/storage"
	"github.com/hyperjump/suisen/internal/watcher"
	"github.com/hyperjump/suisen/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/suisen/config.yaml"

var httpClient = &http.Client{Timeout: 30 * time.Second}

// loadConfig loads config from path. When path is the default, a config.yaml in the
// current directory takes precedence. When no config file exists at the default
// location, built-in defaults are used so that suisen works without any setup.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "recommend":
		runRecommend()
	case "stats":
		runStats()
	case "history":
		runHistory()
	case "version", "--version", "-v":
		fmt.Printf("suisen version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (dataset reloads, requests, etc.)")
	datasetPath := fs.String("dataset", "", "dataset file (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}
	debugMode := cfg.Debug || *debug
	cfg.Debug = debugMode
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("dataset", cfg.Dataset.Path),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watch := cfg.Dataset.WatchOrDefault()
	if _, err := components.Engine.Reload(ctx); err != nil {
		if !watch {
			logger.Fatal("Failed to build corpus", zap.Error(err))
		}
		logger.Warn("initial corpus build failed, waiting for dataset changes", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	if watch {
		watchOpts := []watcher.WatcherOption{
			watcher.WithRemoveHandler(func(path string) {
				logger.Warn("dataset removed, keeping current corpus", zap.String("path", path))
			}),
		}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		w := watcher.NewWatcher(cfg.Dataset.Path, func(path string) {
			if _, err := components.Engine.Reload(gctx); err != nil {
				logger.Warn("dataset reload failed", zap.String("path", path), zap.Error(err))
			}
		}, watchOpts...)
		if err := w.Start(gctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Engine, components.Storage, cfg, components.Metrics, logger)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("Server failed", zap.Error(err))
	}
}

func printRecommendUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: suisen recommend [flags] [description...]\n\n")
	fmt.Fprintf(fs.Output(), "The description is all remaining arguments joined by spaces. Without a description,\n")
	fmt.Fprintf(fs.Output(), "suisen prompts for one description per line until end of input.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  suisen recommend space crew stranded on a distant planet
  suisen recommend --limit 10 --output compact "romantic comedy in paris"
  suisen recommend --server http://localhost:8080 heist gone wrong
  suisen recommend                                  # interactive prompt
`)
}

// buildQuery joins all positional args with spaces so multi-word descriptions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves flags (and their values) ahead of the description so that
// flag.Parse sees them. The flag package stops at the first non-flag argument.
// Description words keep their relative order; everything after "--" is kept as
// description.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	flags := make([]string, 0, len(args))
	words := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			flags = append(flags, a)
			words = append(words, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			words = append(words, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, words...)
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// flagWasSet reports whether name was given explicitly on the command line.
func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = build the corpus locally from the dataset)")
	datasetPath := fs.String("dataset", "", "dataset file (overrides config; local mode only)")
	limit := fs.Int("limit", ranking.DefaultTopK, "number of recommendations (0 or less prints none)")
	minScore := fs.Float64("min-score", 0, "minimum similarity in [0, 1] (default: recommend.min_score from config)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printRecommendUsage(fs) }
	_ = fs.Parse(reorderArgs(fs, os.Args[2:]))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	limitSet := flagWasSet(fs, "limit")
	minScoreSet := flagWasSet(fs, "min-score")
	newQuery := func(text string) *models.RecommendQuery {
		q := &models.RecommendQuery{Query: text}
		if limitSet {
			q.Limit = models.IntPtr(*limit)
		}
		if minScoreSet {
			q.MinScore = models.Float64Ptr(*minScore)
		}
		return q
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recommend func(q *models.RecommendQuery) (*models.RecommendResponse, error)
	overviewMax := 0
	if *serverURL != "" {
		recommend = func(q *models.RecommendQuery) (*models.RecommendResponse, error) {
			return recommendViaHTTP(ctx, *serverURL, q)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		if *datasetPath != "" {
			cfg.Dataset.Path = *datasetPath
		}
		overviewMax = cfg.Recommend.OverviewMaxChars
		logger := utils.MustLogger(cfg.Debug)
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		if _, err := components.Engine.Reload(ctx); err != nil {
			if isEmptyCorpus(err) {
				fmt.Fprintf(os.Stderr, "Error: dataset %s has no movies to index\n", cfg.Dataset.Path)
			} else {
				fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
			}
			os.Exit(1)
		}
		recommend = func(q *models.RecommendQuery) (*models.RecommendResponse, error) {
			return components.Engine.Recommend(ctx, q)
		}
	}

	handle := func(text string) error {
		response, err := recommend(newQuery(text))
		if err != nil {
			return fmt.Errorf("recommend failed: %w", err)
		}
		return cli.WriteRecommendations(os.Stdout, response, format, overviewMax)
	}

	if text := buildQuery(fs.Args()); text != "" {
		if err := handle(text); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := cli.RunPrompt(ctx, os.Stdin, os.Stdout, handle); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func recommendViaHTTP(ctx context.Context, serverURL string, query *models.RecommendQuery) (*models.RecommendResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/v1/recommend", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	var response models.RecommendResponse
	if err := doJSON(req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func doJSON(req *http.Request, out interface{}) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statsResponse is the shape of the GET /api/v1/status response used by the stats command.
type statsResponse struct {
	Documents      int       `json:"documents"`
	VocabularySize int       `json:"vocabulary_size"`
	EmptyDocuments int       `json:"empty_documents"`
	TotalTerms     int       `json:"total_terms"`
	Fingerprint    string    `json:"fingerprint,omitempty"`
	Source         string    `json:"source,omitempty"`
	LoadedAt       time.Time `json:"loaded_at"`
	HistoryEntries *int64    `json:"history_entries,omitempty"`
	DiskUsageBytes *int64    `json:"disk_usage_bytes,omitempty"`
}

func statsFromSnapshot(snap *search.Snapshot) statsResponse {
	s := snap.Corpus.Stats()
	return statsResponse{
		Documents:      s.Documents,
		VocabularySize: s.VocabularySize,
		EmptyDocuments: s.EmptyDocuments,
		TotalTerms:     s.TotalTerms,
		Fingerprint:    snap.Fingerprint,
		Source:         snap.Source,
		LoadedAt:       snap.LoadedAt,
	}
}

func writeStats(w io.Writer, s statsResponse, format cli.OutputFormat) error {
	if format == cli.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Fprintf(w, "documents:          %d   # movies in the corpus\n", s.Documents)
	fmt.Fprintf(w, "vocabulary_size:    %d   # distinct terms\n", s.VocabularySize)
	fmt.Fprintf(w, "empty_documents:    %d   # movies with no indexable text\n", s.EmptyDocuments)
	fmt.Fprintf(w, "total_terms:        %d\n", s.TotalTerms)
	if s.HistoryEntries != nil {
		fmt.Fprintf(w, "history_entries:    %d\n", *s.HistoryEntries)
	}
	if s.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # dataset + history database\n", *s.DiskUsageBytes)
	}
	if s.Source != "" || s.Fingerprint != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# dataset")
		if s.Source != "" {
			fmt.Fprintf(w, "source:             %s\n", s.Source)
		}
		if s.Fingerprint != "" {
			fmt.Fprintf(w, "fingerprint:        %s\n", s.Fingerprint)
		}
		if !s.LoadedAt.IsZero() {
			fmt.Fprintf(w, "loaded_at:          %s\n", s.LoadedAt.Format(time.RFC3339))
		}
	}
	return nil
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = build the corpus locally)")
	datasetPath := fs.String("dataset", "", "dataset file (overrides config; local mode only)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	var stats statsResponse
	if *serverURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, *serverURL+"/api/v1/status", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		if err := doJSON(req, &stats); err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		if *datasetPath != "" {
			cfg.Dataset.Path = *datasetPath
		}
		logger := utils.MustLogger(cfg.Debug)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		snap, err := components.Engine.Reload(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
			os.Exit(1)
		}
		stats = statsFromSnapshot(snap)
		if components.Storage != nil {
			if n, err := components.Storage.CountHistory(ctx); err == nil {
				stats.HistoryEntries = &n
			}
		}
		paths := append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Dataset.Path)
		if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
			stats.DiskUsageBytes = &diskBytes
		}
	}
	if err := writeStats(os.Stdout, stats, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = read the history database directly)")
	limit := fs.Int("limit", 20, "number of entries")
	clearAll := fs.Bool("clear", false, "delete all recorded queries (local mode only)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	var entries []*models.HistoryEntry
	if *serverURL != "" {
		entries, err = historyViaHTTP(ctx, *serverURL, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "History failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open history: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		if *clearAll {
			if err := store.ClearHistory(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Clear failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("History cleared.")
			return
		}
		entries, err = store.ListHistory(ctx, 0, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "History failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteHistory(os.Stdout, entries, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func historyViaHTTP(ctx context.Context, serverURL string, limit int) ([]*models.HistoryEntry, error) {
	u := serverURL + "/api/v1/history?limit=" + url.QueryEscape(strconv.Itoa(limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Entries []*models.HistoryEntry `json:"entries"`
	}
	if err := doJSON(req, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// Components holds initialized services.
type Components struct {
	Storage storage.Storage
	Loader  *dataset.Loader
	Metrics *metrics.Metrics
	Engine  *search.Engine
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// initializeComponents wires the dataset loader, history store and engine. When
// requireStorage is false a history database that cannot be opened is skipped.
func initializeComponents(cfg *config.Config, logger *zap.Logger, requireStorage bool) (*Components, error) {
	c := &Components{}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	switch {
	case err == nil:
		c.Storage = store
	case requireStorage:
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	default:
		logger.Debug("history disabled", zap.String("database_path", cfg.Storage.DatabasePath), zap.Error(err))
	}

	columns := dataset.Columns{
		Title:    cfg.Dataset.TitleColumn,
		Overview: cfg.Dataset.OverviewColumn,
		Keywords: cfg.Dataset.KeywordsColumn,
	}
	c.Loader = dataset.NewLoader(cfg.Dataset.Path, columns, dataset.WithLogger(logger))

	opts := []search.EngineOption{
		search.WithSource(c.Loader),
		search.WithLogger(logger),
	}
	if c.Storage != nil {
		opts = append(opts, search.WithHistory(c.Storage))
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
		opts = append(opts, search.WithMetrics(c.Metrics))
	}
	c.Engine = search.NewEngine(&cfg.Recommend, opts...)
	return c, nil
}

// isEmptyCorpus reports whether err means the dataset had nothing to index.
func isEmptyCorpus(err error) bool {
	return errors.Is(err, indexer.ErrEmptyCorpus)
}

func printUsage() {
	fmt.Println(`suisen - Movie recommendations from plot descriptions

Usage:
  suisen server [flags]                  Start the HTTP server
  suisen recommend [flags] [description] Recommend movies for a description
  suisen stats [flags]                   Show corpus statistics
  suisen history [flags]                 Show recent queries
  suisen version                         Show version
  suisen help                            Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/suisen/config.yaml)
  --dataset string   Dataset file (overrides config)
  --debug            Enable debug logging

Recommend Flags:
  --config string      Config file path
  --server string      Server URL. Empty (default) builds the corpus locally.
  --dataset string     Dataset file (overrides config)
  --limit int          Number of recommendations (default: 5)
  --min-score float    Minimum similarity (default: 0)
  --output string      Output format: text, compact or json (default: text)

Stats Flags:
  --config string    Config file path
  --server string    Server URL. Empty (default) builds the corpus locally.
  --output string    Output format: text or json (default: text)

History Flags:
  --config string    Config file path
  --server string    Server URL. Empty (default) reads the database directly.
  --limit int        Number of entries (default: 20)
  --clear            Delete all recorded queries
  --output string    Output format: text or json (default: text)

Examples:
  suisen server --dataset ./movie_dataset.csv
  suisen recommend a crew of astronauts stranded in space
  suisen recommend --output json --limit 10 "heist gone wrong"
  suisen recommend                       # interactive prompt
  suisen stats --output json
  suisen history --server http://localhost:8080`)
}
