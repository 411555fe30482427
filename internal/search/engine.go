// Package search serves movie recommendations from an immutable TF-IDF corpus.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/suisen/internal/config"
	"github.com/hyperjump/suisen/internal/dataset"
	"github.com/hyperjump/suisen/internal/indexer"
	"github.com/hyperjump/suisen/internal/metrics"
	"github.com/hyperjump/suisen/internal/models"
	"github.com/hyperjump/suisen/internal/ranking"
	"github.com/hyperjump/suisen/internal/storage"
)

var (
	// ErrNoCorpus is returned when a query arrives before any corpus was loaded.
	ErrNoCorpus = errors.New("no corpus loaded")
	// ErrNoSource is returned by Reload when the engine has no dataset source.
	ErrNoSource = errors.New("no dataset source configured")
	// ErrDocumentNotFound is returned for an out-of-range corpus position.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidQuery wraps query validation failures.
	ErrInvalidQuery = errors.New("invalid query")
)

// Source supplies the dataset a corpus is built from.
type Source interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// Snapshot is a built corpus together with where it came from.
type Snapshot struct {
	Corpus      *indexer.Corpus
	Fingerprint string
	Source      string
	LoadedAt    time.Time
}

// Engine answers recommendation queries against the current snapshot. Rebuilding
// swaps in a new snapshot atomically; queries already running keep the one they started with.
type Engine struct {
	current atomic.Pointer[Snapshot]
	reloads singleflight.Group
	config  *config.RecommendConfig
	source  Source
	history storage.Storage
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSource sets the dataset used by Reload.
func WithSource(src Source) EngineOption {
	return func(e *Engine) { e.source = src }
}

// WithHistory records every served query in store.
func WithHistory(store storage.Storage) EngineOption {
	return func(e *Engine) { e.history = store }
}

// WithMetrics reports query and build metrics.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets a logger for build and history events.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine with no corpus. A nil cfg uses the configuration defaults.
func NewEngine(cfg *config.RecommendConfig, opts ...EngineOption) *Engine {
	if cfg == nil {
		full := &config.Config{}
		config.ApplyDefaults(full)
		cfg = &full.Recommend
	}
	e := &Engine{config: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load makes corpus the active snapshot.
func (e *Engine) Load(corpus *indexer.Corpus, fingerprint, source string) *Snapshot {
	snap := &Snapshot{
		Corpus:      corpus,
		Fingerprint: fingerprint,
		Source:      source,
		LoadedAt:    time.Now(),
	}
	e.current.Store(snap)
	if e.metrics != nil {
		e.metrics.ObserveCorpusBuild(nil, corpus.Len(), corpus.Vocabulary().Size())
	}
	return snap
}

// Build indexes movies and makes the result the active snapshot. On error the previous
// snapshot stays active.
func (e *Engine) Build(movies []models.Movie, fingerprint, source string) (*Snapshot, error) {
	start := time.Now()
	corpus, err := indexer.Build(movies)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ObserveCorpusBuild(err, 0, 0)
		}
		return nil, fmt.Errorf("build corpus: %w", err)
	}
	snap := e.Load(corpus, fingerprint, source)
	e.logger.Info("corpus built",
		zap.String("source", source),
		zap.Int("documents", corpus.Len()),
		zap.Int("vocabulary", corpus.Vocabulary().Size()),
		zap.Duration("elapsed", time.Since(start)))
	return snap, nil
}

// Reload rebuilds the corpus from the configured source. Concurrent callers share a
// single rebuild; a failed reload leaves the previous snapshot active.
func (e *Engine) Reload(ctx context.Context) (*Snapshot, error) {
	if e.source == nil {
		return nil, ErrNoSource
	}
	v, err, shared := e.reloads.Do("reload", func() (interface{}, error) {
		return e.reload(context.WithoutCancel(ctx))
	})
	if shared {
		e.logger.Debug("reload coalesced")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (e *Engine) reload(ctx context.Context) (*Snapshot, error) {
	ds, err := e.source.Load(ctx)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ObserveCorpusBuild(err, 0, 0)
		}
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	if cur := e.current.Load(); cur != nil && cur.Fingerprint == ds.Fingerprint {
		e.logger.Debug("dataset unchanged, keeping corpus", zap.String("fingerprint", ds.Fingerprint))
		return cur, nil
	}
	return e.Build(ds.Movies, ds.Fingerprint, ds.Path)
}

// Snapshot returns the active snapshot, or nil before the first load.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Recommend ranks every document against the query text and returns the best matches.
func (e *Engine) Recommend(ctx context.Context, query *models.RecommendQuery) (*models.RecommendResponse, error) {
	startTime := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := e.current.Load()
	if snap == nil {
		e.observeError()
		return nil, ErrNoCorpus
	}
	defaultLimit := e.config.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = ranking.DefaultTopK
	}
	if err := query.Validate(defaultLimit, e.config.MaxLimit, e.config.MinScore); err != nil {
		e.observeError()
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	corpus := snap.Corpus
	qv := corpus.Vectorize(query.Query)
	if qv.IsZero() {
		e.logger.Debug("query shares no term with the corpus", zap.String("query", query.Query))
	}
	scored := ranking.Score(qv, corpus.Vectors())
	top := ranking.TopK(ranking.AtLeast(scored, query.Threshold()), query.K())

	response := &models.RecommendResponse{
		Query:             query.Query,
		MatchedTerms:      corpus.TermsOf(qv),
		Results:           make([]*models.Recommendation, 0, len(top)),
		CorpusFingerprint: snap.Fingerprint,
	}
	for i, s := range top {
		doc, _ := corpus.Document(s.Position)
		response.Results = append(response.Results, &models.Recommendation{
			Rank:     i + 1,
			Position: s.Position,
			Title:    doc.Title,
			Overview: doc.Overview,
			Score:    s.Score,
		})
	}
	response.Total = len(response.Results)
	elapsed := time.Since(startTime)
	response.QueryTime = elapsed.Milliseconds()

	var topScore float64
	if len(top) > 0 {
		topScore = top[0].Score
	}
	if e.metrics != nil {
		e.metrics.ObserveRecommendation(elapsed, response.Total, topScore)
	}
	e.recordHistory(ctx, query, response)
	return response, nil
}

func (e *Engine) recordHistory(ctx context.Context, query *models.RecommendQuery, response *models.RecommendResponse) {
	if e.history == nil || !e.config.RecordHistoryOrDefault() {
		return
	}
	entry := &models.HistoryEntry{
		Query:   query.Query,
		Limit:   query.K(),
		Results: response.Total,
	}
	if len(response.Results) > 0 {
		entry.TopTitle = response.Results[0].Title
		entry.TopScore = response.Results[0].Score
	}
	if err := e.history.RecordQuery(ctx, entry); err != nil {
		e.logger.Warn("record query history failed", zap.Error(err))
	}
}

func (e *Engine) observeError() {
	if e.metrics != nil {
		e.metrics.ObserveRecommendationError()
	}
}

// Movie returns the corpus document at position.
func (e *Engine) Movie(position int) (*models.MovieView, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNoCorpus
	}
	doc, ok := snap.Corpus.Document(position)
	if !ok {
		return nil, fmt.Errorf("%w: position %d", ErrDocumentNotFound, position)
	}
	return &models.MovieView{
		Position:  doc.Position,
		Title:     doc.Title,
		Overview:  doc.Overview,
		TermCount: len(doc.Terms),
	}, nil
}

// History returns recent queries, newest first. It returns an empty list when no
// history store is configured.
func (e *Engine) History(ctx context.Context, offset, limit int) ([]*models.HistoryEntry, error) {
	if e.history == nil {
		return []*models.HistoryEntry{}, nil
	}
	return e.history.ListHistory(ctx, offset, limit)
}

// HistoryEntry returns one recorded query by ID. Without a history store every ID is
// reported as storage.ErrNotFound.
func (e *Engine) HistoryEntry(ctx context.Context, id string) (*models.HistoryEntry, error) {
	if e.history == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return e.history.GetHistoryEntry(ctx, id)
}
