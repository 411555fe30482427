// Package dataset loads the movie corpus from CSV or XLSX files.
package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/suisen/internal/models"
)

var (
	// ErrMissingColumn is returned when a required column is absent from the header row.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnsupportedFormat is returned for file extensions other than .csv, .tsv and .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrNoHeader is returned when the file has no header row.
	ErrNoHeader = errors.New("dataset has no header row")
)

const fingerprintPrefix = "dataset:"

// fallbackTitleColumn is tried when the configured title column is absent.
const fallbackTitleColumn = "title"

// Columns names the header cells read from the dataset.
type Columns struct {
	Title    string
	Overview string
	// Keywords is optional; an empty name or an absent column yields empty keywords.
	Keywords string
}

// DefaultColumns matches the TMDB movie dataset layout.
func DefaultColumns() Columns {
	return Columns{Title: "original_title", Overview: "overview", Keywords: "keywords"}
}

// Dataset is a loaded movie file.
type Dataset struct {
	Path        string
	Format      string
	Fingerprint string
	Movies      []models.Movie
}

// Loader reads a dataset file from disk.
type Loader struct {
	path    string
	columns Columns
	logger  *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader creates a loader for path. Empty column names fall back to DefaultColumns.
func NewLoader(path string, columns Columns, opts ...LoaderOption) *Loader {
	def := DefaultColumns()
	if columns.Title == "" {
		columns.Title = def.Title
	}
	if columns.Overview == "" {
		columns.Overview = def.Overview
	}
	l := &Loader{path: path, columns: columns}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the dataset file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads and parses the dataset file.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(l.path))
	movies, err := Parse(content, ext, l.columns)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", l.path, err)
	}
	ds := &Dataset{
		Path:        l.path,
		Format:      strings.TrimPrefix(ext, "."),
		Fingerprint: Fingerprint(content),
		Movies:      movies,
	}
	if l.logger != nil {
		l.logger.Debug("dataset loaded",
			zap.String("path", l.path),
			zap.String("format", ds.Format),
			zap.Int("movies", len(movies)),
			zap.String("fingerprint", ds.Fingerprint))
	}
	return ds, nil
}

// Parse decodes content according to ext (with leading dot) into movies.
func Parse(content []byte, ext string, columns Columns) ([]models.Movie, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext {
	case ".csv":
		rows, err = readDelimited(content, ',')
	case ".tsv":
		rows, err = readDelimited(content, '\t')
	case ".xlsx":
		rows, err = readExcel(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return rowsToMovies(rows, columns)
}

// Fingerprint identifies dataset content; identical bytes give identical fingerprints.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return fingerprintPrefix + hex.EncodeToString(sum[:])
}

func rowsToMovies(rows [][]string, columns Columns) ([]models.Movie, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		key := headerKey(name)
		if _, dup := header[key]; !dup {
			header[key] = i
		}
	}

	titleIdx, ok := header[headerKey(columns.Title)]
	if !ok {
		titleIdx, ok = header[fallbackTitleColumn]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, columns.Title)
	}
	overviewIdx, ok := header[headerKey(columns.Overview)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, columns.Overview)
	}
	keywordsIdx := -1
	if columns.Keywords != "" {
		if i, ok := header[headerKey(columns.Keywords)]; ok {
			keywordsIdx = i
		}
	}

	movies := make([]models.Movie, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		movies = append(movies, models.Movie{
			Title:    cell(row, titleIdx),
			Overview: cell(row, overviewIdx),
			Keywords: cell(row, keywordsIdx),
		})
	}
	return movies, nil
}

// cell returns row[i], or "" when the row is short or i is negative.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func headerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
