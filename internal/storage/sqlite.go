package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/suisen/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		result_limit INTEGER NOT NULL,
		results INTEGER NOT NULL,
		top_title TEXT,
		top_score REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_query_history_created_at ON query_history(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordQuery inserts a history entry. An empty ID is replaced with a new UUID and
// CreatedAt is set to now when zero.
func (s *SQLiteStorage) RecordQuery(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_history (id, query, result_limit, results, top_title, top_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Query, entry.Limit, entry.Results, entry.TopTitle, entry.TopScore, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// GetHistoryEntry returns a history entry by ID.
func (s *SQLiteStorage) GetHistoryEntry(ctx context.Context, id string) (*models.HistoryEntry, error) {
	var e models.HistoryEntry
	var topTitle sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, result_limit, results, top_title, top_score, created_at
		 FROM query_history WHERE id = ?`, id,
	).Scan(&e.ID, &e.Query, &e.Limit, &e.Results, &topTitle, &e.TopScore, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	e.TopTitle = topTitle.String
	return &e, nil
}

// ListHistory returns entries newest first with offset and limit.
func (s *SQLiteStorage) ListHistory(ctx context.Context, offset, limit int) ([]*models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, result_limit, results, top_title, top_score, created_at
		 FROM query_history ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.HistoryEntry, 0)
	for rows.Next() {
		var e models.HistoryEntry
		var topTitle sql.NullString
		if err := rows.Scan(&e.ID, &e.Query, &e.Limit, &e.Results, &topTitle, &e.TopScore, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.TopTitle = topTitle.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CountHistory returns the number of stored entries.
func (s *SQLiteStorage) CountHistory(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_history`).Scan(&n)
	return n, err
}

// ClearHistory deletes every entry.
func (s *SQLiteStorage) ClearHistory(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM query_history`)
	return err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
