// Package storage defines the persistence interface for recommendation query history.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/suisen/internal/models"
)

// ErrNotFound is returned when a history entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// Storage defines query history persistence. The TF-IDF index itself is never stored.
type Storage interface {
	RecordQuery(ctx context.Context, entry *models.HistoryEntry) error
	GetHistoryEntry(ctx context.Context, id string) (*models.HistoryEntry, error)
	ListHistory(ctx context.Context, offset, limit int) ([]*models.HistoryEntry, error)
	CountHistory(ctx context.Context) (int64, error)
	ClearHistory(ctx context.Context) error

	Close() error
}
