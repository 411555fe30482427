package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/suisen/internal/models"
	"github.com/hyperjump/suisen/internal/search"
	"github.com/hyperjump/suisen/internal/storage"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var query models.RecommendQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("recommend request", zap.String("query", query.Query))
	response, err := s.engine.Recommend(r.Context(), &query)
	if err != nil {
		s.respondErr(w, "recommend failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "position must be an integer")
		return
	}
	movie, err := s.engine.Movie(position)
	if err != nil {
		s.respondErr(w, "get movie failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil || limit < 0 {
		s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	entries, err := s.engine.History(r.Context(), offset, limit)
	if err != nil {
		s.respondErr(w, "list history failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "total": len(entries)})
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.engine.HistoryEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, "get history entry failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	if snap == nil {
		s.respondErr(w, "status failed", search.ErrNoCorpus)
		return
	}
	stats := snap.Corpus.Stats()
	resp := map[string]interface{}{
		"documents":       stats.Documents,
		"vocabulary_size": stats.VocabularySize,
		"empty_documents": stats.EmptyDocuments,
		"total_terms":     stats.TotalTerms,
		"fingerprint":     snap.Fingerprint,
		"source":          snap.Source,
		"loaded_at":       snap.LoadedAt,
	}
	if s.storage != nil {
		if n, err := s.storage.CountHistory(r.Context()); err == nil {
			resp["history_entries"] = n
		} else {
			s.logger.Warn("status: count history failed", zap.Error(err))
		}
	}

	configInfo := map[string]interface{}{
		"default_limit": s.config.Recommend.DefaultLimit,
		"max_limit":     s.config.Recommend.MaxLimit,
		"min_score":     s.config.Recommend.MinScore,
		"watch":         s.config.Dataset.WatchOrDefault(),
		"database_path": s.config.Storage.DatabasePath,
		"dataset_path":  s.config.Dataset.Path,
	}
	paths := append(storage.DatabaseFiles(s.config.Storage.DatabasePath), s.config.Dataset.Path)
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("reload request")
	snap, err := s.engine.Reload(r.Context())
	if err != nil {
		s.respondErr(w, "reload failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "reloaded",
		"documents":   snap.Corpus.Len(),
		"fingerprint": snap.Fingerprint,
		"loaded_at":   snap.LoadedAt,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.engine.Snapshot() == nil {
		status = "loading"
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrDocumentNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, search.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrNoCorpus), errors.Is(err, search.ErrNoSource):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
