// Package session holds per-session interaction state: the live index,
// the active document identity, and the question/answer history.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
	"pdf-rag/internal/pipeline"
	"pdf-rag/internal/store"
)

var (
	// ErrNoIndex means no successful ingestion has happened yet.
	ErrNoIndex = errors.New("no document has been processed")
	// ErrEmptyQuestion is rejected at the boundary, before the pipeline.
	ErrEmptyQuestion = errors.New("question must not be empty")
)

// State is the session lifecycle position.
type State string

const (
	StateEmpty     State = "empty"
	StateIngesting State = "ingesting"
	StateReady     State = "ready"
	StateFailed    State = "failed"
)

// Pipeline is the slice of the controller the session drives.
type Pipeline interface {
	Ingest(ctx context.Context, data []byte, filename string, opts pipeline.IngestOptions) (store.Index, *models.Stats, error)
	Answer(ctx context.Context, question string, index store.Index, opts pipeline.QueryOptions) models.Result
}

// Session is the mutable state of one interactive user. All methods
// serialize on the session mutex, so one interaction runs at a time.
type Session struct {
	mu sync.Mutex

	id           string
	pipe         Pipeline
	state        State
	index        store.Index
	documentName string
	stats        *models.Stats
	history      []models.QAEntry
}

func New(id string, pipe Pipeline) *Session {
	return &Session{id: id, pipe: pipe, state: StateEmpty}
}

// Upload runs the ingestion path unless the filename matches the
// active document, in which case the existing index is reused (name
// equality is the sole cache key). On success the new index replaces
// the old one atomically and history is reset; on failure a previous
// index, if any, stays live.
func (s *Session) Upload(ctx context.Context, data []byte, filename string, opts pipeline.IngestOptions) (*models.Stats, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil && filename == s.documentName {
		log.Debug().Str("session", s.id).Str("file", filename).Msg("using cached index for file")
		return s.stats, true, nil
	}

	prev := s.state
	s.state = StateIngesting

	index, stats, err := s.pipe.Ingest(ctx, data, filename, opts)
	if err != nil {
		if s.index != nil {
			// Prior index untouched; session stays usable.
			s.state = prev
		} else {
			s.state = StateFailed
		}
		log.Error().Err(err).Str("session", s.id).Str("file", filename).Msg("failed to process file")
		return nil, false, err
	}

	if old := s.index; old != nil {
		if err := old.Close(); err != nil {
			log.Warn().Err(err).Str("session", s.id).Msg("failed to close previous index")
		}
	}
	s.index = index
	s.documentName = filename
	s.stats = stats
	s.history = nil
	s.state = StateReady
	log.Info().Str("session", s.id).Str("file", filename).Msg("file ready for questioning")
	return stats, false, nil
}

// Ask runs the query path. Empty questions and a missing index are
// precondition errors; a downstream failure comes back inside the
// Result and appends nothing to history.
func (s *Session) Ask(ctx context.Context, question string, opts pipeline.QueryOptions) (models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(question) == "" {
		log.Warn().Str("session", s.id).Msg("empty question submitted")
		return models.Result{}, ErrEmptyQuestion
	}
	if s.index == nil {
		return models.Result{}, ErrNoIndex
	}

	result := s.pipe.Answer(ctx, question, s.index, opts)
	if result.Failed() {
		log.Error().Str("session", s.id).Str("error", result.Err).Msg("question failed")
		return result, nil
	}

	s.history = append(s.history, models.QAEntry{
		Question:  question,
		Answer:    result.Answer,
		Timestamp: time.Now(),
		Model:     opts.Model,
	})
	log.Info().Str("session", s.id).Msg("response added to history")
	return result, nil
}

// Reset clears index, document identity, stats and history atomically.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		if err := s.index.Close(); err != nil {
			log.Warn().Err(err).Str("session", s.id).Msg("failed to close index on reset")
		}
	}
	s.index = nil
	s.documentName = ""
	s.stats = nil
	s.history = nil
	s.state = StateEmpty
	log.Info().Str("session", s.id).Msg("session reset")
}

// ClearHistory empties the history without touching the index.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	log.Info().Str("session", s.id).Msg("history cleared")
}

// History returns a copy of the QA entries in chronological order.
func (s *Session) History() []models.QAEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.QAEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Info is a read-only snapshot for the session endpoint.
type Info struct {
	State        State         `json:"state"`
	DocumentName string        `json:"document_name,omitempty"`
	Stats        *models.Stats `json:"stats,omitempty"`
	HistoryLen   int           `json:"history_length"`
}

func (s *Session) Snapshot() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		State:        s.state,
		DocumentName: s.documentName,
		Stats:        s.stats,
		HistoryLen:   len(s.history),
	}
}
