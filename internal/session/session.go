package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/preprocess"
)

// ErrNoDataset is returned when an operation needs data before any was loaded
var ErrNoDataset = errors.New("no dataset loaded")

// Session is one browser's working state. Callers hold Lock while reading
// or changing the data fields.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu sync.Mutex

	// Source names where the data came from (file name or sample:<name>)
	Source    string
	Original  *dataset.Dataset
	Processed *dataset.Dataset
	Steps     []preprocess.Step
	Results   analysis.Results

	// lastSeen is guarded by the store mutex
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, lastSeen: now}
}

// Lock serialises actions on the session
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session
func (s *Session) Unlock() { s.mu.Unlock() }

// Load replaces the session data with ds. Processed starts as a copy and
// earlier steps and results are discarded.
func (s *Session) Load(ds *dataset.Dataset, source string) {
	s.Source = source
	s.Original = ds
	s.Processed = ds.Clone()
	s.Steps = nil
	s.Results = analysis.Results{}
}

// Data returns the processed dataset
func (s *Session) Data() (*dataset.Dataset, error) {
	if s.Processed == nil {
		return nil, ErrNoDataset
	}
	return s.Processed, nil
}

// Apply records a preprocessing step and its output
func (s *Session) Apply(step preprocess.Step, processed *dataset.Dataset) {
	s.Processed = processed
	s.Steps = append(s.Steps, step)
}

// Reset restores the processed dataset to the original and clears the history
func (s *Session) Reset() error {
	if s.Original == nil {
		return ErrNoDataset
	}
	s.Processed = s.Original.Clone()
	s.Steps = nil
	return nil
}

type contextKey struct{}

// WithContext stores s in ctx
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithContext
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
