// Package session owns the graph currently being served and sequences
// ingestion loads so that only the most recently started one is applied.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/telemetry"
)

// ErrStale is returned when a load finishes after a newer one began.
var ErrStale = errors.New("stale load discarded")

// ErrNotLoaded is returned by Current before the first successful load.
var ErrNotLoaded = errors.New("no task data loaded")

// LoadStatus is the outcome of a load.
type LoadStatus string

const (
	LoadRunning LoadStatus = "running"
	LoadApplied LoadStatus = "applied"
	LoadFailed  LoadStatus = "failed"
	LoadStale   LoadStatus = "stale"
)

// Ticket identifies one load. Generations increase with every Begin.
type Ticket struct {
	Generation uint64
	ID         string
	StartedAt  time.Time
}

// Snapshot is a fully built task set.
type Snapshot struct {
	Graph    *graph.Graph
	Sections []graph.Section
	Source   string
}

// LoadRecord describes the latest load.
type LoadRecord struct {
	ID         string     `json:"id"`
	Status     LoadStatus `json:"status"`
	Source     string     `json:"source,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Tasks      int        `json:"tasks"`
	Error      string     `json:"error,omitempty"`
}

// Loader produces a snapshot, typically by fetching and ingesting a sheet.
type Loader func(ctx context.Context) (Snapshot, error)

// Store holds the current snapshot.
type Store struct {
	mu      sync.RWMutex
	gen     uint64
	current *Snapshot
	last    LoadRecord
	lastErr error
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Begin starts a load and supersedes every earlier one.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	t := Ticket{Generation: s.gen, ID: uuid.NewString(), StartedAt: time.Now()}
	s.last = LoadRecord{ID: t.ID, Status: LoadRunning, StartedAt: t.StartedAt}
	return t
}

// Apply installs snap if t is the most recently begun load. Otherwise the
// snapshot is dropped and ErrStale returned.
func (s *Store) Apply(t Ticket, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Generation != s.gen {
		return s.stale(t)
	}

	now := time.Now()
	s.current = &snap
	s.lastErr = nil
	s.last = LoadRecord{
		ID:         t.ID,
		Status:     LoadApplied,
		Source:     snap.Source,
		StartedAt:  t.StartedAt,
		FinishedAt: &now,
	}
	if snap.Graph != nil {
		s.last.Tasks = snap.Graph.Len()
	}
	return nil
}

// Fail records err for t. The previous snapshot stays in place.
func (s *Store) Fail(t Ticket, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Generation != s.gen {
		return s.stale(t)
	}

	now := time.Now()
	s.lastErr = err
	s.last.Status = LoadFailed
	s.last.FinishedAt = &now
	s.last.Error = err.Error()
	return nil
}

func (s *Store) stale(t Ticket) error {
	slog.Info("discarding stale load", "load_id", t.ID, "generation", t.Generation, "latest", s.gen)
	telemetry.Add(context.Background(), telemetry.StaleLoads, 1)
	return fmt.Errorf("load %s: %w", t.ID, ErrStale)
}

// Reload runs load under a new ticket and applies or records its result.
// If another reload begins meanwhile, this one returns ErrStale.
func (s *Store) Reload(ctx context.Context, load Loader) error {
	t := s.Begin()

	snap, err := load(ctx)
	if err != nil {
		if ferr := s.Fail(t, err); ferr != nil {
			return ferr
		}
		return err
	}
	return s.Apply(t, snap)
}

// Current returns the installed snapshot, or ErrNotLoaded joined with the
// last load error.
func (s *Store) Current() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		if s.lastErr != nil {
			return Snapshot{}, errors.Join(ErrNotLoaded, s.lastErr)
		}
		return Snapshot{}, ErrNotLoaded
	}
	return *s.current, nil
}

// Graph returns the current graph, or nil before the first load.
func (s *Store) Graph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	return s.current.Graph
}

// LastError returns the error of the latest load, if it failed.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// LastLoad describes the most recently begun load.
func (s *Store) LastLoad() LoadRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
