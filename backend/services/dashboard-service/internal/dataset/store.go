package dataset

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"energyprofile/backend/services/dashboard-service/internal/models"
)

// State is the lifecycle stage of the session's reading sequence.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// ErrAlreadySettled is returned when a second terminal transition is attempted.
var ErrAlreadySettled = errors.New("dataset: already settled")

// Snapshot is an immutable view of the dataset. Readings must not be modified.
type Snapshot struct {
	State    State
	Source   string
	Readings []models.EnergyReading
	Err      error
	LoadedAt time.Time
}

// Listener observes state transitions. It runs synchronously and must not block.
type Listener func(Snapshot)

// Store holds the single load-then-freeze transition of a session.
type Store struct {
	current atomic.Pointer[Snapshot]

	mu        sync.Mutex
	listeners []Listener
	now       func() time.Time
}

// NewStore returns a store in the loading state for source.
func NewStore(source string) *Store {
	s := &Store{now: time.Now}
	s.current.Store(&Snapshot{State: StateLoading, Source: source})
	return s
}

// Snapshot returns the current view without locking.
func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// Subscribe registers l for later transitions and returns the current snapshot.
func (s *Store) Subscribe(l Listener) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	return s.Snapshot()
}

// Complete freezes readings as the session's dataset.
func (s *Store) Complete(readings []models.EnergyReading) error {
	if readings == nil {
		readings = []models.EnergyReading{}
	}
	return s.settle(func(prev *Snapshot) *Snapshot {
		return &Snapshot{State: StateReady, Source: prev.Source, Readings: readings, LoadedAt: s.now().UTC()}
	})
}

// Fail records a load failure. The sequence stays empty.
func (s *Store) Fail(err error) error {
	if err == nil {
		err = errors.New("dataset: unknown load failure")
	}
	return s.settle(func(prev *Snapshot) *Snapshot {
		return &Snapshot{State: StateFailed, Source: prev.Source, Readings: []models.EnergyReading{}, Err: err, LoadedAt: s.now().UTC()}
	})
}

func (s *Store) settle(next func(*Snapshot) *Snapshot) error {
	s.mu.Lock()
	prev := s.current.Load()
	if prev.State != StateLoading {
		s.mu.Unlock()
		return ErrAlreadySettled
	}
	snap := next(prev)
	s.current.Store(snap)
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(*snap)
	}
	return nil
}
