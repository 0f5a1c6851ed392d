package dataset

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyprofile/backend/services/dashboard-service/internal/models"
)

func TestStoreStartsLoading(t *testing.T) {
	s := NewStore("data.csv")
	snap := s.Snapshot()
	assert.Equal(t, StateLoading, snap.State)
	assert.Equal(t, "data.csv", snap.Source)
	assert.Empty(t, snap.Readings)
}

func TestStoreCompleteFreezes(t *testing.T) {
	s := NewStore("data.csv")
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	readings := []models.EnergyReading{{EnergyKWh: 1}, {EnergyKWh: 2}}
	require.NoError(t, s.Complete(readings))

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Len(t, snap.Readings, 2)
	assert.Equal(t, fixed, snap.LoadedAt)
	assert.NoError(t, snap.Err)

	assert.ErrorIs(t, s.Complete(nil), ErrAlreadySettled)
	assert.ErrorIs(t, s.Fail(errors.New("late")), ErrAlreadySettled)
	assert.Equal(t, StateReady, s.Snapshot().State)
}

func TestStoreFailLeavesSequenceEmpty(t *testing.T) {
	s := NewStore("data.csv")
	loadErr := errors.New("boom")
	require.NoError(t, s.Fail(loadErr))

	snap := s.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Empty(t, snap.Readings)
	assert.ErrorIs(t, snap.Err, loadErr)

	assert.ErrorIs(t, s.Complete([]models.EnergyReading{{}}), ErrAlreadySettled)
	assert.Empty(t, s.Snapshot().Readings)
}

func TestStoreNotifiesSubscribers(t *testing.T) {
	s := NewStore("data.csv")

	var (
		mu   sync.Mutex
		seen []State
	)
	initial := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap.State)
		mu.Unlock()
	})
	assert.Equal(t, StateLoading, initial.State)

	require.NoError(t, s.Complete(nil))
	_ = s.Fail(errors.New("ignored"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateReady}, seen)
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore("data.csv")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Snapshot()
			}
		}()
	}
	require.NoError(t, s.Complete([]models.EnergyReading{{EnergyKWh: 1}}))
	wg.Wait()
	assert.Equal(t, StateReady, s.Snapshot().State)
}
