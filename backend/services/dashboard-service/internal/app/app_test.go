package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energyprofile/backend/services/dashboard-service/internal/config"
	"energyprofile/backend/services/dashboard-service/internal/dataset"
	"energyprofile/backend/services/dashboard-service/internal/loader"
	"energyprofile/backend/services/dashboard-service/internal/models"
	redisstore "energyprofile/backend/services/dashboard-service/internal/redis"
	"energyprofile/backend/services/dashboard-service/internal/service"
)

const sample = "Time,Voltage_V,Frequency_Hz,Current_A,ActivePower_kW,PowerFactor,ApparentPower_kVA,ReactivePower_kVAr,Energy_kWh,Cost_cum_BDT,PF_Class,Compressor_ON,DutyCycle_%_24H,Cycle_ID\n" +
	"2024-01-01 00:01:00,230.1,50.0,0.65,0.150,0.96,0.156,0.040,0.0025,0.013,Excellent,1,40.0,1\n" +
	"2024-01-01 00:00:00,229.8,50.0,0.64,0.148,0.95,0.155,0.041,0.0000,0.000,Good,1,40.0,1\n"

func newTestApp(t *testing.T, source string) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.HTTP.Port = "0"
	cfg.Data.Source = source

	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestLoadDatasetCompletesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	a := newTestApp(t, path)
	a.loadDataset(context.Background())

	snap := a.store.Snapshot()
	require.Equal(t, dataset.StateReady, snap.State)
	require.Len(t, snap.Readings, 2)
	assert.True(t, snap.Readings[0].Time.Before(snap.Readings[1].Time))
}

func TestLoadDatasetFailsStore(t *testing.T) {
	a := newTestApp(t, filepath.Join(t.TempDir(), "missing.csv"))
	a.loadDataset(context.Background())

	snap := a.store.Snapshot()
	require.Equal(t, dataset.StateFailed, snap.State)
	assert.Empty(t, snap.Readings)
	assert.ErrorIs(t, snap.Err, loader.ErrUnreachable)
}

func TestNewRejectsBadTariff(t *testing.T) {
	cfg := &config.Config{}
	cfg.Data.Source = "data.csv"
	cfg.Tariff.Slabs = []models.TariffSlab{{UpToKWh: 100, RatePerKWh: 5}}

	_, err := New(cfg, zap.NewNop())
	assert.Error(t, err)
}

// slowCommands delays its first SET to mimic a sluggish redis round trip.
type slowCommands struct {
	mu       sync.Mutex
	sets     int
	delay    time.Duration
	statuses []service.Status
}

func (c *slowCommands) Set(_ context.Context, _ string, value interface{}, _ time.Duration) *goredis.StatusCmd {
	c.mu.Lock()
	c.sets++
	first := c.sets == 1
	c.mu.Unlock()
	if first {
		time.Sleep(c.delay)
	}

	var status service.Status
	if err := json.Unmarshal(value.([]byte), &status); err != nil {
		return goredis.NewStatusResult("", err)
	}
	c.mu.Lock()
	c.statuses = append(c.statuses, status)
	c.mu.Unlock()
	return goredis.NewStatusResult("OK", nil)
}

func (c *slowCommands) Publish(context.Context, string, interface{}) *goredis.IntCmd {
	return goredis.NewIntResult(1, nil)
}

func (c *slowCommands) stored() []service.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]service.Status(nil), c.statuses...)
}

func TestRunWritesLoadingStatusBeforeTerminal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	a := newTestApp(t, path)
	commands := &slowCommands{delay: 50 * time.Millisecond}
	a.notifier = redisstore.NewDatasetNotifier(commands, "test", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(commands.stored()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}

	stored := commands.stored()
	assert.Equal(t, dataset.StateLoading, stored[0].Status)
	assert.Equal(t, dataset.StateReady, stored[1].Status)
	assert.Equal(t, 2, stored[1].Readings)
	assert.Equal(t, dataset.StateReady, a.store.Snapshot().State)
}
