package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyprofile/backend/services/dashboard-service/internal/dataset"
	"energyprofile/backend/services/dashboard-service/internal/service"
)

type fakeCommands struct {
	sets       map[string][]byte
	ttls       map[string]time.Duration
	published  map[string][][]byte
	publishErr error
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		sets:      make(map[string][]byte),
		ttls:      make(map[string]time.Duration),
		published: make(map[string][][]byte),
	}
}

func (f *fakeCommands) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.sets[key] = value.([]byte)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCommands) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	if f.publishErr != nil {
		return redis.NewIntResult(0, f.publishErr)
	}
	f.published[channel] = append(f.published[channel], message.([]byte))
	return redis.NewIntResult(1, nil)
}

func TestNotifyStoresAndPublishes(t *testing.T) {
	fake := newFakeCommands()
	notifier := NewDatasetNotifier(fake, "energy:", time.Hour)

	status := service.Status{Status: dataset.StateReady, Source: "data.csv", Readings: 3}
	require.NoError(t, notifier.Notify(context.Background(), status))

	assert.Equal(t, "energy:status", notifier.StatusKey())
	assert.Equal(t, "energy:events", notifier.EventsChannel())
	assert.Equal(t, time.Hour, fake.ttls["energy:status"])
	require.Len(t, fake.published["energy:events"], 1)

	var stored service.Status
	require.NoError(t, json.Unmarshal(fake.sets["energy:status"], &stored))
	assert.Equal(t, status, stored)
}

func TestNotifyDefaultPrefixAndErrors(t *testing.T) {
	fake := newFakeCommands()
	fake.publishErr = errors.New("connection refused")
	notifier := NewDatasetNotifier(fake, "", 0)

	err := notifier.Notify(context.Background(), service.Status{Status: dataset.StateFailed, Error: "boom"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish")
	assert.Equal(t, "dashboard:dataset:status", notifier.StatusKey())
}
