package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"energyprofile/backend/services/dashboard-service/internal/service"
)

const defaultPrefix = "dashboard:dataset"

// Commands is the subset of the redis client used by the notifier.
type Commands interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// DatasetNotifier announces dataset load outcomes to other dashboards.
type DatasetNotifier struct {
	client Commands
	prefix string
	ttl    time.Duration
}

// NewDatasetNotifier returns redis-backed notifier.
func NewDatasetNotifier(client Commands, prefix string, ttl time.Duration) *DatasetNotifier {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &DatasetNotifier{client: client, prefix: prefix, ttl: ttl}
}

// StatusKey holds the latest status document.
func (n *DatasetNotifier) StatusKey() string {
	return fmt.Sprintf("%s:status", n.prefix)
}

// EventsChannel receives one message per transition.
func (n *DatasetNotifier) EventsChannel() string {
	return fmt.Sprintf("%s:events", n.prefix)
}

// Notify stores status under StatusKey and publishes it on EventsChannel.
func (n *DatasetNotifier) Notify(ctx context.Context, status service.Status) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	if err := n.client.Set(ctx, n.StatusKey(), data, n.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set status: %w", err)
	}
	if err := n.client.Publish(ctx, n.EventsChannel(), data).Err(); err != nil {
		return fmt.Errorf("redis: publish status: %w", err)
	}
	return nil
}
