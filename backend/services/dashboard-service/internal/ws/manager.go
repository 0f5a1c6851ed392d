package ws

import (
	"context"
	"sync"
	"time"
)

// Manager tracks dashboard connections and fans messages out to them.
type Manager struct {
	mu           sync.RWMutex
	connections  map[*Connection]struct{}
	pingInterval time.Duration
	ping         func(*Connection) error
}

// NewManager builds connection manager.
func NewManager(pingInterval time.Duration) *Manager {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Manager{
		connections:  make(map[*Connection]struct{}),
		pingInterval: pingInterval,
		ping:         (*Connection).Ping,
	}
}

// Add registers new connection. The greeting, when non-nil, is queued before any
// broadcast can reach the connection.
func (m *Manager) Add(conn *Connection, greeting func() []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn] = struct{}{}
	if greeting != nil {
		if msg := greeting(); msg != nil {
			conn.Send(msg)
		}
	}
}

// Remove removes connection.
func (m *Manager) Remove(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, conn)
}

// Count returns the number of live connections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Broadcast queues msg on every connection. Full buffers drop the message.
func (m *Manager) Broadcast(msg []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for conn := range m.connections {
		conn.Send(msg)
	}
}

func (m *Manager) snapshot() []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conns := make([]*Connection, 0, len(m.connections))
	for conn := range m.connections {
		conns = append(conns, conn)
	}
	return conns
}

// pingAll writes pings outside the lock; a slow peer must not stall Add or Broadcast.
func (m *Manager) pingAll() {
	for _, conn := range m.snapshot() {
		_ = m.ping(conn)
	}
}

// Start runs the ping loop until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pingAll()
		}
	}
}
