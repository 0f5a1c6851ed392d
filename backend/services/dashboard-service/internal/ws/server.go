package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"energyprofile/backend/services/dashboard-service/internal/service"
)

// StatusProvider reports the current dataset status.
type StatusProvider interface {
	Status() service.Status
}

// Event is the frame pushed to dashboards.
type Event struct {
	Type string         `json:"type"`
	Data service.Status `json:"data"`
}

// Server upgrades dashboard requests to the live status feed.
type Server struct {
	ctx          context.Context
	manager      *Manager
	status       StatusProvider
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server. Connections live until ctx is cancelled or the client leaves.
func NewServer(ctx context.Context, manager *Manager, status StatusProvider, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		ctx:          ctx,
		manager:      manager,
		status:       status,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// EncodeStatus renders a status event frame.
func EncodeStatus(status service.Status) ([]byte, error) {
	return json.Marshal(Event{Type: "status", Data: status})
}

// Publish pushes status to every connected dashboard.
func (s *Server) Publish(status service.Status) {
	msg, err := EncodeStatus(status)
	if err != nil {
		s.logger.Error("failed to encode status event", zap.Error(err))
		return
	}
	s.manager.Broadcast(msg)
}

// HandleWS is HTTP handler for /ws/dashboard endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	connection := NewConnection(conn, s.writeTimeout, s.logger, s.manager.Remove)
	s.manager.Add(connection, func() []byte {
		msg, err := EncodeStatus(s.status.Status())
		if err != nil {
			s.logger.Error("failed to encode status event", zap.Error(err))
			return nil
		}
		return msg
	})

	go connection.Start(s.ctx)
	s.logger.Info("dashboard connected", zap.String("remote", r.RemoteAddr))
}
