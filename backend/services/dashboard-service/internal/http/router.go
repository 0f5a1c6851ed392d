package httpserver

import (
	"net/http"

	"energyprofile/backend/services/dashboard-service/internal/http/handlers"
	"energyprofile/backend/services/dashboard-service/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Dashboard *handlers.DashboardHandlers
	Health    http.HandlerFunc
	LiveFeed  http.HandlerFunc
}

// NewRouter wires HTTP routes. authMiddleware may be nil to serve the API openly.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	if deps.Health != nil {
		mux.Handle("/health", method(http.MethodGet, deps.Health))
	}

	guarded := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(handler, authMiddleware)
	}

	if d := deps.Dashboard; d != nil {
		mux.Handle("/api/status", method(http.MethodGet, guarded(d.Status)))
		mux.Handle("/api/header", method(http.MethodGet, guarded(d.Header)))
		mux.Handle("/api/dashboard", method(http.MethodGet, guarded(d.Dashboard)))
		mux.Handle("/api/analytics", method(http.MethodGet, guarded(d.Analytics)))
		mux.Handle("/api/cost", method(http.MethodGet, guarded(d.Cost)))
		mux.Handle("/api/readings", method(http.MethodGet, guarded(d.Readings)))
	}
	if deps.LiveFeed != nil {
		mux.Handle("/ws/dashboard", method(http.MethodGet, guarded(deps.LiveFeed)))
	}
	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
