package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// WebSocket (auth via ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/metrics", s.handleMetrics)
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Route("/entities/{kind}", func(r chi.Router) {
				r.Get("/", s.handleListEntities)
				r.Get("/{id}", s.handleGetEntity)
				r.Post("/{id}/control", s.handleControlEntity)
			})

			r.Route("/flags/{key}", func(r chi.Router) {
				r.Get("/", s.handleGetFlags)
				r.Put("/", s.handlePutFlags)
			})
		})
	})

	return r
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	PanelConnected bool   `json:"panel_connected"`
	ReviewStopped  bool   `json:"review_stopped"`
	MirrorLoaded   bool   `json:"mirror_loaded"`
}

// handleHealth returns the server health status. It reports "degraded"
// while the panel polling loops are down but still answers 200 so the
// process is not restarted for a panel outage.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:         "ok",
		Version:        s.version,
		PanelConnected: s.panel.Connected(),
		ReviewStopped:  s.panel.ReviewStopped(),
		MirrorLoaded:   s.panel.Mirror() != nil,
	}
	if !resp.PanelConnected {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}
