package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sebr/inception-bridge/internal/bridge"
	"github.com/sebr/inception-bridge/internal/flags"
	"github.com/sebr/inception-bridge/internal/inception"
	"github.com/sebr/inception-bridge/internal/infrastructure/config"
	"github.com/sebr/inception-bridge/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// hubCallbackName registers the WebSocket hub on the client's callback streams.
const hubCallbackName = "websocket-hub"

// Panel is the subset of *inception.Client the API uses.
type Panel interface {
	Mirror() *inception.Data
	Control(ctx context.Context, kind inception.EntityKind, id, action string, timeSecs int) error
	Connected() bool
	ReviewStopped() bool
	RegisterDataCallback(name string, fn inception.DataCallback) bool
	RegisterReviewEventCallback(name string, fn inception.ReviewEventCallback) bool
	UnregisterDataCallback(name string) bool
	UnregisterReviewEventCallback(name string) bool
}

// MQTTStatus reports broker connectivity for the metrics endpoint.
type MQTTStatus interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Panel    Panel

	// Flags stores feature flags for any key. Gate, when set, serves its
	// own key so updates take effect on the live review filter.
	Flags flags.Repository
	Gate  *flags.Gate

	// Optional status sources for the metrics endpoint.
	MQTT    MQTTStatus
	DB      *sql.DB
	Metrics func() bridge.Metrics

	Version string
}

// Server is the HTTP API server for the Inception bridge.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	panel     Panel
	flags     flags.Repository
	gate      *flags.Gate
	mqtt      MQTTStatus
	db        *sql.DB
	metrics   func() bridge.Metrics
	version   string
	startTime time.Time

	server  *http.Server
	hub     *Hub
	tickets *ticketStore
	states  *bridge.StateTracker
	cancel  context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, panel client, flags)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Panel == nil {
		return nil, errors.New("panel client is required")
	}
	if deps.Flags == nil {
		return nil, errors.New("flags repository is required")
	}
	if deps.Security.JWT.Secret == "" {
		return nil, errors.New("JWT secret is required")
	}

	return &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		panel:     deps.Panel,
		flags:     deps.Flags,
		gate:      deps.Gate,
		mqtt:      deps.MQTT,
		db:        deps.DB,
		metrics:   deps.Metrics,
		version:   deps.Version,
		startTime: time.Now(),
		tickets:   newTicketStore(),
		states:    bridge.NewStateTracker(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, registers the hub on the client's callback
// streams, and launches the HTTP listener in a background goroutine. The
// server can be stopped with Close().
//
// Parameters:
//   - ctx: Parent context for the hub and ticket cleanup goroutines
//
// Returns:
//   - error: Currently always nil; listener errors are logged
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)
	go s.cleanTicketsLoop(srvCtx)

	s.panel.RegisterDataCallback(hubCallbackName, s.broadcastData)
	s.panel.RegisterReviewEventCallback(hubCallbackName, s.broadcastReviewEvent)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	s.panel.UnregisterDataCallback(hubCallbackName)
	s.panel.UnregisterReviewEventCallback(hubCallbackName)

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return errors.New("api server not started")
	}

	return nil
}

// broadcastData pushes changed entity states to WebSocket subscribers.
func (s *Server) broadcastData(data *inception.Data) {
	if s.hub == nil {
		return
	}
	for _, snap := range s.states.Changes(data) {
		s.hub.Broadcast(ChannelEntityState, snap)
	}
}

// broadcastReviewEvent pushes review events that pass the gate.
func (s *Server) broadcastReviewEvent(raw map[string]any) {
	if s.hub == nil {
		return
	}
	ev := inception.NormalizeReviewEvent(raw)
	if s.gate != nil && !s.gate.Allows(ev.MessageCategory) {
		return
	}
	s.hub.Broadcast(ChannelReviewEvent, ev)
}
