package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jakelevirne/Halloween2025/internal/audio"
	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
	"github.com/jakelevirne/Halloween2025/internal/infrastructure/logging"
	"github.com/jakelevirne/Halloween2025/internal/journal"
	"github.com/jakelevirne/Halloween2025/internal/show"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// ShowState is what the API reads from the running show.
type ShowState interface {
	Props() []show.Status
	Prop(name string) (show.Status, bool)
	Mode() config.Mode
}

// History serves past activations from the journal.
type History interface {
	History(ctx context.Context, prop string, limit int) ([]journal.Activation, error)
}

// AudioDevices lists the devices the mixer can see.
type AudioDevices interface {
	Devices() ([]audio.DeviceInfo, error)
}

// HealthChecker is implemented by infrastructure clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Show    ShowState
	History History      // nil when the journal is disabled
	Audio   AudioDevices // nil when audio is disabled
	MQTT    HealthChecker
	Hub     *Hub // If set, the server uses this hub instead of creating its own
	Version string
}

// Server is the HTTP status server.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	show        ShowState
	history     History
	audio       AudioDevices
	mqtt        HealthChecker
	version     string
	server      *http.Server
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Show == nil {
		return nil, fmt.Errorf("show state is required")
	}

	s := &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		logger:  deps.Logger,
		show:    deps.Show,
		history: deps.History,
		audio:   deps.Audio,
		mqtt:    deps.MQTT,
		version: deps.Version,
	}

	// The show's event sinks are wired before the server starts, so main
	// usually hands in the hub it already registered.
	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	}

	return s, nil
}

// Hub returns the server's WebSocket hub, or nil before Start when none
// was injected.
func (s *Server) Hub() *Hub { return s.hub }

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

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

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
