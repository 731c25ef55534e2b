package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type shutdownHook struct {
	name string
	fn   func() error
}

// ServiceManager manages the lifecycle of the HTTP server and the resources
// it depends on
type ServiceManager struct {
	server          *http.Server
	shutdownTimeout time.Duration
	hooks           []shutdownHook
}

// NewServiceManager creates a new service manager
func NewServiceManager(server *http.Server, shutdownTimeout time.Duration) *ServiceManager {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &ServiceManager{
		server:          server,
		shutdownTimeout: shutdownTimeout,
	}
}

// OnShutdown registers fn to run after the server stops. Hooks run in
// reverse registration order.
func (sm *ServiceManager) OnShutdown(name string, fn func() error) {
	sm.hooks = append(sm.hooks, shutdownHook{name: name, fn: fn})
}

// Run serves until ctx is cancelled or the listener fails, then shuts the
// server down and runs the hooks
func (sm *ServiceManager) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", sm.server.Addr).Msg("Server starting")
		if err := sm.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case err, ok := <-serveErr:
		if ok {
			log.Error().Err(err).Msg("Server exited with error")
			runErr = fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), sm.shutdownTimeout)
		defer cancel()
		if err := sm.server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
			runErr = fmt.Errorf("shutdown: %w", err)
		}
	}

	sm.runHooks()
	log.Info().Msg("Shutdown complete")
	return runErr
}

func (sm *ServiceManager) runHooks() {
	for i := len(sm.hooks) - 1; i >= 0; i-- {
		hook := sm.hooks[i]
		if err := hook.fn(); err != nil {
			log.Error().Err(err).Str("hook", hook.name).Msg("Shutdown hook failed")
			continue
		}
		log.Info().Str("hook", hook.name).Msg("Shutdown hook completed")
	}
}
