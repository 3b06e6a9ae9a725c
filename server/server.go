package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/upb/newsletter/config"
	"go.uber.org/zap"
)

// Run serves handler on ln until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout. The listener is owned by Run and
// closed on return. A nil error means the shutdown was clean.
func Run(ctx context.Context, ln net.Listener, handler http.Handler, cfg config.ServerConfig, logger *zap.Logger) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("address", ln.Addr().String()))
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
