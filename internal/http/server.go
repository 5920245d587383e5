// README: API server; owns the http.Server and shuts it down when the context ends.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"kargo/internal/http/handlers"
	"kargo/internal/infra"
	"kargo/internal/modules/booking"
	"kargo/internal/modules/feed"
	"kargo/internal/modules/income"
	"kargo/internal/modules/pricing"
	"kargo/internal/modules/profile"
)

const shutdownGrace = 10 * time.Second

// MapsService is the part of maps.RouteService the API uses directly.
type MapsService interface {
	handlers.Router
	handlers.Geocoder
}

type ServerDeps struct {
	Bookings       *booking.Service
	Feed           *feed.Service
	Income         *income.Service
	Pricing        *pricing.Service
	Profiles       *profile.Service
	Maps           MapsService
	Verifier       infra.TokenVerifier
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func NewServer(addr string, deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: deps.Logger,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
