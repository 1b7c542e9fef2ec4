// Package httpserver exposes the gateway's REST surface: registration and
// login, the authenticated chat relay, and the image-prediction relays.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/robodoc-one/gateway/internal/logging"
	"github.com/robodoc-one/gateway/internal/server/models"
)

// AuthService is the authentication surface the handlers depend on.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ResolveUser(ctx context.Context, token string) (*models.User, error)
}

// RelayClient forwards requests to the external inference backend.
type RelayClient interface {
	Chat(ctx context.Context, message, language string) (string, error)
	Predict(ctx context.Context, fileBytes []byte, filename, contentType string) (json.RawMessage, error)
}

// Deps bundles the collaborators injected into the handler.
type Deps struct {
	Auth   AuthService
	Relay  RelayClient
	Logger logging.Logger
}

type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

func New(addr string, deps Deps) *Server {
	handler := NewHandler(deps)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: deps.Logger.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
