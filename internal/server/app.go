// Package server initializes and runs the gateway application: it wires
// configuration, logging, the credential store, the inference relay, and the
// optional translation bridge, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robodoc-one/gateway/internal/logging"
	"github.com/robodoc-one/gateway/internal/server/config"
	"github.com/robodoc-one/gateway/internal/server/httpserver"
	"github.com/robodoc-one/gateway/internal/server/relay"
	"github.com/robodoc-one/gateway/internal/server/services"
	"github.com/robodoc-one/gateway/internal/server/shared/db"
	"github.com/robodoc-one/gateway/internal/server/translate"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *services.UserService
	relayClient *relay.Client
	bridge      *translate.Bridge
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	level := slog.LevelInfo
	if cfg.Env == "development" {
		level = slog.LevelDebug
	}
	sl := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	logger := logging.NewSlogLogger(sl)

	m, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := services.NewUserService(m.Users(), cfg)
	rc := relay.NewClient(cfg.InferenceBaseURL, cfg.RelayTimeout, logger)

	// The bridge is a reusable utility; the relay path does not call it.
	var bridge *translate.Bridge
	if cfg.GoogleProjectID != "" {
		bridge, err = translate.NewBridge(ctx, cfg.GoogleProjectID, cfg.GoogleCredentialsFile, logger)
		if err != nil {
			return nil, fmt.Errorf("translation bridge init error: %w", err)
		}
	}

	return &App{
		config:      cfg,
		logger:      logger,
		userService: us,
		relayClient: rc,
		bridge:      bridge,
	}, nil
}

// Bridge exposes the translation bridge, or nil when no provider is
// configured.
func (app *App) Bridge() *translate.Bridge {
	return app.bridge
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpserver.New(app.config.EndpointAddr, httpserver.Deps{
		Auth:   app.userService,
		Relay:  app.relayClient,
		Logger: app.logger,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
