// Package main initializes and starts the elven-keep HTTP server,
// setting up configuration, logging, database connections, repositories,
// services, handlers and the realtime hub.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	nethttp "net/http"

	"github.com/Feaman/elven-keep-server/internal/auth"
	"github.com/Feaman/elven-keep-server/internal/config"
	"github.com/Feaman/elven-keep-server/internal/db"
	"github.com/Feaman/elven-keep-server/internal/logger"
	"github.com/Feaman/elven-keep-server/internal/realtime"
	"github.com/Feaman/elven-keep-server/internal/repository"
	"github.com/Feaman/elven-keep-server/internal/server/handler/http"
	"github.com/Feaman/elven-keep-server/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	tokens, err := auth.NewIssuer(options.JWTSecret, options.TokenTTL)
	if err != nil {
		zapLogger.Fatal("cannot init token issuer", zap.Error(err))
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer func() { _ = postgresDB.Close() }()

	// Initialize repositories.
	repos := service.Repositories{
		Notes:     repository.NewPostgresNoteRepository(postgresDB),
		ListItems: repository.NewPostgresListItemRepository(postgresDB),
		CoAuthors: repository.NewPostgresCoAuthorRepository(postgresDB),
		Users:     repository.NewPostgresUserRepository(postgresDB),
	}
	lookups := repository.NewPostgresLookupRepository(postgresDB)
	statuses := service.NewStatuses(lookups.ListStatuses)
	types := service.NewTypes(lookups.ListTypes)

	// Initialize business-logic services.
	noteService := service.NewNoteService(repos, statuses, types)
	listItemService := service.NewListItemService(repos, statuses, types)
	coAuthorService := service.NewCoAuthorService(repos, statuses, types)
	userService := service.NewUserService(repos.Users)

	// Realtime fan-out.
	hub := realtime.NewHub(zapLogger)
	notifier := realtime.NewNotifier(hub, zapLogger)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Users: &http.UserHandler{
			Users:    userService,
			Tokens:   tokens,
			Notes:    noteService,
			Statuses: statuses,
			Types:    types,
			Log:      zapLogger,
		},
		Notes:     &http.NoteHandler{Notes: noteService, Notifier: notifier, Log: zapLogger},
		ListItems: &http.ListItemHandler{Items: listItemService, Notifier: notifier, Log: zapLogger},
		CoAuthors: &http.CoAuthorHandler{CoAuthors: coAuthorService, Notifier: notifier, Log: zapLogger},
		Realtime:  realtime.NewHandler(hub, options.AllowedOrigins, zapLogger),
	}, tokens, options.AllowedOrigins, zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("starting HTTP server", zap.String("addr", addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
	defer cancel()

	// Websocket connections are hijacked, so Shutdown does not wait for them.
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
