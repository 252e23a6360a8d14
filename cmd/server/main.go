package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/vedran77/syncspace/internal/access"
	"github.com/vedran77/syncspace/internal/config"
	"github.com/vedran77/syncspace/internal/database"
	"github.com/vedran77/syncspace/internal/identity"
	"github.com/vedran77/syncspace/internal/realtime"
	"github.com/vedran77/syncspace/internal/repository"
	memoryrepo "github.com/vedran77/syncspace/internal/repository/memory"
	postgresrepo "github.com/vedran77/syncspace/internal/repository/postgres"
	"github.com/vedran77/syncspace/internal/service"
	"github.com/vedran77/syncspace/internal/transport/http/handlers"
	"github.com/vedran77/syncspace/internal/transport/http/middleware"
	"github.com/vedran77/syncspace/internal/transport/ws"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	rooms         repository.RoomRepository
	messages      repository.MessageRepository
	notifications repository.NotificationRepository
	membership    access.Membership
	close         func()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// Access
	validator := access.NewValidator(st.membership, st.rooms)
	extractor := identity.NewExtractor(cfg.JWTSecret, cfg.HubPaths, logger)

	// Realtime core
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, logger)
	notifier := ws.NewHubNotifier(dispatcher)

	// Services
	chatService := service.NewChatService(st.rooms, st.messages, validator, service.ChatConfig{
		HistoryLimit: cfg.HistoryDefaultLimit,
		DeletePolicy: service.DeletePolicy(cfg.DeletePolicy),
	}, logger)
	chatService.SetNotifier(notifier)

	notificationService := service.NewNotificationService(st.notifications, logger)
	notificationService.SetNotifier(notifier)

	manager := realtime.NewManager(registry, dispatcher, validator, chatService, logger)

	// Handlers
	wsHandler := ws.NewHandler(manager, extractor, ws.Options{
		OriginPatterns: originPatterns(cfg.CORSOrigins),
		SendBufferSize: cfg.SendBufferSize,
	}, logger)

	if cfg.ServiceKey == "" {
		logger.Warn("SERVICE_KEY is empty, internal endpoints are disabled")
	}

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// WebSocket hubs, the first hub path serves chat and the second notifications
	chatPath, notificationPath := hubPaths(cfg.HubPaths)
	mux.HandleFunc("GET "+chatPath, wsHandler.ServeChat)
	mux.HandleFunc("GET "+notificationPath, wsHandler.ServeNotifications)

	handlers.Routes{
		Auth:          middleware.Auth(extractor),
		ServiceKey:    middleware.ServiceKey(cfg.ServiceKey),
		Chat:          handlers.NewChatHandler(chatService, validator, logger),
		Notifications: handlers.NewNotificationHandler(notificationService, logger),
		Internal:      handlers.NewInternalHandler(notificationService, manager, logger),
	}.Register(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: middleware.Logging(logger, middleware.CORS(cfg.CORSOrigins, mux)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", server.Addr, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by the server.
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("closing sessions", "error", err)
		}
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		return &stores{
			rooms:         memoryrepo.NewRoomRepo(),
			messages:      memoryrepo.NewMessageRepo(),
			notifications: memoryrepo.NewNotificationRepo(),
			membership:    memoryrepo.NewMembership(),
			close:         func() {},
		}, nil
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database")

	return &stores{
		rooms:         postgresrepo.NewRoomRepo(pool),
		messages:      postgresrepo.NewMessageRepo(pool),
		notifications: postgresrepo.NewNotificationRepo(pool),
		membership:    postgresrepo.NewMembershipRepo(pool),
		close:         pool.Close,
	}, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func hubPaths(paths []string) (chat, notifications string) {
	chat, notifications = "/chatHub", "/notificationHub"
	if len(paths) > 0 {
		chat = paths[0]
	}
	if len(paths) > 1 {
		notifications = paths[1]
	}
	return chat, notifications
}
