package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/estate-chat/internal/agent"
	"github.com/Rrens/estate-chat/internal/api"
	"github.com/Rrens/estate-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/estate-chat/internal/api/middleware"
	"github.com/Rrens/estate-chat/internal/config"
	"github.com/Rrens/estate-chat/internal/logger"
	"github.com/Rrens/estate-chat/internal/repository/redis"
	"github.com/Rrens/estate-chat/internal/security"
	"github.com/Rrens/estate-chat/internal/service"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("store", cfg.Database.Driver).
		Str("warehouse", cfg.Warehouse.Type).
		Msg("starting estate chat API server")

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ready := map[string]handler.Pinger{"database": st}

	deps := api.Deps{}
	var locker service.SessionLocker
	var schemaCache agent.SchemaCache

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		cache := redis.NewSchemaCache(redisClient)
		schemaCache = cache
		deps.SchemaCache = cache
		deps.Limiter = redis.NewRateLimiter(redisClient, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
		locker = redis.NewSessionLock(redisClient, cfg.Chat.LockTTL)
		ready["redis"] = redisClient
	} else {
		log.Warn().Msg("redis disabled: using in-process rate limiting and session locks")
		deps.Limiter = customMiddleware.NewLocalLimiter(cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
	}

	providers := newProviderRouter(cfg.LLM)
	orchestrator, err := newOrchestrator(cfg, providers, schemaCache)
	if err != nil {
		return err
	}
	defer orchestrator.Shutdown()

	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	deps.JWTManager = jwtManager
	deps.Providers = providers
	deps.Ready = ready
	deps.AuthService = service.NewAuthService(st.users, jwtManager)
	deps.ChatService = service.NewChatService(st.sessions, st.messages, orchestrator, locker, service.ChatConfig{
		DefaultSummary:   cfg.Chat.DefaultSummary,
		SessionListLimit: cfg.Chat.SessionListLimit,
		HistoryLimit:     cfg.Chat.HistoryLimit,
		TurnTimeout:      cfg.Chat.TurnTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Msgf("server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
	return nil
}
