package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medbook-ai/scheduling-agent/cmd/mainconfig"
	"github.com/medbook-ai/scheduling-agent/internal/agent"
	"github.com/medbook-ai/scheduling-agent/internal/api/router"
	"github.com/medbook-ai/scheduling-agent/internal/calendar"
	"github.com/medbook-ai/scheduling-agent/internal/chat"
	appconfig "github.com/medbook-ai/scheduling-agent/internal/config"
	"github.com/medbook-ai/scheduling-agent/internal/observability/metrics"
	"github.com/medbook-ai/scheduling-agent/internal/scheduling"
	"github.com/medbook-ai/scheduling-agent/internal/session"
	"github.com/medbook-ai/scheduling-agent/pkg/logging"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	if cfg.Env == "development" {
		logger = logging.NewText(cfg.LogLevel)
	}
	logger.Info("starting scheduling-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
	)

	ctx := context.Background()

	store, err := buildCalendarStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize calendar store", "error", err)
		os.Exit(1)
	}

	engine := scheduling.NewEngine(store, scheduling.DefaultTypeCatalog())

	decider, err := buildDecisionMaker(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize decision-maker", "error", err)
		os.Exit(1)
	}

	agentMetrics := metrics.NewAgentMetrics(nil)

	loop := agent.NewLoop(engine, decider, logger,
		agent.WithMaxRounds(cfg.MaxToolRounds),
		agent.WithMetrics(agentMetrics),
	)

	sessions := buildSessionStore(cfg, logger)
	chatService := chat.NewService(loop, sessions, logger, agentMetrics)

	routerCfg := &router.Config{
		Logger:            logger,
		ChatHandler:       chat.NewHandler(chatService, logger),
		SchedulingHandler: scheduling.NewHandler(engine, store, logger),
		MetricsHandler:    promhttp.Handler(),
		AdminAuthSecret:   cfg.AdminJWTSecret,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

var errNoDecisionMaker = errors.New("no decision-maker configured: set BEDROCK_MODEL_ID or GEMINI_API_KEY")

func buildCalendarStore(ctx context.Context, cfg *appconfig.Config) (calendar.Store, error) {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return calendar.NewPostgresStore(pool), nil
	case "memory":
		return calendar.NewMemoryStoreFromFile(cfg.ScheduleFile)
	default:
		return calendar.NewFileStore(cfg.ScheduleFile)
	}
}

func buildDecisionMaker(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (agent.DecisionMaker, error) {
	var gemini agent.DecisionMaker
	if cfg.GeminiAPIKey != "" {
		g, err := agent.NewGeminiDecisionMaker(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, err
		}
		gemini = g
	}

	if cfg.BedrockModelID == "" {
		if gemini == nil {
			return nil, errNoDecisionMaker
		}
		logger.Info("no bedrock model configured, using gemini as the only decision-maker")
		return gemini, nil
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	bedrock, err := agent.NewBedrockDecisionMaker(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
	if err != nil {
		return nil, err
	}

	return agent.NewFallbackDecisionMaker(bedrock, gemini, logger.Logger), nil
}

func buildSessionStore(cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if cfg.RedisAddr == "" {
		logger.Info("no redis configured, using in-memory session store")
		return session.NewMemoryStore()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return session.NewRedisStore(redis.NewClient(opts), nil)
}
