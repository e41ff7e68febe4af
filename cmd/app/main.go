package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meeting-brief-service/internal/config"
	"meeting-brief-service/internal/domain/ports/adapter"
	"meeting-brief-service/internal/domain/ports/repository"
	"meeting-brief-service/internal/extract"
	aiAdapters "meeting-brief-service/internal/infra/adapters/ai"
	calAdapter "meeting-brief-service/internal/infra/adapters/calendar"
	pg "meeting-brief-service/internal/infra/db/postgres"
	"meeting-brief-service/internal/infra/logging"
	"meeting-brief-service/internal/infra/metrics"
	red "meeting-brief-service/internal/infra/redis"
	"meeting-brief-service/internal/infra/web"
	"meeting-brief-service/internal/infra/worker"
	"meeting-brief-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop AI fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis (optional) ----
	var (
		briefCache usecase.BriefCache
		tokenCache repository.TokenCache = calAdapter.NewMemoryTokenCache()
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		briefCache = red.NewBriefCache(redisClient, cfg.Redis.TTL)
		tokenCache = red.NewTokenCache(redisClient)
	}

	// ---- Repositories ----
	jobRepo := pg.NewJobRepo(pool)
	briefRepo := pg.NewBriefRepo(pool)
	meetingRepo := pg.NewMeetingRepo(pool)
	documentRepo := pg.NewDocumentRepo(pool)
	analyticsRepo := pg.NewAnalyticsRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- AI Adapter (compat gateway -> Gemini -> OpenAI) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.CompatKey != "":
		ai, err = aiAdapters.NewCompatAdapter(cfg.AI.CompatKey, cfg.AI.DefaultModel, cfg.AI.CompatBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("compat adapter")
		}
		logger.Info().Str("base", cfg.AI.CompatBaseURL).Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI-compatible gateway")
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev mode, no provider configured)")
	default:
		logger.Fatal().Msg("no AI provider configured")
	}

	// ---- Calendar (optional) ----
	var calendar adapter.CalendarAdapter
	if cfg.Calendar.ClientID != "" {
		calendar, err = calAdapter.NewGoogleCalendarAdapter(cfg.Calendar, tokenCache, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("calendar adapter")
		}
	}

	// ---- Use cases ----
	extractor := extract.NewExtractor(logger)
	generator, err := usecase.NewBriefGenerator(ai, cfg.AI.DefaultModel, cfg.Brief, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("brief generator")
	}
	submitUC := usecase.NewSubmissionUseCase(jobRepo, extractor, calendar, cfg.Brief, logger)
	queryUC := usecase.NewQueryUseCase(jobRepo, briefRepo, meetingRepo, briefCache, logger)

	// ---- Workers ----
	processor := worker.NewBriefJobProcessor(jobRepo, briefRepo, meetingRepo, documentRepo, analyticsRepo, txManager, generator, logger)
	workerPool := worker.NewPool(cfg.Server.Workers, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()
	go processor.Run(ctx, workerPool, 5*time.Second)

	// ---- HTTP ----
	server := web.NewServer(submitUC, queryUC, workerPool, processor, cfg.Brief, logger)
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
