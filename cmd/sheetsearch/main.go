package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/worshipdeck/sheetsearch/internal/config"
	dbRedis "github.com/worshipdeck/sheetsearch/internal/db/redis"
	"github.com/worshipdeck/sheetsearch/internal/domain"
	logpkg "github.com/worshipdeck/sheetsearch/internal/logger"
	"github.com/worshipdeck/sheetsearch/internal/metrics"
	"github.com/worshipdeck/sheetsearch/internal/repository/embcache"
	"github.com/worshipdeck/sheetsearch/internal/repository/respcache"
	songsrepo "github.com/worshipdeck/sheetsearch/internal/repository/songs"
	chiTransport "github.com/worshipdeck/sheetsearch/internal/transport/chi"
	openaiTransport "github.com/worshipdeck/sheetsearch/internal/transport/openai"
	"github.com/worshipdeck/sheetsearch/internal/transport/rerankhttp"
	classifyuc "github.com/worshipdeck/sheetsearch/internal/usecase/classify"
	healthuc "github.com/worshipdeck/sheetsearch/internal/usecase/health"
	rerankuc "github.com/worshipdeck/sheetsearch/internal/usecase/rerank"
	responduc "github.com/worshipdeck/sheetsearch/internal/usecase/respond"
	retrieveuc "github.com/worshipdeck/sheetsearch/internal/usecase/retrieve"
	"github.com/worshipdeck/sheetsearch/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sheetsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create sheet store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Sheet store not ready", zap.Error(err))
	}
	logger.Info("Connected to sheet store")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedder chain: OpenAI -> cached. Absent entirely when no key is
	// configured; the pipeline then skips the semantic adapter.
	var queryEmbedder retrieveuc.Embedder
	var embHealth healthuc.EmbeddingChecker
	if cfg.Embedding.APIKey != "" {
		base := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
		var provider domain.Embedder = base
		if cfg.Embedding.QueryPrefix != "" {
			provider = domain.NewInstructionEmbedder(base, cfg.Embedding.QueryPrefix)
		}
		queryEmbedder = embcache.New(
			provider, store, cfg.Storage.KeyPrefix,
			time.Duration(cfg.Embedding.CacheTTLHr)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
		embHealth = base
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Info("No embedding provider configured, semantic adapter disabled")
	}

	songs := songsrepo.New(store, cfg.Storage.IndexName, cfg.Storage.KeyPrefix, cfg.Storage.AliasKey)

	respCache := respcache.New(
		store, cfg.Storage.KeyPrefix,
		time.Duration(cfg.Search.CacheTTLSec)*time.Second,
		metrics.ResponseCacheTotal, logger,
	)

	// Rerank cascade from configured stages, in priority order.
	stages := make([]rerankuc.Stage, 0, len(cfg.Rerank.Stages))
	probes := make([]healthuc.RerankProbe, 0, len(cfg.Rerank.Stages))
	for _, sc := range cfg.Rerank.Stages {
		client := rerankhttp.New(&rerankhttp.Config{
			Name:     sc.Name,
			Endpoint: sc.Endpoint,
			APIKey:   sc.APIKey,
			Model:    sc.Model,
			Timeout:  time.Duration(cfg.Rerank.TimeoutSec) * time.Second,
			Logger:   logger,
		})
		stages = append(stages, client)
		probes = append(probes, client)
	}
	cascade := rerankuc.New(stages, time.Duration(cfg.Rerank.TimeoutSec)*time.Second)

	searchSvc := retrieveuc.New(
		songs, classifyuc.New(), queryEmbedder, cascade, respCache,
		retrieveuc.Options{
			AdapterLimit:        cfg.Search.AdapterLimit,
			PoolLimit:           cfg.Search.PoolLimit,
			FuzzyMinSimilarity:  cfg.Search.FuzzyMinSimilarity,
			VectorMinSimilarity: cfg.Search.VectorMinSimilarity,
			AdapterTimeout:      time.Duration(cfg.Search.AdapterTimeoutSec) * time.Second,
			RerankTopN:          cfg.Rerank.TopN,
			DisplayCount:        cfg.Search.DisplayCount,
		},
	)

	// Pass nil interface (not typed nil pointer!) if the LLM is not configured.
	var generator responduc.Generator
	if chat := openaiTransport.NewChat(&openaiTransport.ChatConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Logger:  logger,
	}); chat != nil {
		generator = chat
	}
	assembler := responduc.New(generator)

	healthSvc := healthuc.New(store, embHealth, probes)

	server := chiTransport.NewServer(searchSvc, assembler, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
