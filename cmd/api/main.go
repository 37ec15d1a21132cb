package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"mangwale-nlu/internal/config"
	"mangwale-nlu/internal/infra/catalog"
	"mangwale-nlu/internal/infra/extractor"
	"mangwale-nlu/internal/infra/modelserve"
	"mangwale-nlu/internal/nlu/intent"
	"mangwale-nlu/internal/observability/logging"
	"mangwale-nlu/internal/observability/tracing"
	"mangwale-nlu/internal/resilience/circuitbreaker"
	enrichUC "mangwale-nlu/internal/usecase/enrich"
	extractUC "mangwale-nlu/internal/usecase/extract"

	hhttp "mangwale-nlu/internal/handler/http"
	hextract "mangwale-nlu/internal/handler/http/extract"
	"mangwale-nlu/internal/handler/http/requestid"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.NewLogger()

	serverCfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Error("failed to load server configuration", slog.Any("error", err))
		os.Exit(1)
	}

	components, err := setupServer(logger, serverCfg)
	if err != nil {
		logger.Error("failed to set up server", slog.Any("error", err))
		os.Exit(1)
	}

	runServer(logger, serverCfg, components)
}

// breakerHolder is satisfied by every breaker-wrapped client in internal/infra.
type breakerHolder interface {
	Breaker() *circuitbreaker.CircuitBreaker
}

// serverComponents holds the assembled handler for the HTTP server.
type serverComponents struct {
	handler http.Handler
}

// setupServer wires the extraction pipeline and returns the HTTP handler with
// all routes and middleware applied.
func setupServer(logger *slog.Logger, serverCfg *config.ServerConfig) (*serverComponents, error) {
	llm, err := buildExtractor(logger)
	if err != nil {
		return nil, err
	}

	modelCfg, err := modelserve.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("model serving configuration: %w", err)
	}
	classifier := modelserve.NewClassifier(modelCfg)
	tagger := modelserve.NewTagger(modelCfg)

	rules, err := loadRules(logger, serverCfg.IntentRulesPath)
	if err != nil {
		return nil, err
	}

	svc := extractUC.NewService(llm, classifier, tagger, intent.New(rules))

	catalogClient, redisClient, err := buildCatalog(logger)
	if err != nil {
		return nil, err
	}
	svc.WithEnricher(enrichUC.NewService(catalogClient))

	breakers := collectBreakers(llm, classifier, tagger, catalogClient)

	mux := http.NewServeMux()
	hextract.Register(mux, svc)
	mux.Handle("/healthz", &hhttp.HealthHandler{
		Version:  serverCfg.Version,
		Breakers: breakers,
		Redis:    redisClient,
	})
	mux.Handle("/readyz", &hhttp.ReadyHandler{})
	mux.Handle("/livez", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	return &serverComponents{
		handler: applyMiddleware(logger, serverCfg, mux),
	}, nil
}

// buildExtractor creates the primary LLM extractor from environment config.
func buildExtractor(logger *slog.Logger) (extractUC.Extractor, error) {
	cfg, err := extractor.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("extractor configuration: %w", err)
	}

	llm, err := extractor.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("extractor provider: %w", err)
	}

	logger.Info("llm extractor configured",
		slog.String("provider", cfg.Provider),
		slog.String("model", cfg.Model))
	return llm, nil
}

// loadRules returns the disambiguation rule tables, reading the YAML override
// file when one is configured.
func loadRules(logger *slog.Logger, path string) (intent.Rules, error) {
	if path == "" {
		return intent.DefaultRules(), nil
	}

	rules, err := intent.LoadRules(path)
	if err != nil {
		return intent.Rules{}, fmt.Errorf("intent rules %s: %w", path, err)
	}
	logger.Info("intent rules loaded from file", slog.String("path", path))
	return rules, nil
}

// buildCatalog creates the catalog search client used for cart enrichment,
// plus the Redis client backing its cache when CATALOG_REDIS_ADDR is set.
func buildCatalog(logger *slog.Logger) (enrichUC.Catalog, *redis.Client, error) {
	cfg, err := catalog.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("catalog configuration: %w", err)
	}

	client, err := catalog.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog client: %w", err)
	}

	var redisClient *redis.Client
	if cached, ok := client.(*catalog.CachedClient); ok {
		redisClient = cached.Redis()
		logger.Info("catalog cache enabled",
			slog.String("redis_addr", cfg.RedisAddr),
			slog.Duration("ttl", cfg.CacheTTL))
	}

	logger.Info("catalog enrichment enabled", slog.String("base_url", cfg.BaseURL))
	return client, redisClient, nil
}

// collectBreakers gathers the circuit breakers of every wired client so the
// health endpoint can report their state.
func collectBreakers(clients ...any) []*circuitbreaker.CircuitBreaker {
	var breakers []*circuitbreaker.CircuitBreaker
	for _, c := range clients {
		if c == nil {
			continue
		}
		if cached, ok := c.(*catalog.CachedClient); ok {
			c = cached.Inner()
		}
		if holder, ok := c.(breakerHolder); ok {
			breakers = append(breakers, holder.Breaker())
		}
	}
	return breakers
}

// applyMiddleware wraps the handler with the middleware chain, outermost
// first: request ID, tracing, logging, metrics, recovery, timeout, body
// limit, per-IP rate limit. Tracing sits outside logging so log entries carry
// the trace ID.
func applyMiddleware(logger *slog.Logger, cfg *config.ServerConfig, handler http.Handler) http.Handler {
	rateLimiter := hhttp.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)

	chain := handler
	chain = rateLimiter.Limit(chain)
	chain = hhttp.LimitRequestBody(cfg.MaxBodyBytes)(chain)
	chain = hhttp.Timeout(cfg.RequestTimeout)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer starts the HTTP server and blocks until shutdown completes.
func runServer(logger *slog.Logger, cfg *config.ServerConfig, components *serverComponents) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
