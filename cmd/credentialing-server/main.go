// cmd/credentialing-server/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"elab-credentialing/internal/application/wizard"
	"elab-credentialing/internal/common/aws"
	"elab-credentialing/internal/common/config"
	"elab-credentialing/internal/common/database"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/common/observability"
	"elab-credentialing/internal/models"
	"elab-credentialing/internal/notify"
	"elab-credentialing/internal/store/draftstore"
	"elab-credentialing/internal/submission"
	"elab-credentialing/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting credentialing server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("credentialing-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS Clients ---
	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SES client init failed", zap.Error(err))
	}
	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SNS client init failed", zap.Error(err))
	}

	templates, err := registry.LoadRegistry(cfg.Notifications.TemplateRegistryPath)
	if err != nil {
		zapLog.Fatal("notification template registry load failed", zap.Error(err))
	}
	zapLog.Info("Notification templates loaded",
		zap.String("version", templates.Version),
		zap.Int("count", len(templates.Templates)),
	)

	// --- Wire Domain Services ---
	pgDrafts, err := draftstore.NewPostgresStore(pg.DB, log)
	if err != nil {
		zapLog.Fatal("draft store init failed", zap.Error(err))
	}
	draftCache := draftstore.NewCache(
		redis.Client,
		time.Duration(cfg.Drafts.CacheTTLSeconds)*time.Second,
		log,
	)
	drafts := draftstore.New(pgDrafts, draftCache, log).WithObservability(obs)

	notifier := notify.NewService(pg.DB, sesClient, snsClient, templates, cfg.Notifications, log)
	indexer := submission.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.Index, log)
	submitter := submission.NewService(pg.DB, indexer, notifier, obs, log)

	sessions := wizard.NewSessionManager(drafts, submitter, 30*time.Minute, log)

	zapLog.Info("All domain services initialized")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sessions.Run(runCtx, 5*time.Minute)

	// --- Metrics, health and ops endpoints ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if err := pg.Ping(r.Context()); err != nil {
				http.Error(w, "postgres unreachable", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})
		mux.HandleFunc("/ops/sessions", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "%d\n", sessions.Len())
		})
		mux.HandleFunc("/ops/applications", func(w http.ResponseWriter, r *http.Request) {
			results, total, err := indexer.Search(r.Context(), submission.SearchFilters{
				Keywords:        r.URL.Query().Get("q"),
				ApplicationType: models.ApplicationType(r.URL.Query().Get("type")),
				Status:          models.ApplicationStatus(r.URL.Query().Get("status")),
			})
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"total":   total,
				"results": results,
			})
		})

		zapLog.Info("metrics server listening", zap.String("address", cfg.Metrics.ListenAddress))
		if err := http.ListenAndServe(cfg.Metrics.ListenAddress, mux); err != nil {
			zapLog.Error("metrics server stopped", zap.Error(err))
		}
	}()

	zapLog.Info("Credentialing server started",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	// --- Graceful shutdown ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	zapLog.Info("Shutting down...", zap.String("signal", sig.String()))
	cancel()
	sessions.SaveAll(context.Background())
}
