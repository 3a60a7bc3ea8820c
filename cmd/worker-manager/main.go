// cmd/worker-manager/main.go
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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"studyabroad-workers/internal/common/camunda"
	"studyabroad-workers/internal/common/catalog"
	"studyabroad-workers/internal/common/config"
	"studyabroad-workers/internal/common/database"
	"studyabroad-workers/internal/common/logger"
	"studyabroad-workers/internal/common/mlservice"
	"studyabroad-workers/internal/common/observability"

	// Profile Workers (1)
	vp "studyabroad-workers/internal/workers/profile/validate-profile"

	// Recommendation & Prediction Workers (4)
	er "studyabroad-workers/internal/workers/recommendation/explain-recommendation"
	gr "studyabroad-workers/internal/workers/recommendation/generate-recommendations"
	pa "studyabroad-workers/internal/workers/recommendation/predict-admission"
	pab "studyabroad-workers/internal/workers/recommendation/predict-admission-batch"

	// Cost Workers (2)
	ac "studyabroad-workers/internal/workers/cost/analyze-costs"
	pct "studyabroad-workers/internal/workers/cost/project-cost-trends"

	// Data Access Workers (2)
	qe "studyabroad-workers/internal/workers/data-access/query-elasticsearch"
	qp "studyabroad-workers/internal/workers/data-access/query-postgresql"

	// Records & Communication Workers (2)
	sn "studyabroad-workers/internal/workers/communication/send-notification"
	srr "studyabroad-workers/internal/workers/records/save-recommendation-record"

	// Infrastructure Workers (1)
	br "studyabroad-workers/internal/workers/infrastructure/build-response"
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

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	tracing := observability.NewTracing("worker-manager", os.Getenv("JAEGER_COLLECTOR_URL"))
	defer tracing.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var brokerClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		brokerClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         30 * time.Second,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := brokerClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
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
		// Test the connection
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
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Domain Services ---
	store := catalog.NewPostgresStore(pg.DB, redis.Client, 10*time.Minute, log)

	// The HTTP model client is used when a model service is configured,
	// otherwise scoring falls back to the built-in heuristic.
	var scorer mlservice.Scorer
	if cfg.MLService.BaseURL != "" {
		scorer = mlservice.NewClient(cfg.MLService, log)
		zapLog.Info("Using remote admission model", zap.String("baseURL", cfg.MLService.BaseURL))
	} else {
		scorer = mlservice.NewHeuristicScorer()
		zapLog.Info("No model service configured, using heuristic scorer")
	}

	predictor := mlservice.NewSinglePredictor(scorer, store, cfg.Recommendation, log)

	zapLog.Info("Domain services initialized")

	// --- START: Register ALL 12 Workers ---

	// --- 1. Profile Workers (1) ---
	if cfg.Workers[vp.TaskType].Enabled {
		handler := vp.NewHandler(
			&vp.Config{
				Timeout:               time.Duration(cfg.Workers[vp.TaskType].Timeout) * time.Millisecond,
				MaxPreferredCountries: cfg.Recommendation.MaxPreferredCountries,
			},
			log,
		)
		startWorker(zeebeClient, vp.TaskType, cfg.Workers[vp.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Recommendation & Prediction Workers (4) ---
	if cfg.Workers[pa.TaskType].Enabled {
		handler := pa.NewHandler(
			&pa.Config{
				Timeout:               time.Duration(cfg.Workers[pa.TaskType].Timeout) * time.Millisecond,
				MaxPreferredCountries: cfg.Recommendation.MaxPreferredCountries,
			},
			predictor, log,
		)
		startWorker(zeebeClient, pa.TaskType, cfg.Workers[pa.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[pab.TaskType].Enabled {
		handler := pab.NewHandler(
			&pab.Config{
				Timeout:               time.Duration(cfg.Workers[pab.TaskType].Timeout) * time.Millisecond,
				Concurrency:           cfg.Recommendation.BatchConcurrency,
				MaxPreferredCountries: cfg.Recommendation.MaxPreferredCountries,
			},
			predictor, log,
		)
		startWorker(zeebeClient, pab.TaskType, cfg.Workers[pab.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[gr.TaskType].Enabled {
		handler := gr.NewHandler(
			&gr.Config{
				Timeout:        time.Duration(cfg.Workers[gr.TaskType].Timeout) * time.Millisecond,
				Concurrency:    cfg.Recommendation.BatchConcurrency,
				Recommendation: cfg.Recommendation,
			},
			store, predictor, log,
		)
		startWorker(zeebeClient, gr.TaskType, cfg.Workers[gr.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[er.TaskType].Enabled {
		handler := er.NewHandler(
			&er.Config{
				Timeout:               time.Duration(cfg.Workers[er.TaskType].Timeout) * time.Millisecond,
				MaxPreferredCountries: cfg.Recommendation.MaxPreferredCountries,
			},
			store, predictor, log,
		)
		startWorker(zeebeClient, er.TaskType, cfg.Workers[er.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Cost Workers (2) ---
	if cfg.Workers[ac.TaskType].Enabled {
		handler := ac.NewHandler(
			&ac.Config{
				Timeout:               time.Duration(cfg.Workers[ac.TaskType].Timeout) * time.Millisecond,
				MaxPreferredCountries: cfg.Recommendation.MaxPreferredCountries,
				Cost:                  cfg.Cost,
			},
			store, log,
		)
		startWorker(zeebeClient, ac.TaskType, cfg.Workers[ac.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[pct.TaskType].Enabled {
		handler := pct.NewHandler(
			&pct.Config{
				Timeout: time.Duration(cfg.Workers[pct.TaskType].Timeout) * time.Millisecond,
				Cost:    cfg.Cost,
			},
			store, log,
		)
		startWorker(zeebeClient, pct.TaskType, cfg.Workers[pct.TaskType], handler.Handle, zapLog)
	}

	// --- 4. Data Access Workers (2) ---
	if cfg.Workers[qp.TaskType].Enabled {
		handler := qp.NewHandler(
			&qp.Config{
				Timeout: time.Duration(cfg.Workers[qp.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, qp.TaskType, cfg.Workers[qp.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[qe.TaskType].Enabled {
		handler := qe.NewHandler(
			&qe.Config{
				Timeout: time.Duration(cfg.Workers[qe.TaskType].Timeout) * time.Millisecond,
			},
			esClient.Client, log,
		)
		startWorker(zeebeClient, qe.TaskType, cfg.Workers[qe.TaskType], handler.Handle, zapLog)
	}

	// --- 5. Records & Communication Workers (2) ---
	if cfg.Workers[srr.TaskType].Enabled {
		handler := srr.NewHandler(
			&srr.Config{
				Timeout: time.Duration(cfg.Workers[srr.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, srr.TaskType, cfg.Workers[srr.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sn.TaskType].Enabled {
		handler, err := sn.NewHandler(
			&sn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[sn.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-notification handler", zap.Error(err))
		}
		startWorker(zeebeClient, sn.TaskType, cfg.Workers[sn.TaskType], handler.Handle, zapLog)
	}

	// --- 6. Infrastructure Workers (1) ---
	if cfg.Workers[br.TaskType].Enabled {
		handler := br.NewHandler(
			&br.Config{
				TemplateRegistry: cfg.Response.TemplateRegistry,
				CacheTTL:         time.Duration(cfg.Response.CacheTTLSeconds) * time.Second,
				AppVersion:       cfg.App.Version,
				Timeout:          time.Duration(cfg.Workers[br.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(zeebeClient, br.TaskType, cfg.Workers[br.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 12 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := brokerClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_ = shutdownCtx

	if err := brokerClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
