// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"advisor-ai/internal/app"
	"advisor-ai/internal/common/camunda"
	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/common/observability"

	analyzeemail "advisor-ai/internal/workers/advisor/analyze-email"
	categorizeemail "advisor-ai/internal/workers/advisor/categorize-email"
	generateresponse "advisor-ai/internal/workers/advisor/generate-response"
	generatesummary "advisor-ai/internal/workers/advisor/generate-summary"
)

func main() {
	bootLog := logger.New("info", "console")
	bootLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.App, cfg.Observability)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	obs := observability.New("worker-manager", log)

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = app.RetryWithBackoff(ctx, func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	if len(cfg.Camunda.DeployResources) > 0 {
		processes, err := zeebe.DeployResources(ctx, cfg.Camunda.DeployResources...)
		if err != nil {
			// Workers still serve processes deployed elsewhere.
			log.Warn("BPMN deployment failed", map[string]interface{}{
				"resources": cfg.Camunda.DeployResources,
				"error":     err.Error(),
			})
		}
		for _, p := range processes {
			log.Info("BPMN process deployed", map[string]interface{}{
				"bpmnProcessId": p.BpmnProcessID,
				"version":       p.Version,
				"resource":      p.ResourceName,
			})
		}
	}

	infra, err := app.Connect(ctx, cfg, app.Options{}, log)
	if err != nil {
		zapLog.Fatal("infrastructure init failed", zap.Error(err))
	}
	defer infra.Close()

	services := app.NewServices(cfg, infra, log)
	zbc := zeebe.GetClient()

	// --- Register advisor workers ---
	workers := []*camunda.CamundaWorker{
		camunda.StartWorker(zbc, generateresponse.TaskType,
			config.GetWorkerConfig(cfg, generateresponse.TaskType),
			generateresponse.NewHandler(generateresponse.HandlerOptions{
				AppConfig: cfg,
				Service:   services.Generate,
				Logger:    log,
			}), obs, log),
		camunda.StartWorker(zbc, categorizeemail.TaskType,
			config.GetWorkerConfig(cfg, categorizeemail.TaskType),
			categorizeemail.NewHandler(categorizeemail.HandlerOptions{
				AppConfig: cfg,
				Service:   services.Categorize,
				Logger:    log,
			}), obs, log),
		camunda.StartWorker(zbc, generatesummary.TaskType,
			config.GetWorkerConfig(cfg, generatesummary.TaskType),
			generatesummary.NewHandler(generatesummary.HandlerOptions{
				AppConfig: cfg,
				Service:   services.Summarize,
				Logger:    log,
			}), obs, log),
		camunda.StartWorker(zbc, analyzeemail.TaskType,
			config.GetWorkerConfig(cfg, analyzeemail.TaskType),
			analyzeemail.NewHandler(analyzeemail.HandlerOptions{
				AppConfig: cfg,
				Service:   services.Analyze,
				Logger:    log,
			}), obs, log),
	}
	zapLog.Info("Advisor workers registered")

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if err := infra.Postgres.Ping(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := cfg.Server.MetricsPort
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down metrics", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down tracing", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
