// cmd/advisor-api/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advisor-ai/internal/api"
	"advisor-ai/internal/app"
	"advisor-ai/internal/common/auth"
	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/gmail"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/common/observability"
	"advisor-ai/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.App, cfg.Observability)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	obs := observability.New(cfg.Observability.ServiceName, log)

	needRedis := cfg.Server.Session.Store == "redis" || cfg.Server.RateLimit.Enabled
	infra, err := app.Connect(ctx, cfg, app.Options{Redis: needRedis, Mail: true}, log)
	if err != nil {
		zapLog.Fatal("infrastructure init failed", zap.Error(err))
	}
	defer infra.Close()

	sessions, err := session.NewFromConfig(cfg.Server.Session, infra.Redis)
	if err != nil {
		zapLog.Fatal("session store init failed", zap.Error(err))
	}

	services := app.NewServices(cfg, infra, log)
	repos := infra.Repos

	deps := api.Dependencies{
		Config:        cfg,
		Logger:        log,
		Sessions:      sessions,
		Gmail:         gmail.NewClient(cfg.Auth.Google, log, gmail.WithHTTPClient(infra.HTTP.HTTPClient())),
		Observability: obs,

		Generate:         services.Generate,
		Summarize:        services.Summarize,
		Categorize:       services.Categorize,
		Analyze:          services.Analyze,
		AnalysisResponse: services.AnalysisResponse,

		Clients:   services.Clients,
		Responses: services.Responses,
		Notes:     repos.Notes,
		Tasks:     repos.Tasks,
		Documents: repos.Documents,
		Summaries: repos.Summaries,
		Prompts:   repos.Prompts,
		Analyses:  repos.Analyses,

		Checks: map[string]api.Check{
			"postgres": infra.Postgres.Ping,
		},
	}

	if verifier, err := auth.NewVerifier(cfg.Auth.Supabase); err != nil {
		log.Warn("advisor authentication disabled", map[string]interface{}{"error": err.Error()})
	} else {
		deps.Verifier = verifier
	}
	if infra.Redis != nil {
		deps.Redis = infra.Redis.Client
		deps.Checks["redis"] = infra.Redis.Ping
	}
	if infra.Search != nil {
		deps.Checks["elasticsearch"] = infra.Search.Ping
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("advisor API listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, draining requests", nil)

	timeout := config.GetDuration(cfg.Server.ShutdownTimeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("advisor API stopped", nil)
}
