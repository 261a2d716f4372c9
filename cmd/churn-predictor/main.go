// cmd/churn-predictor/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"churn-predictor/internal/collector"
	"churn-predictor/internal/common/classifier"
	"churn-predictor/internal/common/config"
	"churn-predictor/internal/common/display"
	apperrors "churn-predictor/internal/common/errors"
	"churn-predictor/internal/common/export"
	"churn-predictor/internal/common/logger"
	"churn-predictor/internal/common/metrics"
	"churn-predictor/internal/common/observability"
	"churn-predictor/internal/models"
	buildfeaturevector "churn-predictor/internal/pipeline/build-feature-vector"
	predictchurn "churn-predictor/internal/pipeline/predict-churn"
	presentresult "churn-predictor/internal/pipeline/present-result"
	"churn-predictor/internal/pipeline/session"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("churn-predictor", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 1
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)
	reporter := apperrors.NewErrorReporter(log)

	zapLog.Info("Starting churn predictor...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.Bool("interactive", cfg.Session.Interactive),
	)

	console := display.NewConsole(os.Stdout, cfg.Session.Interactive)
	schema := models.ChurnSchema()

	// --- Load the classifier once; nothing is offered without it ---
	clf, err := classifier.LoadFromFile(cfg.Model.Path, schema)
	if err != nil {
		stdErr := reporter.Report("", err)
		console.Error(string(stdErr.Code), stdErr.Message, stdErr.Details)
		return 1
	}
	zapLog.Info("Classifier loaded", zap.String("path", cfg.Model.Path))

	// --- Metrics and tracing ---
	m := metrics.New(nil)
	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	if cfg.Metrics.Address != "" {
		srv := startMetricsServer(cfg.Metrics.Address, zapLog)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Input collection ---
	var (
		coll   collector.Collector
		driver *collector.SurveyDriver
	)
	if cfg.Session.Interactive {
		driver = collector.NewSurveyDriver()
		interactive := collector.NewInteractive(schema, driver, log)
		if cfg.Session.ProfilePath != "" {
			values, err := collector.LoadProfile(cfg.Session.ProfilePath, schema)
			if err != nil {
				stdErr := reporter.Report("", err)
				console.Error(string(stdErr.Code), stdErr.Message, stdErr.Details)
				return 1
			}
			interactive.Prefill(values)
		}
		coll = interactive
	} else {
		coll = collector.NewProfile(cfg.Session.ProfilePath, schema)
	}

	// --- Pipeline ---
	var exporter session.Exporter
	if cfg.Export.Enabled {
		exporter = export.NewWriter(nil, cfg.Export.Dir, cfg.Export.Filename)
		zapLog.Info("Export enabled", zap.String("path", cfg.ExportPath()))
	}
	presenterCfg := presentresult.LoadConfig()
	presenterCfg.FileName = cfg.Export.Filename

	sess, err := session.New(session.Options{
		Config:    session.LoadConfig(cfg),
		Collector: coll,
		Builder:   buildfeaturevector.NewHandler(&buildfeaturevector.Config{Schema: schema}, log),
		Predictor: predictchurn.NewHandler(predictchurn.HandlerOptions{
			Config:        &predictchurn.Config{Schema: schema},
			Classifier:    clf,
			Metrics:       m,
			Observability: obs,
			Logger:        log,
		}),
		Presenter: presentresult.NewHandler(presenterCfg, log),
		Exporter:  exporter,
		Display:   console,
		Metrics:   m,
		Logger:    log,
	})
	if err != nil {
		stdErr := reporter.Report("", err)
		console.Error(string(stdErr.Code), stdErr.Message, stdErr.Details)
		return 1
	}

	if !cfg.Session.Interactive {
		out, err := sess.RunOnce(ctx)
		if err != nil || out.Failed() {
			return 1
		}
		return 0
	}

	console.Banner()
	for {
		_, err := sess.RunOnce(ctx)
		switch {
		case errors.Is(err, collector.ErrAborted), errors.Is(err, context.Canceled):
			zapLog.Info("Session ended by operator")
			return 0
		case errors.Is(err, collector.ErrNotTriggered):
		case err != nil:
			zapLog.Error("Session failed", zap.Error(err))
			return 1
		}

		again, err := driver.Confirm(ctx, collector.ConfirmConfig{
			Message: "Analyze another customer?",
			Default: true,
		})
		if err != nil || !again {
			zapLog.Info("Session ended by operator")
			return 0
		}
	}
}

func startMetricsServer(addr string, zapLog *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
