package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/juris-comb/app/alert"
	"github.com/lysyi3m/juris-comb/app/api"
	"github.com/lysyi3m/juris-comb/app/cfg"
	"github.com/lysyi3m/juris-comb/app/classify"
	"github.com/lysyi3m/juris-comb/app/database"
	"github.com/lysyi3m/juris-comb/app/delivery"
	"github.com/lysyi3m/juris-comb/app/export"
	"github.com/lysyi3m/juris-comb/app/insight"
	"github.com/lysyi3m/juris-comb/app/novelty"
	"github.com/lysyi3m/juris-comb/app/similarity"
	"github.com/lysyi3m/juris-comb/app/source"
	"github.com/lysyi3m/juris-comb/app/tasks"
	"github.com/lysyi3m/juris-comb/app/telemetry"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	if err := run(appCfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Juris Comb server", "version", appCfg.Version)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, appCfg.OTLPEndpoint, "juris-comb", appCfg.Version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Error("Tracing shutdown error", "error", err)
		}
	}()

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	slog.Info("Connected to database", "path", appCfg.DBPath)

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	table, err := loadThemeTable(appCfg.ThemesFile)
	if err != nil {
		return err
	}

	configCache := source.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load source configurations: %w", err)
	}
	slog.Info("Source configurations loaded", "dir", appCfg.SourcesDir, "count", configCache.GetConfigCount())

	rulingRepo := database.NewRulingRepository(db)
	runRepo := database.NewCycleRunRepository(db)
	subscriptionService := alert.NewService(database.NewSubscriptionRepository(db))

	noveltyCache, err := novelty.Open(ctx, database.NewNoveltyRepository(db))
	if err != nil {
		return fmt.Errorf("failed to open novelty cache: %w", err)
	}
	slog.Info("Novelty cache loaded", "keys", noveltyCache.Len())

	transport, err := newTransport(appCfg)
	if err != nil {
		return err
	}

	classifier := classify.New(table)

	cycle := tasks.NewCycle(tasks.CycleDeps{
		Collector:     source.NewCollector(configCache, appCfg.UserAgent),
		Cache:         noveltyCache,
		Classifier:    classifier,
		Matcher:       alert.NewMatcher(),
		Subscriptions: subscriptionService,
		Transport:     transport,
		Rulings:       rulingRepo,
		Runs:          runRepo,
		WorkerCount:   appCfg.WorkerCount,
	})

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(cycle, configCache,
		time.Duration(appCfg.SchedulerInterval)*time.Second, appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	exporter := export.NewExporter(export.NewChromiumPDFRenderer(appCfg.ChromePath), export.Channel{
		Title:       "Jurisprudência TCU",
		Link:        appCfg.BaseUrl,
		SelfLink:    appCfg.BaseUrl + "/api/export",
		Description: "Acórdãos do TCU classificados por tema e relevância",
		Generator:   "Juris Comb " + appCfg.Version,
	})

	handler := api.NewHandler(rulingRepo, runRepo, subscriptionService, classifier,
		similarity.NewRanker(), exporter, insight.NewGenerator(), configCache, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return nil
}

func loadThemeTable(path string) (*classify.Table, error) {
	if path == "" {
		return classify.DefaultTable()
	}
	table, err := classify.LoadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load theme table: %w", err)
	}
	slog.Info("Theme table loaded", "path", path)
	return table, nil
}

func newTransport(appCfg *cfg.Cfg) (delivery.Transport, error) {
	if !appCfg.SMTPEnabled() {
		slog.Warn("SMTP not configured, alerts will only be logged")
		return delivery.NewLogTransport(), nil
	}

	transport, err := delivery.NewEmailTransport(delivery.SMTPConfig{
		Host:     appCfg.SMTPHost,
		Port:     appCfg.SMTPPort,
		Username: appCfg.SMTPUser,
		Password: appCfg.SMTPPassword,
		From:     appCfg.SMTPFrom,
		Timeout:  30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure email transport: %w", err)
	}
	slog.Info("Email delivery enabled", "host", appCfg.SMTPHost, "port", appCfg.SMTPPort)
	return transport, nil
}
