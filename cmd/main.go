package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"telemetry-service/internal/alerting"
	"telemetry-service/internal/api"
	"telemetry-service/internal/config"
	"telemetry-service/internal/ingest"
	"telemetry-service/internal/kafka"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/notifier"
	"telemetry-service/internal/poller"
	"telemetry-service/internal/store"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config load failed:", err)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatal("Logger init failed:", err)
	}

	// Load the static channel table
	channels, err := config.LoadChannels()
	if err != nil {
		logger.Errorf("Channel config load failed: %v", err)
		log.Fatal("Channel config load failed:", err)
	}
	logger.Infof("Loaded %d sensor channels", len(channels))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the history store
	var st store.Store
	switch cfg.Store.Backend {
	case "postgres":
		st, err = store.NewPostgresStore(ctx, cfg.Store.DSN, cfg.Store.Capacity, cfg.Query.DefaultLimit, cfg.Query.MaxLimit)
		if err != nil {
			logger.Errorf("Store connect failed: %v", err)
			log.Fatal("Store connect failed:", err)
		}
	default:
		st = store.NewMemoryStore(cfg.Store.Capacity, cfg.Query.DefaultLimit, cfg.Query.MaxLimit)
	}
	defer st.Close()

	// Assemble notifier providers
	hub := notifier.NewHub(logger)
	providers := []notifier.Provider{hub}
	if cfg.Telegram.BotToken != "" {
		tg, err := notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.RatePerSecond, logger)
		if err != nil {
			logger.Errorf("Telegram init failed, provider disabled: %v", err)
		} else {
			providers = append(providers, tg)
		}
	}
	dispatcher := notifier.NewDispatcher(logger, providers...)

	// Alert ledger and polling reconciler
	ledger := alerting.NewLedger(cfg.Alerting.DebounceWindow, cfg.Alerting.HistoryDisplay, dispatcher, logger)
	recon := poller.New(st, channels, ledger, logger, cfg)
	var wg sync.WaitGroup
	recon.Start(ctx, &wg)

	// Ingestion
	svc := ingest.New(st, logger, cfg.Store.Timeout)
	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = kafka.NewConsumer(cfg, svc, logger)
		consumer.Start(ctx, &wg)
	}

	// Start API server
	handler := api.NewHandler(svc, st, ledger, recon, hub, logger, cfg)
	router := api.NewRouter(logger, cfg, handler)
	server := &http.Server{Addr: cfg.API.Port, Handler: router}
	go func() {
		logger.Infof("API started on %s", cfg.API.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("API run failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
	cancel()
	if consumer != nil {
		consumer.Close()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API shutdown failed: %v", err)
	}
	wg.Wait()
	logger.Infof("Service stopped")
}
