package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tg_shift_bot/internal/command"
	"tg_shift_bot/internal/config"
	"tg_shift_bot/internal/logging"
	"tg_shift_bot/internal/telegram"
	"tg_shift_bot/internal/webhook"
)

const (
	telegramShutdownTimeout = 10 * time.Second
	webhookShutdownTimeout  = 5 * time.Second
)

func main() {
	configOnly := flag.Bool("config-only", false, "load and print configuration then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("configuration error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg)
	if err != nil {
		logging.Error("logger setup error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}

	if *configOnly {
		logging.Info("configuration check", logging.Fields{"event": "config_only"})
		fmt.Println("configuration check: ok")
		fmt.Println(config.FormatRedacted(cfg))
		return
	}

	logger.WithFields(logging.Fields{
		"event":    "startup",
		"bot_mode": cfg.BotMode,
	}).Info("configuration loaded")

	handlers := command.NewHandlers(cfg.PhotoPath, logger)
	registry := handlers.Registry()
	router := telegram.NewRouter(registry, logger)

	tgClient, err := telegram.NewClient(cfg, router, logger)
	if err != nil {
		logger.WithError(err).Error("telegram client setup error")
		fmt.Fprintf(os.Stderr, "telegram client setup error: %v\n", err)
		os.Exit(1)
	}

	logger.WithFields(logging.Fields{
		"event":    "telegram_ready",
		"commands": registry.Tokens(),
	}).Info("telegram client initialized")

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The HTTP server always runs: it carries the health endpoints, and in
	// webhook mode the update endpoint as well.
	srv := webhook.NewServer(cfg, router, tgClient.API(), logger)
	srvDone := make(chan struct{})

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.WithError(err).Error("webhook server error")
		}
		close(srvDone)
	}()

	telegramCtx, cancelTelegram := context.WithCancel(context.Background())

	// A nil channel blocks forever; in webhook mode there is no poller to
	// wait on.
	var tgDone chan struct{}
	if !cfg.IsWebhook() {
		tgDone = make(chan struct{})
		go func() {
			tgClient.Start(telegramCtx)
			close(tgDone)
		}()
	}

	select {
	case <-signalCtx.Done():
		logger.WithField("event", "shutdown_signal").Info("received termination signal, stopping")
	case <-srvDone:
		logger.WithField("event", "webhook_stopped_early").Warn("webhook server stopped before shutdown signal")
	case <-tgDone:
		logger.WithField("event", "telegram_stopped_early").Warn("telegram client stopped before shutdown signal")
	}

	cancelTelegram()

	if tgDone != nil {
		waitCtx, cancelWait := context.WithTimeout(context.Background(), telegramShutdownTimeout)
		select {
		case <-tgDone:
		case <-waitCtx.Done():
			logger.WithField("event", "telegram_shutdown_timeout").Warn("timed out waiting for telegram client to stop")
		}
		cancelWait()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), webhookShutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("webhook shutdown error")
	} else {
		logger.WithField("event", "webhook_shutdown").Info("webhook server stopped")
	}
	cancelShutdown()

	logger.WithField("event", "shutdown_complete").Info("shutdown complete")
}
