package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/cadence/internal/config"
	"github.com/dukerupert/cadence/internal/database"
	"github.com/dukerupert/cadence/internal/logging"
	"github.com/dukerupert/cadence/internal/server"
)

func main() {
	configPath := flag.String("config", "cadence.yaml", "path to the YAML config file")
	listen := flag.String("listen", "", "HTTP listen address (overrides config)")
	initConfig := flag.Bool("init", false, "write the effective config to -config and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	if *initConfig {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatalf("failed to write config: %v", err)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv, err := server.New(cfg, db, logger)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	srv.Refresher().Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("cadence running", "addr", cfg.Listen, "db", cfg.DBPath, "refresh_cron", cfg.RefreshCron)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	srv.Refresher().Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
