package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devolta/mautic-metrics/internal/api"
	"github.com/devolta/mautic-metrics/internal/config"
	"github.com/devolta/mautic-metrics/internal/dashboard"
	"github.com/devolta/mautic-metrics/internal/mauticmail"
	"github.com/devolta/mautic-metrics/internal/pkg/logger"
	"github.com/devolta/mautic-metrics/internal/webhookcache"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale/stub processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Starting Mautic Metrics dashboard backend (cmd/server)...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logger.DEBUG)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	// Upstream metrics client
	client := mauticmail.NewClient(mauticmail.Config{
		BaseURL:    cfg.MauticMail.BaseURL,
		APIKey:     cfg.MauticMail.APIKey,
		UserID:     cfg.MauticMail.UserID,
		Timeout:    cfg.MauticMail.Timeout(),
		MaxRetries: cfg.MauticMail.MaxRetries,
	})

	// Webhook cache: Redis when configured, in-process otherwise
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Redis unreachable (%v), webhook cache falls back to in-process", err)
			redisClient = nil
		}
		cancel()
	}
	webhooks := webhookcache.New(client, redisClient)

	// Dashboard orchestrator
	orchestrator := dashboard.NewService(client, dashboard.Options{
		DefaultRangeDays: cfg.Dashboard.DefaultRangeDays,
		Debounce:         cfg.Dashboard.Debounce(),
	})
	defer orchestrator.Stop()

	// Verify the upstream is reachable and warm the dashboard
	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	accounts, err := client.ListAccounts(startupCtx)
	cancel()
	if err != nil {
		log.Printf("Upstream accounts unavailable at startup: %v", err)
	} else {
		log.Printf("Upstream reachable, %d accounts connected", len(accounts))
		orchestrator.Refresh()
	}

	server := api.NewServer(cfg.Server, api.NewHandlers(orchestrator, client, webhooks))

	addr := fmt.Sprintf("%s:%d", host, port)
	go func() {
		log.Printf("API server listening on http://%s", addr)
		if err := server.ListenAndServe(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
