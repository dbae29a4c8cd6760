package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/evanofslack/dns-manager-sync/cache"
	"github.com/evanofslack/dns-manager-sync/config"
	"github.com/evanofslack/dns-manager-sync/logger"
	"github.com/evanofslack/dns-manager-sync/metaservice"
	"github.com/evanofslack/dns-manager-sync/metrics"
	"github.com/evanofslack/dns-manager-sync/provider"
	"github.com/evanofslack/dns-manager-sync/provider/cloudflare"
	"github.com/evanofslack/dns-manager-sync/provider/route53"
	"github.com/evanofslack/dns-manager-sync/state"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Env)

	// Initialize metrics
	metrics := metrics.New()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: mux,
	}

	// Start http server in background
	go func() {
		slog.Info("Starting metrics server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stateStore, err := state.New(cfg.StatePath, metrics)
	if err != nil {
		slog.Error("Failed to initialize state store", "error", err)
		os.Exit(1)
	}
	defer stateStore.Close()

	registry, err := buildRegistry(ctx, cfg, metrics)
	if err != nil {
		slog.Error("Failed to initialize provider clients", "error", err)
		os.Exit(1)
	}

	meta := metaservice.New(cfg.Metadata.BaseURL, cfg.Metadata.Token, metrics)
	gateway := provider.NewGateway(registry, meta)

	store := cache.New(cache.Options{
		Client:          gateway,
		Capabilities:    registry,
		Store:           stateStore,
		Metrics:         metrics,
		PageSize:        cfg.PageSize,
		PersistDebounce: cfg.PersistDebounce,
		SearchDebounce:  cfg.SearchDebounce,
	})

	accountIDs := make([]string, 0, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		accountIDs = append(accountIDs, a.ID)
	}

	slog.Info("Starting dns-manager-sync service", "accounts", len(accountIDs))

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go runRefreshLoop(ctx, wg, store, accountIDs, cfg.RefreshInterval)

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("Shutdown signal received")
	cancel()

	serverShutdownCtx, cancelServer := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelServer()
	if err := server.Shutdown(serverShutdownCtx); err != nil {
		slog.Error("Metrics server shutdown error", "error", err)
	}

	// Wait for refresh loop to finish, then write out any debounced state
	wg.Wait()
	store.Flush()
	slog.Info("Service shutdown complete")
}

func runRefreshLoop(ctx context.Context, wg *sync.WaitGroup, store *cache.Store, accountIDs []string, interval time.Duration) {
	defer wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		summary := store.RefreshAll(ctx, accountIDs)
		if summary.Skipped {
			slog.Debug("Refresh cycle skipped")
		} else {
			slog.Info("Refresh cycle completed",
				"refreshed", len(summary.Refreshed),
				"failed", len(summary.Failures))
		}

		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			slog.Info("Stopping refresh loop")
			return
		}
	}
}

func buildRegistry(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*provider.Registry, error) {
	registry := provider.NewRegistry()
	for _, account := range cfg.Accounts {
		var (
			client provider.Client
			err    error
		)
		switch account.Provider {
		case "cloudflare":
			client, err = cloudflare.New(account.Token, m)
		case "route53":
			client, err = route53.New(ctx, account.AccessKeyID, account.SecretAccessKey, account.Region, m)
		default:
			return nil, fmt.Errorf("account %s: unsupported provider %q", account.ID, account.Provider)
		}
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", account.ID, err)
		}
		registry.Register(account.ID, account.Provider, client)
	}
	return registry, nil
}
