package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/giygas/telehealth-api/catalogparser"
	"github.com/giygas/telehealth-api/config"
	"github.com/giygas/telehealth-api/dashboard"
	"github.com/giygas/telehealth-api/data"
	"github.com/giygas/telehealth-api/handlers"
	"github.com/giygas/telehealth-api/health"
	"github.com/giygas/telehealth-api/logging"
	"github.com/giygas/telehealth-api/scheduler"
	"github.com/giygas/telehealth-api/server"
	"github.com/giygas/telehealth-api/session"
	"github.com/giygas/telehealth-api/store"
	"github.com/giygas/telehealth-api/validation"
	"github.com/giygas/telehealth-api/videocall"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "telehealth",
		Short:        "Telehealth API: risk assessment, diagnosis lookup, pharmacy cart and doctor dashboard",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(assessCmd())
	rootCmd.AddCommand(diagnoseCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			loadEnv()
			return runServer(cmd.Context(), verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at info level even in test mode")
	return cmd
}

// loadEnv reads .env from the working directory, then from the directory
// of the executable. A missing file is fine, the environment may be set.
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}
	ex, err := os.Executable()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
}

// openStore uses redis when REDIS_ADDR is set and memory otherwise
func openStore(ctx context.Context, cfg *config.Config) (store.KV, health.Pinger, func() error, error) {
	if cfg.RedisAddr == "" {
		kv := store.NewMemoryKV()
		logging.Info("Using in-memory record store")
		return kv, kv, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	kv := store.NewRedisKV(client)
	logging.Info("Using redis record store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return kv, kv, client.Close, nil
}

func runServer(ctx context.Context, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := logging.InitLogger(logging.Options{
		Dir:            "logs",
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		Verbose:        verbose,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	}); err != nil {
		logging.Warn("File logging disabled", "error", err)
	}
	defer func() {
		if err := logging.Shutdown(); err != nil {
			fmt.Fprintln(os.Stderr, "logger shutdown:", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, pinger, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logging.Warn("Record store close error", "error", err)
		}
	}()

	records := store.NewRecords(kv)
	seeded, err := records.SeedUsers(ctx, store.DemoUsers(time.Now()))
	if err != nil {
		return err
	}
	if seeded {
		logging.Info("Seeded demo users")
	}

	container := data.NewCatalogContainer()
	container.SetServerStartTime(time.Now())

	parser := catalogparser.NewCatalogParser(cfg.CatalogFile, cfg.CatalogURL)
	validator := validation.NewDataValidator()
	sessions := session.NewManager(cfg.SessionTTL)
	calls := videocall.NewSimulatedRegistry(videocall.NewHub())

	sched := scheduler.NewScheduler(container, parser, validator, sessions, cfg.CatalogRefresh)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	checker := health.NewHealthChecker(container, cfg.CatalogRefresh,
		health.WithStore(pinger),
		health.WithCounter("sessions", sessions.Count),
		health.WithCounter("calls", calls.Count),
	)

	handler := handlers.NewHTTPHandler(handlers.Deps{
		Catalog:   container,
		Validator: validator,
		Health:    checker,
		Sessions:  sessions,
		Records:   records,
		Dashboard: dashboard.NewService(records),
		Calls:     calls,
	})
	srv := server.NewServer(cfg, handler)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	calls.EndAll(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errChan
}
