package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/ecavus/wedding-rsvp/internal/backup"
	"github.com/ecavus/wedding-rsvp/internal/repo/postgres"
	"github.com/ecavus/wedding-rsvp/pkg/config"
	"github.com/ecavus/wedding-rsvp/pkg/logger"
)

func main() {
	once := flag.Bool("once", false, "take a single snapshot and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if *once {
		if err := run(cfg); err != nil {
			logger.Error("Backup failed", "error", err)
			os.Exit(1)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Backup.Schedule, func() {
		if err := run(cfg); err != nil {
			logger.Error("Backup failed", "error", err)
		}
	}); err != nil {
		logger.Error("Invalid backup schedule", "schedule", cfg.Backup.Schedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	logger.Info("Backup scheduler started", "schedule", cfg.Backup.Schedule, "dir", cfg.Backup.Dir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Stopping backup scheduler...")
	<-c.Stop().Done()
}

// run takes one snapshot over its own connection, tunneled when the
// production host is only reachable over SSH.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dbURL := cfg.Database.URL
	if cfg.Backup.SSHHost != "" {
		tunnel, err := backup.OpenTunnel(cfg.Backup)
		if err != nil {
			return fmt.Errorf("open tunnel: %w", err)
		}
		defer tunnel.Close()

		dbURL, err = rewriteHost(dbURL, tunnel.Addr())
		if err != nil {
			return err
		}
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	writer := backup.NewWriter(cfg.Backup.Dir)
	_, _, err = writer.Write(ctx, postgres.NewStore(pool))
	return err
}

// rewriteHost points a database URL at the tunnel's local listener.
func rewriteHost(dbURL, addr string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	u.Host = addr
	return u.String(), nil
}
