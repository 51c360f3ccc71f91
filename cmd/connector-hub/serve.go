package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/connector-hub/connector-hub/internal/config"
	"github.com/connector-hub/connector-hub/internal/connections"
	httpapp "github.com/connector-hub/connector-hub/internal/http"
	"github.com/connector-hub/connector-hub/internal/logging"
	"github.com/connector-hub/connector-hub/internal/metrics"
	"github.com/connector-hub/connector-hub/internal/oauthflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the connector hub API server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	if _, err := logging.BootstrapFromEnv(logging.BootstrapOptions{Command: "serve"}); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	reg, err := buildRegistry(cfg.DescriptorDir)
	if err != nil {
		return err
	}

	secretsStore, err := buildSecretsStore(cfg)
	if err != nil {
		return err
	}

	store := connections.NewStore(pool)
	engine := oauthflow.NewEngine(secretsStore, cfg.OAuthRedirectURL)

	srv, err := httpapp.NewEchoServer(cfg, reg, store, secretsStore, engine)
	if err != nil {
		return err
	}

	_, metricsErr := metrics.Serve(ctx, cfg.MetricsAddr)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case err := <-metricsErr:
			if err != nil {
				return err
			}
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
