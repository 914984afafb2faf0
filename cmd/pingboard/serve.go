package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pingboard/internal/config"
	"pingboard/internal/logging"
	"pingboard/internal/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard page and its live sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "address for the web server (overrides listen_addr)")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	logger, err := logging.New(logging.Config{
		Dir:      cfg.Logging.Dir,
		MaxMB:    cfg.Logging.MaxMB,
		MaxFiles: cfg.Logging.MaxFiles,
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
	}, os.Stderr)
	if err != nil {
		return fmt.Errorf("initialise logging: %w", err)
	}
	defer logger.Close()

	srv, err := server.New(cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("initialise server: %w", err)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("pingboard listening",
			"addr", cfg.ListenAddr,
			"probe", cfg.ResolveEndpoint(""),
			"interval", cfg.RefreshInterval.Duration,
			"version", version,
		)
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", "error", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("pingboard stopped")
	return err
}
