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

	"printsociety/internal/config"
	"printsociety/internal/database"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "printsociety",
		Usage: "custom print storefront API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-relay",
						Usage: "do not publish outbox notifications from this process",
					},
					&cli.BoolFlag{
						Name:  "migrate",
						Usage: "apply pending migrations before serving",
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "apply schema migrations",
				Action: migrateDB,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "steps",
						Usage: "apply n migrations (negative rolls back), 0 migrates all the way up",
					},
				},
			},
			{
				Name:   "sweep-proofs",
				Usage:  "persist expiry for proofs past their approval deadline",
				Action: sweepProofs,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "every",
						Usage: "repeat the sweep on this interval until interrupted, 0 runs once",
					},
				},
			},
			{
				Name:   "relay",
				Usage:  "publish outbox notifications to Kafka",
				Action: relay,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, c.Command.Name)
	logger.Info().Msg("starting printsociety API server")

	if c.Bool("migrate") {
		if err := database.Migrate(database.MigrationURL(cfg.Database), 0, logger); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	deps, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	if !c.Bool("no-relay") {
		deps.Relay.Start(ctx)
		defer deps.Relay.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      deps.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

func migrateDB(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger, c.Command.Name)

	return database.Migrate(database.MigrationURL(cfg.Database), c.Int("steps"), logger)
}

func sweepProofs(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger, c.Command.Name)

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	deps, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	proofs := deps.proofService(cfg, logger)

	sweep := func() error {
		expired, err := proofs.SweepExpired(ctx)
		logger.Info().Int("expired", expired).Msg("proof sweep finished")
		return err
	}

	every := c.Duration("every")
	if every <= 0 {
		return sweep()
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if err := sweep(); err != nil {
			logger.Error().Err(err).Msg("proof sweep failed")
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func relay(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger, c.Command.Name)

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	deps, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	deps.relay(cfg, logger).Run(ctx)
	return nil
}
