package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/audiovault/internal/server"
	"github.com/desertthunder/audiovault/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the execution relay until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cfg.Port <= 0 {
		return fmt.Errorf("%w: port must be positive", shared.ErrInvalidConfig)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.ServerOpts{
		Config: cfg,
		Mounts: r.config.Mounts,
		Runner: r.executor,
		Logger: r.logger,
	})

	if cmd.Bool("open") {
		url := fmt.Sprintf("http://localhost:%d", cfg.Port)
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "url", url, "error", err)
		}
	}

	r.logger.Info("relay listening", "addr", srv.Addr(), "mounts", len(r.config.Mounts))
	return srv.Run(ctx)
}
