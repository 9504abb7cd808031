package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MolecularAI/smartsrx/config"
	"github.com/MolecularAI/smartsrx/data"
	"github.com/MolecularAI/smartsrx/handlers"
	"github.com/MolecularAI/smartsrx/health"
	"github.com/MolecularAI/smartsrx/logging"
	"github.com/MolecularAI/smartsrx/scheduler"
	"github.com/MolecularAI/smartsrx/server"
	"github.com/MolecularAI/smartsrx/smartsparser"
	"github.com/MolecularAI/smartsrx/validation"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(opts *options) *cobra.Command {
	var (
		src   sourceFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reactive function lookups over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, opts.cfg, src.parser(opts.cfg), watch || opts.cfg.WatchSource)
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&watch, "watch", false, "reload when the source file changes (default $WATCH_SOURCE)")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, parser *smartsparser.SmartsParser, watch bool) error {
	store := data.NewDataContainer()
	store.SetServerStartTime(time.Now())

	sched := scheduler.NewScheduler(store, parser, cfg.ReloadInterval)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	if watch && !smartsparser.IsRemote(parser.Source) {
		watcher, err := scheduler.NewSourceWatcher(parser.Source, scheduler.DefaultDebounce, sched.Reload)
		if err != nil {
			logging.Warn("Source watcher disabled", "source", parser.Source, "error", err)
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	healthChecker := health.NewHealthChecker(store, sched, cfg.ReloadInterval)
	handler := handlers.NewHTTPHandler(store, validation.NewDataValidator(), healthChecker)
	srv := server.NewServer(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logging.Info("Server shutdown complete")
	return nil
}
