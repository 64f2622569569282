package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"go.klb.dev/cursorclip/internal/history"
	"go.klb.dev/cursorclip/internal/hub"
	"go.klb.dev/cursorclip/internal/ipc"
	"go.klb.dev/cursorclip/internal/selection"
	"go.klb.dev/cursorclip/internal/session"
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the clipboard history daemon",
		Long: `Connects to the Wayland compositor, records every new clipboard selection
and serves the history over the IPC socket.

The compositor must expose wl_seat and zwlr_data_control_manager_v1; without
them the daemon exits immediately.

Precedence (lowest → highest): defaults → config file → CURSORCLIP_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.Bool("monitor-only", false, "record selections without taking ownership of them")
	f.Bool("seed-samples", false, "start with a few sample entries (development)")
	addSocketFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(parent context.Context, v *viper.Viper) error {
	setupLogging(v)

	socketPath := v.GetString("socket")
	monitorOnly := v.GetBool("monitor-only")

	slog.Info("cursorclip daemon starting",
		"version", Version,
		"socket", socketPath,
		"monitor_only", monitorOnly,
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.New()
	store := history.New(history.WithNotifier(h))
	machine := selection.New(store, selection.Options{MonitorOnly: monitorOnly})
	if v.GetBool("seed-samples") {
		machine.Seed(history.SampleTexts)
		slog.Debug("seeded sample entries", "count", len(history.SampleTexts))
	}

	ln, err := ipc.Listen(socketPath)
	if err != nil {
		return err
	}

	sess := session.New(machine, nil)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ipc.NewServer(machine, h).Serve(gctx, ln)
	})
	g.Go(func() error {
		if err := sess.Run(); err != nil {
			return fmt.Errorf("wayland: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sess.Close()
		return nil
	})

	err = g.Wait()
	var missing *session.MissingGlobalError
	switch {
	case errors.As(err, &missing):
		slog.Error("clipboard monitoring cannot start, exiting", "err", missing)
	case err != nil:
		slog.Error("daemon stopped", "err", err)
	default:
		slog.Info("daemon stopped")
	}
	return err
}
