package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercrane/cascade/internal/cascade"
	"github.com/papercrane/cascade/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and cascade each saved document automatically",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Bool("force", false, "skip the uncommitted-changes pre-flight check")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	w, err := watch.New(s.WS.Dir)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	force, _ := cmd.Flags().GetBool("force")
	s.Printer.Info(fmt.Sprintf("watching %s (ctrl-c to stop)", s.WS.Dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sig:
			s.Printer.Info("stopping watch")
			return nil
		case ch := <-w.Changes:
			if ch.Kind == watch.Removed {
				s.Printer.Note(fmt.Sprintf("%s removed; baseline kept", filepath.Base(ch.File)))
				continue
			}
			// Reload so the engine sees the saved content, then cascade.
			if err := s.reload(); err != nil {
				s.Printer.Error(err.Error())
				continue
			}
			if _, err := s.Engine.Run(ctx, cascade.Request{File: ch.File, Force: force}); err != nil {
				if errors.Is(err, cascade.ErrInFlight) {
					continue
				}
				s.Printer.Error(err.Error())
			}
		}
	}
}
