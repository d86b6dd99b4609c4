package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the expiry sweep on its schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, logr := bootstrap()
			defer a.Close()
			defer logr.Sync() //nolint:errcheck

			sched, err := a.NewScheduler()
			if err != nil {
				return fmt.Errorf("invalid schedule: %w", err)
			}

			ctx, stop := signal.NotifyContext(ctxOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.AutoRevival.Start(ctx)
			sched.Start(ctx)
			logr.Info("auto revival scheduler running", zap.String("spec", a.Config.AutoRevival.CronSpec))

			<-ctx.Done()
			sched.Stop()
			a.AutoRevival.Stop()
			logr.Info("auto revival scheduler stopped")
			return nil
		},
	}
}

func runOnceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run-once",
		Short: "Revive every expired temporary suspension once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, logr := bootstrap()
			defer a.Close()
			defer logr.Sync() //nolint:errcheck

			revived := a.AutoRevival.ProcessExpiredTS(ctxOrBackground(cmd))
			fmt.Fprintf(cmd.OutOrStdout(), "revived %d suspension(s)\n", revived)
			return nil
		},
	}
}

func reconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Report notices whose suspension snapshot has drifted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, logr := bootstrap()
			defer a.Close()
			defer logr.Sync() //nolint:errcheck

			report, err := a.Reconcile.Check(ctxOrBackground(cmd))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

func ctxOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
