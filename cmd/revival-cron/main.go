package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/app"
	"github.com/noah-isme/notice-suspension-api/pkg/config"
	"github.com/noah-isme/notice-suspension-api/pkg/logger"
)

const programName = "revival-cron"

func bootstrap() (*app.App, *zap.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	a, err := app.New(cfg, logr)
	if err != nil {
		logr.Fatal("failed to initialise application", zap.Error(err))
	}
	return a, logr.With(zap.String("component", programName))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Scheduled auto revival of notice suspensions",
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(runOnceCommand())
	rootCmd.AddCommand(reconcileCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
