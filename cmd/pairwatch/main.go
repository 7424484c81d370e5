package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raykavin/pairwatch"
	"github.com/raykavin/pairwatch/config"
	"github.com/spf13/cobra"
)

// Command line flags
var (
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "pairwatch",
		Short:   "Watches for freshly created trading pairs and notifies Telegram",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the watcher loop",
		RunE:  run,
	}

	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (e.g. ./pairwatch.yaml)")

	return runCmd
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	bot, err := pairwatch.NewBot(settings)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
