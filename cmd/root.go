/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dailyyield/apiserver/config"
	"github.com/dailyyield/apiserver/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dailyyield",
	Short: "Daily yield investment wallet backend",
	Long: `dailyyield runs the investment wallet API and its operational tasks:
database migrations, on-demand wallet accrual, admin bootstrap and event tailing.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadRuntime reads configuration and builds the process logger.
func loadRuntime() (config.Config, *logrus.Logger, error) {
	cfg := config.LoadConfig()
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
