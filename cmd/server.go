/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/dailyyield/apiserver/internal/server"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the dailyyield API server",
	Long: `Starts the dailyyield API server together with the scheduled wallet
accrual. Usage:

	dailyyield server
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		srv, err := server.New(cmd.Context(), cfg, logger)
		if err != nil {
			logger.WithError(err).Error("failed to start server")
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			if err != nil {
				logger.WithError(err).Error("server error")
				_ = srv.Shutdown(context.Background())
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-cmd.Context().Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
			return err
		}
		return <-errCh
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
