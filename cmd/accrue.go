/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// accrueCmd runs one accrual pass outside the server's schedule.
var accrueCmd = &cobra.Command{
	Use:   "accrue",
	Short: "Credit daily earnings for all active purchases once",
	Long: `Runs a single wallet accrual pass: every user holding active purchases is
credited the sum of their packages' earnings_per_day. Each run credits again,
so do not combine it with the server's schedule on the same day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		svc, cleanup, err := openServices(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := svc.Wallets.RunAccrual(cmd.Context(), services.TriggerCLI)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"users_credited": summary.UsersCredited,
			"total_credited": summary.TotalCredited.String(),
		}).Info("accrual finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accrueCmd)
}
