/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var adminInput services.SignupInput

// createAdminCmd bootstraps an administrator. Referral-gated signup needs at
// least one existing referral code, so the first account is created here.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Creates an administrator account without a referral code. Usage:

	dailyyield create-admin --username root --mobile 9000000000 --password secret
`,
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

		admin, err := svc.Users.CreateAdmin(cmd.Context(), adminInput)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"id":            admin.ID,
			"user_id":       admin.UserID,
			"referral_code": admin.ReferralCode,
		}).Info("administrator created")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&adminInput.Username, "username", "", "display name")
	createAdminCmd.Flags().StringVar(&adminInput.MobileNumber, "mobile", "", "mobile number used to log in")
	createAdminCmd.Flags().StringVar(&adminInput.Email, "email", "", "optional email address")
	createAdminCmd.Flags().StringVar(&adminInput.Password, "password", "", "login password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("mobile")
	_ = createAdminCmd.MarkFlagRequired("password")
}
