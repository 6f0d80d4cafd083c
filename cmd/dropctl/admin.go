package main

import (
	"errors"

	"dropskills/internal/logger"
	"dropskills/internal/service"

	"github.com/spf13/cobra"
)

func createAdminCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			auth := service.NewAuthService(db, cfg.ResetTokenTTL())
			u, err := auth.CreateAdmin(contextOf(cmd), email, password, name)
			if err != nil {
				return err
			}
			logger.Info("admin.created", "uid", u.ID, "email", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}
