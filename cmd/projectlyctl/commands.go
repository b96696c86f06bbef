package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"projectly/internal/model"
	"projectly/internal/service"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := model.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func createSuperuserCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an administrator account",
		Long: `Create an administrator account with the head role.

Examples:
  projectlyctl createsuperuser --email=admin@example.com --password='S3cret!!' --name="Ada Admin"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := model.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			auth := service.NewAuthService(db, nil, nil)
			u, err := auth.CreateSuperuser(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "superuser %s created (id %d)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (required)")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}
