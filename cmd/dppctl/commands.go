package main

import (
	"errors"
	"fmt"
	"skillchain/internal/config"
	"skillchain/internal/model"
	"skillchain/internal/service"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: withRepo(func(cmd *cobra.Command, cfg config.Config, _ model.Repository) error {
		logrus.WithField("db_type", cfg.DBType).Info("schema migrated")
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "database schema is up to date")
		return err
	}),
}

var seedCategoriesCmd = &cobra.Command{
	Use:   "seed-categories",
	Short: "Insert the default learning categories that are missing",
	RunE: withRepo(func(cmd *cobra.Command, _ config.Config, repo model.Repository) error {
		created, err := model.SeedDefaultCategories(cmd.Context(), repo)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %d categories\n", created)
		return err
	}),
}

var adminFlags struct {
	email    string
	password string
	name     string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a platform administrator account",
	RunE: withRepo(func(cmd *cobra.Command, _ config.Config, repo model.Repository) error {
		if strings.TrimSpace(adminFlags.email) == "" || adminFlags.password == "" {
			return errors.New("--email and --password are required")
		}
		// CreateAdmin does not issue tokens.
		users := service.NewAuthService(repo, nil)
		user, err := users.CreateAdmin(cmd.Context(), adminFlags.email, adminFlags.password, adminFlags.name)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "created platform admin %s (id %d)\n", user.Email, user.ID)
		return err
	}),
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "admin password (min 8 characters)")
	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "Platform Admin", "display name")

	rootCmd.AddCommand(migrateCmd, seedCategoriesCmd, createAdminCmd)
}
