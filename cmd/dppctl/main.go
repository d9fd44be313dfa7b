package main

import (
	"context"
	"os"
	"os/signal"
	"skillchain/internal/config"
	"skillchain/internal/model"
	sqlrepo "skillchain/internal/model/sql"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd is the operator CLI for maintenance tasks that have no HTTP surface.
var rootCmd = &cobra.Command{
	Use:          "dppctl",
	Short:        "SkillChain operator tasks",
	SilenceUsage: true,
}

// withRepo loads configuration, opens the database and hands the repository to fn.
func withRepo(fn func(cmd *cobra.Command, cfg config.Config, repo model.Repository) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.ParseConfig()
		if err != nil {
			return err
		}
		cfg.ConfigureLogging()

		repo, err := sqlrepo.InitRepository(&cfg)
		if err != nil {
			return err
		}
		return fn(cmd, cfg, repo)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
