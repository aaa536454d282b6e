package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/pkg/database"
)

func (a *app) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, a.logger)
			if err != nil {
				return err
			}
			if applied {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no new migrations")
			}
			return nil
		},
	}
}
