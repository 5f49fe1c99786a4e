package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pitchlabs/coachkb/internal/config"
	"github.com/pitchlabs/coachkb/internal/database"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply all pending schema migrations to the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := database.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}
}
