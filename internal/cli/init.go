// Package cli implements the atelier cobra commands.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/atelier/internal/config"
	"github.com/example/atelier/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the atelier configuration and database",
		Long: `Write .atelier/config.json in the current directory when missing, then
create or migrate the configured database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}

			if _, err := os.Stat(config.Path(dir)); errors.Is(err, os.ErrNotExist) {
				if err := config.SaveConfig(dir, cfg); err != nil {
					return err
				}
				fmt.Printf("✓ Config written to %s\n", config.Path(dir))
			}

			fmt.Printf("Initializing %s database at %s\n", cfg.Database.Driver, cfg.Database.DSN)
			database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := db.RunMigrations(database)
			if err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			for _, m := range applied {
				fmt.Printf("  applied %03d %s\n", m.Version, m.Name)
			}

			fmt.Println("✓ Database initialized successfully")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  atelier calendar set 2026-03-02 --shift 08:00-17:00 --break 12:00-13:00")
			fmt.Println("  atelier order create OF-1001 --quantity 500")
			return nil
		},
	}
}
