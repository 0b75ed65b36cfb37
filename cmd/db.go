package cmd

import (
	"github.com/bcmimarlik/site/internal/config"
	"github.com/bcmimarlik/site/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
}

// Migrate prepares the configured content store: the table for the database
// drivers, the parent directory for the file driver.
func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the content store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			s, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			color.Green("content store %q is ready", cfg.Store.Driver)
			return nil
		},
	}

	return command
}
