package cmd

import (
	"github.com/bcmimarlik/site/internal/config"
	"github.com/bcmimarlik/site/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var configPath string

	command := &cobra.Command{
		Use:   "serve",
		Short: "start the site server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			config.ConfigureLogger(cfg.Log)

			return server.Start(cfg)
		},
	}

	command.Flags().StringVarP(&configPath, "config", "c", "", "config file")

	return command
}
