package main

import (
	"github.com/spf13/cobra"

	"github.com/jax-labs/apexflow/bootstrap"
)

func newServeCmd() *cobra.Command {
	var (
		port      int
		paperMode bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the workflow engine as an HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if paperMode {
				cfg.Paper.Enabled = true
			}

			app, err := bootstrap.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	cmd.Flags().BoolVar(&paperMode, "paper", false, "force paper trading regardless of config")
	return cmd
}
