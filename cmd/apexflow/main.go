// Command apexflow runs crypto trading workflows, either one-shot from the
// command line or as an HTTP service.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jax-labs/apexflow/config"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:          "apexflow",
		Short:        "Workflow automation engine for crypto trading",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yml")

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the service configuration, honoring the --config flag.
func loadConfig() (*config.Config, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	cfg := &config.Config{}
	if err := config.Load(cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
