package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jax-labs/apexflow/bootstrap"
	"github.com/jax-labs/apexflow/config"
	"github.com/jax-labs/apexflow/workflow"
)

func newRunCmd() *cobra.Command {
	var (
		vars      []string
		asJSON    bool
		paperMode bool
	)

	cmd := &cobra.Command{
		Use:   "run <workflow>",
		Short: "Execute a workflow from a file or by name",
		Long: `Execute a workflow and print the result.

The argument is either a path to a .yaml/.yml/.json workflow file or a bare
name searched across the configured workflow directories.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if paperMode {
				cfg.Paper.Enabled = true
			}

			wf, err := loadWorkflow(cfg, args[0])
			if err != nil {
				return err
			}

			initial, err := parseVars(vars)
			if err != nil {
				return err
			}

			app, err := bootstrap.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var failed bool
			err = app.RunTask(cmd.Context(), func(ctx context.Context) error {
				result := app.Engine.ExecuteWith(ctx, wf, initial)
				failed = !result.Success
				return printResult(result, asJSON)
			})
			if err != nil {
				return err
			}
			if failed {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, "initial variable as name=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&paperMode, "paper", false, "force paper trading regardless of config")
	return cmd
}

// loadWorkflow resolves the argument as a file path first, then as a name
// searched across the configured workflow directories.
func loadWorkflow(cfg *config.Config, arg string) (*workflow.Workflow, error) {
	if _, err := os.Stat(arg); err == nil {
		return workflow.LoadFile(arg)
	}
	return workflow.NewFileLoader(cfg.WorkflowDirs...).Load(arg)
}

// parseVars turns --var name=value flags into the initial variable map.
// Values that parse as JSON keep their type; everything else is a string.
func parseVars(vars []string) (map[string]any, error) {
	if len(vars) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(vars))
	for _, v := range vars {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, expected name=value", v)
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			out[name] = parsed
		} else {
			out[name] = value
		}
	}
	return out, nil
}

