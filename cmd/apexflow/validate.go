package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jax-labs/apexflow/workflow"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workflow>",
		Short: "Check a workflow file without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			wf, err := loadWorkflow(cfg, args[0])
			if err != nil {
				return err
			}

			issues := workflow.Validate(wf)
			valid := true
			for _, issue := range issues {
				prefix := "warning"
				if issue.Level == workflow.LevelError {
					prefix = "error"
					valid = false
				}
				if issue.NodeID != "" {
					fmt.Printf("%s: node %s: %s\n", prefix, issue.NodeID, issue.Message)
				} else {
					fmt.Printf("%s: %s\n", prefix, issue.Message)
				}
			}

			if !valid {
				os.Exit(1)
			}
			fmt.Printf("%s: valid (%d nodes, %d edges)\n", wf.Name, len(wf.Nodes), len(wf.Edges))
			return nil
		},
	}
}
