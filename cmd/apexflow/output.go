package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/jax-labs/apexflow/engine"
)

// printResult renders an execution result, either as indented JSON or as a
// human-readable summary.
func printResult(result *engine.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	status := "FAILED"
	if result.Success {
		status = "OK"
	}
	fmt.Printf("Execution %s  %s  (%s)\n", result.ExecutionID, status, result.Duration)
	if result.Error != "" {
		fmt.Printf("Error: %s\n", result.Error)
	}

	if len(result.Logs) > 0 {
		fmt.Println("\nLogs:")
		for _, entry := range result.Logs {
			fmt.Printf("  [%s] %s\n", entry.Level, entry.Message)
		}
	}

	if len(result.Output) > 0 {
		fmt.Println("\nVariables:")
		keys := make([]string, 0, len(result.Output))
		for k := range result.Output {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s = %v\n", k, result.Output[k])
		}
	}
	return nil
}
