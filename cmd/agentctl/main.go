// Command agentctl drives a browser automation run from the command
// line: given a natural-language task, it launches a browser, wires the
// action registry and a chat model, and runs the step loop to completion.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath  string
	workspace   string
	logger      *zap.Logger
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentctl",
		Short: "Drive a browser against a natural-language task",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("agentctl: build logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", ".browseragent/config.json", "path to the on-disk configuration")
	cmd.PersistentFlags().StringVar(&workspace, "workspace", ".browseragent", "workspace directory for logs, the todo list, and extracted content")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newTabsCmd())
	return cmd
}
