package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RomanUsername777/browseragent/internal/fsys"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the outcome of the most recent run in this workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := fsys.New(workspace)
			if err != nil {
				return fmt.Errorf("agentctl: open workspace: %w", err)
			}

			var record RunRecord
			if err := fs.LoadState(&record); err != nil {
				return fmt.Errorf("agentctl: no run recorded yet in %s", workspace)
			}

			fmt.Printf("task:     %s\n", record.Task)
			fmt.Printf("session:  %s\n", record.SessionID)
			fmt.Printf("steps:    %d\n", record.Steps)
			fmt.Printf("success:  %v\n", record.Success)
			fmt.Printf("started:  %s\n", record.StartedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("ended:    %s\n", record.EndedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("duration: %s\n", record.EndedAt.Sub(record.StartedAt))
			return nil
		},
	}
}
