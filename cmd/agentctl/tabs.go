package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RomanUsername777/browseragent/internal/fsys"
)

func newTabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List the tabs open at the end of the most recent run",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := fsys.New(workspace)
			if err != nil {
				return fmt.Errorf("agentctl: open workspace: %w", err)
			}

			var record RunRecord
			if err := fs.LoadState(&record); err != nil {
				return fmt.Errorf("agentctl: no run recorded yet in %s", workspace)
			}

			if len(record.Tabs) == 0 {
				fmt.Println("no tabs recorded")
				return nil
			}
			for i, tab := range record.Tabs {
				fmt.Printf("%d: %s (%s)\n", i, tab.Title, tab.URL)
			}
			return nil
		},
	}
}
