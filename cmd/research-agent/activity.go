// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "List recent agent actions",
	Long: `Activity prints the newest entries of the agent action log: fetches by
the research agent and proposals by the innovation agent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		actions, err := st.RecentAgentActions(commandContext(cmd), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, a := range actions {
			fmt.Fprintf(out, "%s  %-10s %-9s %s\n", a.CreatedAt.Format(time.DateTime), a.Agent, a.Action, a.Data)
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().Int("limit", 20, "number of entries to show")
	rootCmd.AddCommand(activityCmd)
}
