// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the runtime search settings",
	Long: `Settings manages the topic and max results shared by the background
refresh loop and chat. The values live in a small YAML file that the API
server re-reads on every refresh tick.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cur, err := settingsStore(cfg).Load()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cur)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the topic and/or max results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s := settingsStore(cfg)
		cur, err := s.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("topic") {
			cur.Topic, _ = cmd.Flags().GetString("topic")
		}
		if cmd.Flags().Changed("max-results") {
			cur.MaxResults, _ = cmd.Flags().GetInt("max-results")
		}
		if err := s.Save(cur); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Settings updated: topic=%q max_results=%d (%s)\n", cur.Topic, cur.MaxResults, s.Path())
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().String("topic", "", "search topic")
	settingsSetCmd.Flags().Int("max-results", 0, "papers per fetch, 1..100")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
