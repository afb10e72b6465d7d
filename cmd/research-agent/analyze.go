// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank the keywords shared by recent papers",
	Long: `Analyze fetches recent papers for a topic and prints the five most
frequent words of five or more letters across the titles and abstracts of
the first twenty.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("topic", "", "search topic (default from settings)")
	analyzeCmd.Flags().Int("max-results", 0, "maximum number of papers, 1..100 (default from settings)")
	analyzeCmd.Flags().Bool("json", false, "output keywords as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	topicFlag, _ := cmd.Flags().GetString("topic")
	maxFlag, _ := cmd.Flags().GetInt("max-results")
	asJSON, _ := cmd.Flags().GetBool("json")

	topic, maxResults, err := topicArgs(cfg, topicFlag, maxFlag)
	if err != nil {
		return err
	}

	orch, err := newOrchestrator(cfg, false)
	if err != nil {
		return err
	}
	docs, err := orch.Papers(commandContext(cmd), topic, maxResults)
	if err != nil {
		return err
	}
	docs = pipeline.Sample(docs)
	entries := orch.Analyze(docs)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"topic": topic, "top_keywords": entries})
	}
	fmt.Fprintf(out, "Top keywords for %q across %d paper(s):\n", topic, len(docs))
	for _, e := range entries {
		fmt.Fprintf(out, "- %s (%d)\n", e.Term, e.Count)
	}
	return nil
}
