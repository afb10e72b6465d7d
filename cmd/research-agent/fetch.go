// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/search"
	"github.com/pdiddy/research-agent/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch recent arXiv papers for a topic",
	Long: `Fetch queries the arXiv API for the most recent papers on a topic.
Topic and max results default to the runtime settings file. Output is a
plain list, JSON, or CSL-YAML for reference managers.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("topic", "", "search topic (default from settings)")
	fetchCmd.Flags().Int("max-results", 0, "maximum number of papers, 1..100 (default from settings)")
	fetchCmd.Flags().String("format", "text", "output format: text, json, or csl")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	topicFlag, _ := cmd.Flags().GetString("topic")
	maxFlag, _ := cmd.Flags().GetInt("max-results")
	outFormat, _ := cmd.Flags().GetString("format")

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
	return writeDocuments(cmd.OutOrStdout(), outFormat, docs)
}

func writeDocuments(w io.Writer, outFormat string, docs []types.Document) error {
	switch outFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	case "csl":
		return search.FormatCSL(docs, w)
	case "text", "":
		for i, d := range docs {
			fmt.Fprintf(w, "%d. %s\n", i+1, d.Title)
			if !d.Published.IsZero() {
				fmt.Fprintf(w, "   published: %s\n", d.Published.Format(time.DateOnly))
			}
			fmt.Fprintf(w, "   %s\n", d.Link)
		}
		fmt.Fprintf(w, "%d paper(s)\n", len(docs))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json, or csl)", outFormat)
	}
}

// commandContext returns cmd's context, or Background when cobra was run
// without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
