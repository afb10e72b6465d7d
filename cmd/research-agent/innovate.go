// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/handoff"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/internal/store"
	"github.com/pdiddy/research-agent/pkg/types"
)

var innovateCmd = &cobra.Command{
	Use:   "innovate",
	Short: "Generate a research proposal from recent papers",
	Long: `Innovate fetches recent papers, ranks their keywords, and asks the
configured language model for a research proposal built on those keywords.
The formatted proposal is printed to stdout.

With --via-channel the stages hand results to each other through the
in-process hand-off channel instead of direct calls. With --save the
proposal is stored for --user so it can be rated and exported later.`,
	RunE: runInnovate,
}

func init() {
	innovateCmd.Flags().String("topic", "", "search topic (default from settings)")
	innovateCmd.Flags().Int("max-results", 0, "maximum number of papers, 1..100 (default from settings)")
	innovateCmd.Flags().Bool("via-channel", false, "run the stages through the hand-off channel")
	innovateCmd.Flags().Bool("save", false, "store the proposal in the database")
	innovateCmd.Flags().String("user", "", "owner of the saved proposal (required with --save)")
	innovateCmd.Flags().Bool("raw", false, "print the model output without formatting")

	rootCmd.AddCommand(innovateCmd)
}

func runInnovate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	topicFlag, _ := cmd.Flags().GetString("topic")
	maxFlag, _ := cmd.Flags().GetInt("max-results")
	viaChannel, _ := cmd.Flags().GetBool("via-channel")
	save, _ := cmd.Flags().GetBool("save")
	user, _ := cmd.Flags().GetString("user")
	raw, _ := cmd.Flags().GetBool("raw")

	if save && user == "" {
		return fmt.Errorf("--save requires --user")
	}

	topic, maxResults, err := topicArgs(cfg, topicFlag, maxFlag)
	if err != nil {
		return err
	}

	var (
		st   *store.Store
		opts []pipeline.Option
	)
	if save {
		st, err = openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, pipeline.WithActionRecorder(st))
	}

	orch, err := newOrchestrator(cfg, true, opts...)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	var res pipeline.Result
	if viaChannel {
		res, err = orch.InnovateViaChannel(ctx, handoff.New(logger), topic, maxResults)
	} else {
		res, err = orch.Innovate(ctx, topic, maxResults)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if raw {
		fmt.Fprintln(out, res.Raw)
	} else {
		fmt.Fprintln(out, res.Formatted)
	}

	if !save {
		return nil
	}
	id, err := st.InsertProposal(ctx, types.Proposal{
		Username:      user,
		Topic:         res.Topic,
		Keywords:      res.Keywords,
		RawText:       res.Raw,
		FormattedText: res.Formatted,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved proposal %d for %s\n", id, user)
	return nil
}
