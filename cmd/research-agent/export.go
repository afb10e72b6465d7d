// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-agent/internal/format"
	"github.com/pdiddy/research-agent/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's latest proposal",
	Long: `Export writes the most recent stored proposal for --user as a Markdown
report (topic, extracted keywords, proposal text) or as YAML.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("user", "", "proposal owner")
	exportCmd.Flags().String("output", "", "output file (default stdout)")
	exportCmd.Flags().String("format", "markdown", "output format: markdown or yaml")
	_ = exportCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	user, _ := cmd.Flags().GetString("user")
	output, _ := cmd.Flags().GetString("output")
	outFormat, _ := cmd.Flags().GetString("format")

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.LatestProposal(commandContext(cmd), user)
	if err != nil {
		return fmt.Errorf("latest proposal for %s: %w", user, err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if err := writeProposal(w, outFormat, p); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote proposal %d to %s\n", p.ID, output)
	}
	return nil
}

func writeProposal(w io.Writer, outFormat string, p types.Proposal) error {
	switch outFormat {
	case "markdown", "md", "":
		_, err := io.WriteString(w, format.Report(p.Topic, p.Keywords, p.RawText))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(p)
	default:
		return fmt.Errorf("unknown format %q (want markdown or yaml)", outFormat)
	}
}
