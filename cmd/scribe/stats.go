package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/scribe/pkg/core"
	"github.com/aretw0/scribe/pkg/metrics"
)

var statsJSON bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Measure the rendered documents for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		sess, err := newSession(metrics.NoopRecorder{})
		if err != nil {
			return err
		}

		st, err := sess.scribe.Generator.Stats(cmd.Context(), args[0], sess.template(), sess.vars)
		if err != nil {
			return err
		}

		if statsJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}

		fmt.Fprintf(w, "Template: %s\n", st.Template)
		fmt.Fprintf(w, "%-8s %8s %6s %6s %9s %11s %9s %9s\n", "BODY", "LENGTH", "LINES", "FOUND", "RESOLVED", "UNRESOLVED", "COVERAGE", "HEADINGS")
		for _, kind := range core.FileKinds() {
			b := st.Bodies[kind]
			fmt.Fprintf(w, "%-8s %8d %6d %6d %9d %11d %8.0f%% %9d\n",
				kind, b.Length, b.Lines, b.Found, b.Resolved, b.Unresolved, b.Coverage*100, b.Headings)
		}
		return nil
	},
}

func init() {
	addTemplateFlags(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print stats as JSON")
	rootCmd.AddCommand(statsCmd)
}
