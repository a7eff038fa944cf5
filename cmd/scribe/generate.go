package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/core"
	"github.com/aretw0/scribe/pkg/metrics"
)

var generateJSON bool

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Write the index and history documents for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		sess, err := newSession(metrics.NoopRecorder{})
		if err != nil {
			return err
		}

		backup := sess.settings.Backup && !noBackup
		out, err := sess.scribe.Generator.Generate(cmd.Context(), args[0], sess.template(), sess.vars,
			scribe.GenerateOptions{Backup: backup})
		if err != nil {
			return fmt.Errorf("generate %s: %w", args[0], err)
		}

		if generateJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Fprintf(w, "Generated documentation for %s (run %s)\n", out.Source, out.RunID)
		for _, kind := range core.FileKinds() {
			fmt.Fprintf(w, "  %-8s %s (%d bytes)\n", kind, out.Files[kind], out.Sizes[kind])
		}
		for _, b := range out.BackedUp {
			fmt.Fprintf(w, "  backup   %s\n", b)
		}
		return nil
	},
}

func init() {
	addTemplateFlags(generateCmd)
	generateCmd.Flags().BoolVar(&noBackup, "no-backup", false, "Overwrite existing documents without a backup")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the outcome as JSON")
	rootCmd.AddCommand(generateCmd)
}
