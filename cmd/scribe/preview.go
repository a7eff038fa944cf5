package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/aretw0/scribe/pkg/core"
	"github.com/aretw0/scribe/pkg/metrics"
)

var (
	previewRender bool
	previewWidth  int
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show what would be generated without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		sess, err := newSession(metrics.NoopRecorder{})
		if err != nil {
			return err
		}

		report, err := sess.scribe.Generator.Preview(cmd.Context(), args[0], sess.template(), sess.vars)
		if err != nil {
			return err
		}

		var render func(string) (string, error)
		if previewRender {
			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(previewWidth),
			)
			if err != nil {
				return fmt.Errorf("init renderer: %w", err)
			}
			render = r.Render
		}

		if report.OutputDir != "" {
			fmt.Fprintf(w, "Output directory: %s\n", report.OutputDir)
		}
		for _, kind := range core.FileKinds() {
			body := report.Bodies[kind]
			fmt.Fprintf(w, "\n=== %s ===\n", kind)
			fmt.Fprintf(w, "placeholders: %d found, %d resolved, %d unresolved\n",
				len(body.Found), len(body.Resolved), len(body.Unresolved))
			for _, name := range body.Unresolved {
				fmt.Fprintf(w, "  unresolved: {{%s}}\n", name)
			}
			for _, issue := range body.Syntax {
				fmt.Fprintf(w, "  syntax: %s\n", issue)
			}

			text := report.Rendered[kind]
			if render != nil {
				if styled, err := render(text); err == nil {
					text = styled
				}
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, text)
		}

		if report.Ready {
			fmt.Fprintln(w, "Ready to generate.")
		} else {
			fmt.Fprintln(w, "Not ready: fix the issues above or pass values with --set.")
		}
		return nil
	},
}

func init() {
	addTemplateFlags(previewCmd)
	previewCmd.Flags().BoolVar(&previewRender, "render", false, "Render the markdown for the terminal")
	previewCmd.Flags().IntVar(&previewWidth, "width", 80, "Word wrap width used with --render")
	rootCmd.AddCommand(previewCmd)
}
