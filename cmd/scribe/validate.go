package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/scribe/pkg/core"
	"github.com/aretw0/scribe/pkg/metrics"
)

var errInvalid = errors.New("validation failed")

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check the template, variables and output location for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		sess, err := newSession(metrics.NoopRecorder{})
		if err != nil {
			return err
		}

		issues := sess.scribe.Generator.Validate(cmd.Context(), args[0], sess.template(), sess.vars)
		for _, issue := range sess.scribe.Content.ValidateConfiguration() {
			issues = append(issues, core.Issue{
				Severity: core.Severity(issue.Severity),
				Code:     "content",
				Message:  issue.String(),
			})
		}

		if len(issues) == 0 {
			fmt.Fprintln(w, "OK")
			return nil
		}

		failed := false
		for _, issue := range issues {
			fmt.Fprintln(w, issue)
			if issue.Severity == core.SeverityError {
				failed = true
			}
		}
		if failed {
			return errInvalid
		}
		return nil
	},
}

func init() {
	addTemplateFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
