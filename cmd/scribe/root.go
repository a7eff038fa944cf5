package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/internal/config"
	"github.com/aretw0/scribe/internal/logging"
	"github.com/aretw0/scribe/pkg/content"
	"github.com/aretw0/scribe/pkg/metrics"
	"github.com/aretw0/scribe/pkg/retry"
)

var (
	verbose    bool
	configPath string
	outputRoot string
	logFormat  string
	setVars    []string
	noBackup   bool
	noContent  bool
	mockFail   bool
)

// mockFailPolicy keeps the --mock-fail demo from sitting through the
// default backoff before the placeholder fallback shows up.
var mockFailPolicy = retry.Policy{
	MaxRetries: 1,
	BaseDelay:  50 * time.Millisecond,
	MaxDelay:   100 * time.Millisecond,
	Multiplier: 2,
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Generate index and history documentation for source files",
	Long: `Scribe fills a documentation template for a source file and writes an
index and a history document next to the rest of your project docs.

Template values come from the file's metadata, optional generated content,
template defaults and --set overrides, in increasing priority.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(logging.New(level, logging.ParseFormat(logFormat)))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx := lifecycle.NewSignalContext(context.Background())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Settings file (default: ./scribe.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&outputRoot, "output", "o", "", "Documentation output root (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

// addTemplateFlags registers the flags shared by commands that render a template.
func addTemplateFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&setVars, "set", nil, "Custom variable as key=value (repeatable)")
	addContentFlags(cmd)
}

// addContentFlags registers the flags that shape the content manager.
func addContentFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noContent, "no-content", false, "Disable generated content (placeholders are marked as disabled)")
	cmd.Flags().BoolVar(&mockFail, "mock-fail", false, "Register a failing provider to exercise the placeholder fallback")
}

// session is everything a command needs after flags and settings are resolved.
type session struct {
	settings scribe.Settings
	scribe   *scribe.Scribe
	vars     scribe.Variables
	logger   *slog.Logger
}

func newSession(recorder metrics.Recorder) (*session, error) {
	settings, err := scribe.LoadSettings(configPath)
	if err != nil {
		return nil, err
	}
	if outputRoot != "" {
		settings.OutputRoot = outputRoot
	}
	if noContent {
		settings.Content.Enabled = false
	}

	vars, err := parseVars(settings.Variables, setVars)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	opts, err := scribe.FromSettings(settings)
	if err != nil {
		return nil, err
	}
	opts = append(opts, scribe.WithLogger(logger), scribe.WithRecorder(recorder))
	if mockFail {
		opts = append(opts,
			scribe.WithProvider(content.NewMock("failing", content.WithFailure(nil))),
			scribe.WithPreferredProvider("failing"),
			scribe.WithRetryPolicy(mockFailPolicy),
		)
	}

	s, err := scribe.New(settings.OutputRoot, opts...)
	if err != nil {
		return nil, err
	}
	return &session{settings: settings, scribe: s, vars: vars, logger: logger}, nil
}

// parseVars merges settings variables with key=value pairs from --set.
func parseVars(base map[string]any, pairs []string) (scribe.Variables, error) {
	vars := scribe.Variables{}
	for k, v := range base {
		vars[k] = v
	}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", p)
		}
		vars[key] = value
	}
	return vars, nil
}

// template returns the configured template.
func (s *session) template() scribe.Template {
	if s.settings.Template.Index == "" && s.settings.Template.History == "" {
		return config.DefaultTemplate()
	}
	return s.settings.Template
}
