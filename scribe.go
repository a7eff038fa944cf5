package scribe

import (
	"log/slog"
	"time"

	"github.com/aretw0/scribe/internal/config"
	"github.com/aretw0/scribe/internal/platform"
	"github.com/aretw0/scribe/pkg/adapters/metadata"
	"github.com/aretw0/scribe/pkg/content"
	"github.com/aretw0/scribe/pkg/core"
	"github.com/aretw0/scribe/pkg/metrics"
	"github.com/aretw0/scribe/pkg/retry"
	"github.com/aretw0/scribe/pkg/substitute"
)

// --- Types ---

// Scribe is a wired generator and its collaborators.
type Scribe = platform.Scribe

// Template is a named pair of document bodies.
type Template = core.Template

// Variables are caller-supplied substitution values.
type Variables = substitute.Variables

// GenerateOptions tunes a single generation.
type GenerateOptions = core.GenerateOptions

// Outcome summarizes a generation.
type Outcome = core.Outcome

// Settings is the on-disk configuration.
type Settings = config.Settings

// --- Configuration ---

// Option defines a functional option for configuring Scribe.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return platform.WithRecorder(r)
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithBase sets the directory source paths are mirrored relative to.
func WithBase(dir string) Option {
	return platform.WithBase(dir)
}

// WithMaxBackups bounds the number of kept backup sets.
func WithMaxBackups(n int) Option {
	return platform.WithMaxBackups(n)
}

// WithFileName overrides the output file name for kind.
func WithFileName(kind core.FileKind, name string) Option {
	return platform.WithFileName(kind, name)
}

// WithCategoryRules adds file category rules ahead of the defaults.
func WithCategoryRules(rules ...metadata.Rule) Option {
	return platform.WithCategoryRules(rules...)
}

// WithDirectoryService injects a custom output layout.
func WithDirectoryService(d core.DirectoryService) Option {
	return platform.WithDirectoryService(d)
}

// WithMetadataService injects a custom metadata source.
func WithMetadataService(m core.MetadataService) Option {
	return platform.WithMetadataService(m)
}

// WithFileWriter injects a custom document writer.
func WithFileWriter(w core.FileWriter) Option {
	return platform.WithFileWriter(w)
}

// WithContentManager injects a pre-built content manager.
func WithContentManager(m *content.Manager) Option {
	return platform.WithContentManager(m)
}

// WithContentEnabled opens or closes the content generation gate.
func WithContentEnabled(enabled bool) Option {
	return platform.WithContentEnabled(enabled)
}

// WithPreferredProvider selects a provider by name.
func WithPreferredProvider(name string) Option {
	return platform.WithPreferredProvider(name)
}

// WithContentKinds sets the kinds requested for every generation.
func WithContentKinds(kinds ...string) Option {
	return platform.WithContentKinds(kinds...)
}

// WithContentMaxLength sets the output-size hint, in runes, sent to providers.
func WithContentMaxLength(n int) Option {
	return platform.WithContentMaxLength(n)
}

// WithRetryPolicy sets the policy applied to provider calls.
func WithRetryPolicy(p retry.Policy) Option {
	return platform.WithRetryPolicy(p)
}

// WithProvider registers a content provider.
func WithProvider(p content.Provider) Option {
	return platform.WithProvider(p)
}

// --- Factory ---

// New creates a Scribe writing under outputRoot.
func New(outputRoot string, opts ...Option) (*Scribe, error) {
	return platform.New(outputRoot, opts...)
}

// LoadSettings reads a settings file; an empty path tries scribe.yaml.
func LoadSettings(path string) (Settings, error) {
	return config.Load(path)
}

// FromSettings converts settings into options for New.
func FromSettings(s Settings) ([]Option, error) {
	return platform.FromSettings(s)
}
