package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/scribe/pkg/adapters/metadata"
	"github.com/aretw0/scribe/pkg/content"
	"github.com/aretw0/scribe/pkg/core"
	"github.com/aretw0/scribe/pkg/metrics"
	"github.com/aretw0/scribe/pkg/retry"
)

// options holds the internal configuration for a Scribe instance.
type options struct {
	logger   *slog.Logger
	recorder metrics.Recorder
	clock    func() time.Time

	base       string
	maxBackups int
	fileNames  map[core.FileKind]string
	categories []metadata.Rule

	directory core.DirectoryService
	metadata  core.MetadataService
	writer    core.FileWriter

	manager        *content.Manager
	contentEnabled bool
	preferred      string
	kinds          []string
	maxLength      int
	policy         retry.Policy
	retryOpts      []retry.Option
	providers      []content.Provider
}

// Option defines a functional option for configuring Scribe.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		recorder:       metrics.NoopRecorder{},
		fileNames:      make(map[core.FileKind]string),
		contentEnabled: true,
		kinds:          content.DefaultKinds(),
		policy:         retry.DefaultPolicy(),
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder sets the metrics recorder (e.g. metrics.NewPrometheusRecorder).
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithClock overrides the time source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithBase sets the directory source paths are mirrored relative to.
// Defaults to the project root found above the working directory.
func WithBase(dir string) Option {
	return func(o *options) {
		o.base = dir
	}
}

// WithMaxBackups bounds the number of kept backup sets per output directory.
func WithMaxBackups(n int) Option {
	return func(o *options) {
		o.maxBackups = n
	}
}

// WithFileName overrides the output file name for kind.
func WithFileName(kind core.FileKind, name string) Option {
	return func(o *options) {
		o.fileNames[kind] = name
	}
}

// WithCategoryRules adds file category rules ahead of the defaults.
func WithCategoryRules(rules ...metadata.Rule) Option {
	return func(o *options) {
		o.categories = append(o.categories, rules...)
	}
}

// WithDirectoryService injects a custom output layout.
// If provided, the default filesystem directory service is skipped.
func WithDirectoryService(d core.DirectoryService) Option {
	return func(o *options) {
		o.directory = d
	}
}

// WithMetadataService injects a custom metadata source.
func WithMetadataService(m core.MetadataService) Option {
	return func(o *options) {
		o.metadata = m
	}
}

// WithFileWriter injects a custom writer for generated documents.
func WithFileWriter(w core.FileWriter) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithContentManager injects a pre-built manager. Provider, policy and
// enable options are then ignored.
func WithContentManager(m *content.Manager) Option {
	return func(o *options) {
		o.manager = m
	}
}

// WithContentEnabled opens or closes the content generation gate.
func WithContentEnabled(enabled bool) Option {
	return func(o *options) {
		o.contentEnabled = enabled
	}
}

// WithPreferredProvider selects a provider by name. Empty means automatic.
func WithPreferredProvider(name string) Option {
	return func(o *options) {
		o.preferred = name
	}
}

// WithContentKinds sets the kinds requested for every generation.
func WithContentKinds(kinds ...string) Option {
	return func(o *options) {
		if len(kinds) > 0 {
			o.kinds = kinds
		}
	}
}

// WithContentMaxLength sets the output-size hint, in runes, sent to providers.
func WithContentMaxLength(n int) Option {
	return func(o *options) {
		o.maxLength = n
	}
}

// WithRetryPolicy sets the policy applied to provider calls.
func WithRetryPolicy(p retry.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithRetryOptions tunes the retrier (sleeper, jitter source).
func WithRetryOptions(opts ...retry.Option) Option {
	return func(o *options) {
		o.retryOpts = append(o.retryOpts, opts...)
	}
}

// WithProvider registers a content provider, in call order.
func WithProvider(p content.Provider) Option {
	return func(o *options) {
		o.providers = append(o.providers, p)
	}
}
