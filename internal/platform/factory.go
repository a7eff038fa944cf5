package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/introspection"

	"github.com/aretw0/scribe/internal/logging"
	"github.com/aretw0/scribe/pkg/adapters/fs"
	"github.com/aretw0/scribe/pkg/adapters/metadata"
	"github.com/aretw0/scribe/pkg/content"
	"github.com/aretw0/scribe/pkg/core"
)

// Scribe bundles a wired generator with the collaborators it was built from.
type Scribe struct {
	Generator *core.Generator
	Content   *content.Manager
	Directory core.DirectoryService
	Metadata  core.MetadataService
}

// Components lists the parts that expose introspection state.
func (s *Scribe) Components() []introspection.Component {
	var out []introspection.Component
	for _, c := range []any{s.Generator, s.Content, s.Directory, s.Metadata} {
		if comp, ok := c.(introspection.Component); ok {
			out = append(out, comp)
		}
	}
	return out
}

// New wires a Scribe that writes documentation under outputRoot.
//
//	s, err := scribe.New("docs/files", scribe.WithContentEnabled(false))
func New(outputRoot string, opts ...Option) (*Scribe, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := logging.OrNop(o.logger)

	dirs := o.directory
	if dirs == nil {
		if outputRoot == "" {
			return nil, errors.New("output root is required")
		}
		d, err := newDirectory(outputRoot, o)
		if err != nil {
			return nil, err
		}
		dirs = d
	}

	meta := o.metadata
	if meta == nil {
		m, err := metadata.New(metadata.WithRules(o.categories...))
		if err != nil {
			return nil, err
		}
		meta = m
	}

	manager := o.manager
	if manager == nil {
		if err := o.policy.Validate(); err != nil {
			return nil, fmt.Errorf("retry policy: %w", err)
		}
		manager = content.NewManager(
			content.WithLogger(logger.With("component", "content")),
			content.WithPolicy(o.policy),
			content.WithRetryOptions(o.retryOpts...),
			content.WithRecorder(o.recorder),
			content.WithEnabled(o.contentEnabled),
			content.WithPreferred(o.preferred),
		)
		for _, p := range o.providers {
			if err := manager.Register(p); err != nil {
				return nil, err
			}
		}
	}
	for _, issue := range manager.ValidateConfiguration() {
		logger.Debug("content configuration", "severity", issue.Severity, "provider", issue.Provider, "issue", issue.Message)
	}

	genOpts := []core.GeneratorOption{
		core.WithGeneratorLogger(logger.With("component", "generator")),
		core.WithGeneratorRecorder(o.recorder),
		core.WithContent(manager, o.kinds...),
		core.WithContentMaxLength(o.maxLength),
		core.WithClock(o.clock),
	}
	if o.writer != nil {
		genOpts = append(genOpts, core.WithWriter(o.writer))
	} else if _, ok := dirs.(core.FileWriter); !ok {
		genOpts = append(genOpts, core.WithWriter(fs.NewTextWriter()))
	}

	return &Scribe{
		Generator: core.NewGenerator(dirs, meta, genOpts...),
		Content:   manager,
		Directory: dirs,
		Metadata:  meta,
	}, nil
}

func newDirectory(outputRoot string, o *options) (*fs.Directory, error) {
	base := o.base
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if root, err := FindRoot(wd); err == nil {
			base = root
		} else {
			base = wd
		}
	}
	if !filepath.IsAbs(outputRoot) {
		outputRoot = filepath.Join(base, outputRoot)
	}

	dirOpts := []fs.DirectoryOption{
		fs.WithBase(base),
		fs.WithMaxBackups(o.maxBackups),
		fs.WithLogger(logging.OrNop(o.logger).With("component", "directory")),
		fs.WithClock(o.clock),
	}
	for kind, name := range o.fileNames {
		dirOpts = append(dirOpts, fs.WithFileName(kind, name))
	}
	return fs.NewDirectory(outputRoot, dirOpts...), nil
}
