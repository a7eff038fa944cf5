package core

import (
	"github.com/aretw0/introspection"
)

// GeneratorState exposes internal state for observability.
type GeneratorState struct {
	Runs          int      `json:"runs"`
	Failures      int      `json:"failures"`
	LastRunID     string   `json:"last_run_id,omitempty"`
	LastOutputDir string   `json:"last_output_dir,omitempty"`
	ContentKinds  []string `json:"content_kinds"`
	ContentSource string   `json:"content_source"`
}

// State implements introspection.Introspectable.
func (g *Generator) State() any {
	g.mu.RLock()
	defer g.mu.RUnlock()

	source := "none"
	if g.content != nil {
		source = "content"
		if comp, ok := g.content.(introspection.Component); ok {
			source = comp.ComponentType()
		}
	}

	return GeneratorState{
		Runs:          g.runs,
		Failures:      g.fails,
		LastRunID:     g.lastRun.RunID,
		LastOutputDir: g.lastRun.OutputDir,
		ContentKinds:  g.kinds,
		ContentSource: source,
	}
}

// ComponentType implements introspection.Component.
func (g *Generator) ComponentType() string {
	return "generator"
}

var _ introspection.Introspectable = (*Generator)(nil)
var _ introspection.Component = (*Generator)(nil)
