// Package content produces the supplementary, per-kind text that generated
// documentation can embed. A Manager owns a registry of Providers, picks one
// per kind, runs it under a retry policy and falls back to the built-in
// Placeholder when the chosen provider keeps failing.
package content

import (
	"context"
	"slices"
)

// Content kinds understood by the built-in providers.
const (
	KindPurpose      = "purpose"
	KindOverview     = "overview"
	KindDependencies = "dependencies"
	KindUsage        = "usage"
	KindNotes        = "notes"
	KindChanges      = "changes"
)

// Kinds returns every standard content kind in a stable order.
func Kinds() []string {
	return []string{KindPurpose, KindOverview, KindDependencies, KindUsage, KindNotes, KindChanges}
}

// DefaultKinds is the set requested when the caller configures none.
func DefaultKinds() []string {
	return []string{KindPurpose, KindOverview, KindDependencies}
}

// IsKnownKind reports whether kind is one of Kinds.
func IsKnownKind(kind string) bool {
	return slices.Contains(Kinds(), kind)
}

// Request describes what a provider should write about.
type Request struct {
	// Target is the source file the content is about.
	Target string
	// Context carries variables already known for the target (file type, size...).
	Context map[string]any
	// Kind is set by the Manager for each requested kind.
	Kind string
	// MaxLength is an output-size hint in runes. Zero means no hint.
	MaxLength int
}

// Description is static, human-facing information about a provider.
type Description struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Summary  string            `json:"summary"`
	Kinds    []string          `json:"kinds"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Severity grades configuration issues.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single configuration finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Provider string   `json:"provider,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Provider != "" {
		return string(i.Severity) + ": " + i.Provider + ": " + i.Message
	}
	return string(i.Severity) + ": " + i.Message
}

// Provider produces text for one content kind at a time.
//
// Implementations must be safe for concurrent use and should return promptly
// once ctx is done.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
	Available() bool
	// SupportedKinds lists the kinds the provider can write. An empty list
	// means every kind.
	SupportedKinds() []string
	Describe() Description
	ValidateConfig() []Issue
}

// Supports reports whether p declares support for kind.
func Supports(p Provider, kind string) bool {
	kinds := p.SupportedKinds()
	return len(kinds) == 0 || slices.Contains(kinds, kind)
}
