package metadata

import (
	"github.com/aretw0/introspection"
)

// ExtractorState exposes internal state for observability.
type ExtractorState struct {
	Rules      []Rule `json:"rules"`
	KnownTypes int    `json:"known_types"`
	SniffSize  int    `json:"sniff_size"`
}

// State implements introspection.Introspectable.
func (e *Extractor) State() any {
	return ExtractorState{
		Rules:      append([]Rule(nil), e.rules...),
		KnownTypes: len(extensionTypes),
		SniffSize:  SniffSize,
	}
}

// ComponentType implements introspection.Component.
func (e *Extractor) ComponentType() string {
	return "metadata"
}

var _ introspection.Introspectable = (*Extractor)(nil)
var _ introspection.Component = (*Extractor)(nil)
