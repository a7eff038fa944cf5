package content

import (
	"context"
	"fmt"
	"path/filepath"
)

// PlaceholderName is the registry name of the built-in provider.
const PlaceholderName = "placeholder"

var placeholderTemplates = map[string]string{
	KindPurpose:      "[AI-generated purpose for %s pending]",
	KindOverview:     "[AI-generated overview of %s pending]",
	KindDependencies: "[AI-generated dependency summary for %s pending]",
	KindUsage:        "[AI-generated usage notes for %s pending]",
	KindNotes:        "[AI-generated notes for %s pending]",
	KindChanges:      "[AI-generated change summary for %s pending]",
}

// Placeholder writes deterministic stand-in text. It is always available and
// never fails, which makes it the Manager's guaranteed fallback.
type Placeholder struct{}

// NewPlaceholder returns the built-in provider.
func NewPlaceholder() *Placeholder { return &Placeholder{} }

func (*Placeholder) Name() string { return PlaceholderName }

func (*Placeholder) Available() bool { return true }

func (*Placeholder) SupportedKinds() []string { return nil }

func (*Placeholder) ValidateConfig() []Issue { return nil }

// Generate ignores ctx; the output depends only on the request kind and target.
func (*Placeholder) Generate(_ context.Context, req Request) (string, error) {
	return PlaceholderText(req), nil
}

func (*Placeholder) Describe() Description {
	return Description{
		Name:    PlaceholderName,
		Type:    "placeholder",
		Summary: "Deterministic stand-in text used when no provider can serve a kind",
		Kinds:   Kinds(),
	}
}

// PlaceholderText is the placeholder output for req.
func PlaceholderText(req Request) string {
	target := "this file"
	if req.Target != "" {
		target = filepath.Base(req.Target)
	}
	if tmpl, ok := placeholderTemplates[req.Kind]; ok {
		return fmt.Sprintf(tmpl, target)
	}
	kind := req.Kind
	if kind == "" {
		kind = "content"
	}
	return fmt.Sprintf("[AI-generated %s for %s pending]", kind, target)
}

// DisabledMarker is returned for kind while the Manager is disabled.
func DisabledMarker(kind string) string {
	return fmt.Sprintf("[AI content generation disabled: %s]", kind)
}

var _ Provider = (*Placeholder)(nil)
