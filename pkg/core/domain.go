package core

import (
	"time"

	"github.com/aretw0/scribe/pkg/substitute"
)

// FileKind identifies one of the two generated documents.
type FileKind string

const (
	FileIndex   FileKind = "index"
	FileHistory FileKind = "history"
)

// FileKinds returns the generated documents in write order.
func FileKinds() []FileKind {
	return []FileKind{FileIndex, FileHistory}
}

// Template is a named pair of bodies plus template-level defaults.
type Template struct {
	Name        string         `yaml:"name" mapstructure:"name"`
	Description string         `yaml:"description" mapstructure:"description"`
	Index       string         `yaml:"index" mapstructure:"index"`
	History     string         `yaml:"history" mapstructure:"history"`
	Defaults    map[string]any `yaml:"defaults" mapstructure:"defaults"`
	// Required names variables that must resolve for the template to be usable.
	Required []string `yaml:"required" mapstructure:"required"`
}

// Body returns the body for kind.
func (t Template) Body(kind FileKind) string {
	switch kind {
	case FileIndex:
		return t.Index
	case FileHistory:
		return t.History
	}
	return ""
}

// FileMetadata describes a source file.
type FileMetadata struct {
	Path      string
	Name      string
	Extension string
	Stem      string
	Type      string
	Category  string
	Size      int64
	IsBinary  bool
	ModTime   time.Time
}

// GenerateOptions tunes a single Generate call.
type GenerateOptions struct {
	// Backup copies existing output files aside before overwriting them.
	Backup bool
}

// Outcome summarizes a successful Generate call.
type Outcome struct {
	RunID     string              `json:"run_id"`
	Source    string              `json:"source"`
	OutputDir string              `json:"output_dir"`
	Files     map[FileKind]string `json:"files"`
	Sizes     map[FileKind]int    `json:"sizes"`
	BackedUp  []string            `json:"backed_up,omitempty"`
	Content   []string            `json:"content_kinds,omitempty"`
	Duration  time.Duration       `json:"duration"`
}

// Severity grades validation issues.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Kind     FileKind `json:"kind,omitempty"`
	Message  string   `json:"message"`
}

// Issue codes.
const (
	CodeSourceMissing   = "source_missing"
	CodeEmptyBody       = "empty_body"
	CodeSyntax          = "syntax"
	CodeUnresolved      = "unresolved"
	CodeRequiredMissing = "required_missing"
	CodeOutputDir       = "output_dir"
)

func (i Issue) String() string {
	if i.Kind != "" {
		return string(i.Severity) + " [" + string(i.Kind) + "] " + i.Message
	}
	return string(i.Severity) + " " + i.Message
}

// BodyPreview is the dry-run view of one body.
type BodyPreview struct {
	substitute.Preview
	Syntax []substitute.Issue `json:"syntax,omitempty"`
}

// PreviewReport is the dry-run view of a generation.
type PreviewReport struct {
	Source    string                   `json:"source"`
	OutputDir string                   `json:"output_dir,omitempty"`
	Bodies    map[FileKind]BodyPreview `json:"bodies"`
	Rendered  map[FileKind]string      `json:"-"`
	// Ready is true when no body has syntax issues or unresolved placeholders.
	Ready bool `json:"ready"`
}

// BodyStats holds metrics for one body.
type BodyStats struct {
	Length     int     `json:"length"`
	Lines      int     `json:"lines"`
	Found      int     `json:"found"`
	Resolved   int     `json:"resolved"`
	Unresolved int     `json:"unresolved"`
	Coverage   float64 `json:"coverage"`
	Headings   int     `json:"headings"`
	Links      int     `json:"links"`
}

// Stats holds metrics for every body.
type Stats struct {
	Template string                 `json:"template"`
	Bodies   map[FileKind]BodyStats `json:"bodies"`
}
