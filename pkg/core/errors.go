package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/scribe/pkg/substitute"
)

// Common errors.
var (
	// ErrGeneration is matched by every *GenerationError.
	ErrGeneration = errors.New("generation failed")
	// ErrSourceNotFound reports a source file that does not exist.
	ErrSourceNotFound = errors.New("source file not found")
	// ErrInvalidTemplate reports a template with no usable body or malformed placeholders.
	ErrInvalidTemplate = errors.New("invalid template")
)

// Generation steps reported in GenerationError.Op.
const (
	OpTemplate   = "template"
	OpPrepare    = "prepare"
	OpBackup     = "backup"
	OpContent    = "content"
	OpSubstitute = "substitute"
	OpWrite      = "write"
)

// GenerationError is a failure of one Generate step.
type GenerationError struct {
	Op    string
	Path  string
	Kind  FileKind
	Cause error
}

func (e *GenerationError) Error() string {
	msg := "generation " + e.Op
	if e.Kind != "" {
		msg += " " + string(e.Kind)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" %q", e.Path)
	}
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// TemplateError lists the syntax issues that make a template body unusable.
type TemplateError struct {
	Template string
	Issues   []substitute.Issue
}

func (e *TemplateError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidTemplate, e.Template, strings.Join(parts, "; "))
}

func (e *TemplateError) Is(target error) bool { return target == ErrInvalidTemplate }
