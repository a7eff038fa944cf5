package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProvider is matched by every *ProviderError.
	ErrProvider = errors.New("content provider failed")
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("content configuration invalid")
	// ErrDuplicateProvider is returned by Register for a name already in use.
	ErrDuplicateProvider = errors.New("provider already registered")
	// ErrEmptyContent is reported when a provider succeeds with no text.
	ErrEmptyContent = errors.New("provider returned empty content")
)

// ProviderError is a provider call that still failed after its retries.
// The Manager logs it and falls back; it does not reach generation callers.
type ProviderError struct {
	Provider string
	Kind     string
	Attempts int
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %q failed for %q after %d attempt(s): %v", e.Provider, e.Kind, e.Attempts, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// ConfigurationError bundles the issues found by Manager.ValidateConfiguration.
type ConfigurationError struct {
	Issues []Issue
}

func (e *ConfigurationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		msgs = append(msgs, i.String())
	}
	return "content configuration: " + strings.Join(msgs, "; ")
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
