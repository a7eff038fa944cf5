package content

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sync"
)

// ErrInducedFailure is the default error of a Mock configured to fail.
var ErrInducedFailure = errors.New("induced provider failure")

// Mock is a configurable test double. It serves canned responses per kind,
// can be told to fail (always, or for the next n calls) and counts calls.
type Mock struct {
	name string

	mu          sync.Mutex
	responses   map[string]string
	kinds       []string
	available   bool
	failErr     error
	failLeft    int // <0 fails forever
	failKinds   map[string]bool
	calls       int
	callsByKind map[string]int
}

// MockOption configures a Mock at construction.
type MockOption func(*Mock)

// WithResponse sets the canned text for kind.
func WithResponse(kind, text string) MockOption {
	return func(m *Mock) { m.responses[kind] = text }
}

// WithResponses sets several canned texts at once.
func WithResponses(r map[string]string) MockOption {
	return func(m *Mock) { maps.Copy(m.responses, r) }
}

// WithKinds restricts the kinds the mock claims to support.
func WithKinds(kinds ...string) MockOption {
	return func(m *Mock) { m.kinds = slices.Clone(kinds) }
}

// WithFailure makes every call fail with err (ErrInducedFailure if nil).
func WithFailure(err error) MockOption {
	return func(m *Mock) { m.setFailure(-1, err) }
}

// WithFailingKinds limits induced failures to the given kinds.
func WithFailingKinds(kinds ...string) MockOption {
	return func(m *Mock) {
		for _, k := range kinds {
			m.failKinds[k] = true
		}
	}
}

// WithUnavailable starts the mock in the unavailable state.
func WithUnavailable() MockOption {
	return func(m *Mock) { m.available = false }
}

// NewMock creates an available mock that succeeds by default.
func NewMock(name string, opts ...MockOption) *Mock {
	m := &Mock{
		name:        name,
		responses:   make(map[string]string),
		available:   true,
		failKinds:   make(map[string]bool),
		callsByKind: make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mock) setFailure(n int, err error) {
	if err == nil {
		err = ErrInducedFailure
	}
	m.failErr = err
	m.failLeft = n
}

// FailWith makes every subsequent call fail with err.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setFailure(-1, err)
}

// FailTimes makes the next n calls fail with err, then recovers.
func (m *Mock) FailTimes(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setFailure(n, err)
}

// Recover clears any induced failure.
func (m *Mock) Recover() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = nil
	m.failLeft = 0
}

// SetAvailable toggles availability.
func (m *Mock) SetAvailable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = v
}

// Calls returns the total number of Generate calls.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// CallsFor returns the number of Generate calls for kind.
func (m *Mock) CallsFor(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callsByKind[kind]
}

func (m *Mock) Name() string { return m.name }

func (m *Mock) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

func (m *Mock) SupportedKinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.kinds)
}

func (m *Mock) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.callsByKind[req.Kind]++

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.failErr != nil && m.failLeft != 0 && (len(m.failKinds) == 0 || m.failKinds[req.Kind]) {
		if m.failLeft > 0 {
			m.failLeft--
		}
		return "", m.failErr
	}

	text, ok := m.responses[req.Kind]
	if !ok {
		text = fmt.Sprintf("[mock %s for %s]", req.Kind, filepath.Base(req.Target))
	}
	if req.MaxLength > 0 {
		if r := []rune(text); len(r) > req.MaxLength {
			text = string(r[:req.MaxLength])
		}
	}
	return text, nil
}

func (m *Mock) Describe() Description {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := slices.Clone(m.kinds)
	if len(kinds) == 0 {
		kinds = Kinds()
	}
	return Description{
		Name:    m.name,
		Type:    "mock",
		Summary: "Test double with canned responses and induced failures",
		Kinds:   kinds,
		Metadata: map[string]string{
			"responses": fmt.Sprint(len(m.responses)),
		},
	}
}

// ValidateConfig flags canned responses for kinds the mock does not support.
func (m *Mock) ValidateConfig() []Issue {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.kinds) == 0 {
		return nil
	}
	var issues []Issue
	for _, kind := range slices.Sorted(maps.Keys(m.responses)) {
		if !slices.Contains(m.kinds, kind) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Provider: m.name,
				Message:  fmt.Sprintf("response configured for unsupported kind %q", kind),
			})
		}
	}
	return issues
}

var _ Provider = (*Mock)(nil)
