package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/scribe/internal/logging"
	"github.com/aretw0/scribe/pkg/metrics"
	"github.com/aretw0/scribe/pkg/retry"
)

// Manager owns the provider registry and decides which provider serves each
// content kind. It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	enabled   bool
	preferred string

	fallback  Provider
	policy    retry.Policy
	retryOpts []retry.Option
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for fallback and retry reports.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logging.OrNop(l) }
}

// WithPolicy sets the retry policy applied to every provider call.
func WithPolicy(p retry.Policy) ManagerOption {
	return func(m *Manager) { m.policy = p.Normalize() }
}

// WithRetryOptions passes extra options (sleeper, jitter source) to each
// Retrier the manager builds.
func WithRetryOptions(opts ...retry.Option) ManagerOption {
	return func(m *Manager) { m.retryOpts = append(m.retryOpts, opts...) }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) ManagerOption {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithEnabled sets the initial state of the generation gate.
func WithEnabled(v bool) ManagerOption {
	return func(m *Manager) { m.enabled = v }
}

// WithPreferred sets the initial preferred provider name.
func WithPreferred(name string) ManagerOption {
	return func(m *Manager) { m.preferred = name }
}

// NewManager creates an enabled manager with an empty registry. The
// Placeholder provider is always used as the fallback and does not need to
// be registered.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		providers: make(map[string]Provider),
		enabled:   true,
		fallback:  NewPlaceholder(),
		policy:    retry.DefaultPolicy(),
		logger:    logging.NewNop(),
		recorder:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds p to the registry. Registration order drives auto-selection.
func (m *Manager) Register(p Provider) error {
	if p == nil {
		return errors.New("register: nil provider")
	}
	name := p.Name()
	if name == "" {
		return errors.New("register: provider has no name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateProvider)
	}
	m.providers[name] = p
	m.order = append(m.order, name)
	m.logger.Debug("provider registered", "provider", name)
	return nil
}

// Unregister removes the named provider. It reports whether it was present.
// A preference for the removed provider is kept and simply stops resolving.
func (m *Manager) Unregister(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[name]; !ok {
		return false
	}
	delete(m.providers, name)
	m.order = slices.DeleteFunc(m.order, func(n string) bool { return n == name })
	return true
}

// SetEnabled opens or closes the generation gate.
func (m *Manager) SetEnabled(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = v
}

// Enabled reports the gate state.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// SetPreferred overrides auto-selection. An empty name restores it.
func (m *Manager) SetPreferred(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferred = name
}

// Preferred returns the explicit preference, or "" under auto-selection.
func (m *Manager) Preferred() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.preferred
}

// Select returns the provider that would serve a request of any kind:
// the preferred provider if registered and available, else the first
// available provider in registration order, else the Placeholder.
func (m *Manager) Select() Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selectLocked("")
}

// SelectFor is Select restricted to providers that support kind.
func (m *Manager) SelectFor(kind string) Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selectLocked(kind)
}

func (m *Manager) selectLocked(kind string) Provider {
	usable := func(p Provider) bool {
		return p.Available() && (kind == "" || Supports(p, kind))
	}
	if m.preferred != "" {
		if p, ok := m.providers[m.preferred]; ok && usable(p) {
			return p
		}
	}
	for _, name := range m.order {
		if p := m.providers[name]; usable(p) {
			return p
		}
	}
	return m.fallback
}

// Generate produces text for every requested kind.
//
// While the manager is disabled each kind gets DisabledMarker and no provider
// is called. Otherwise each kind is served by SelectFor(kind) under the retry
// policy; a kind whose provider still fails is served by the Placeholder
// instead, leaving the other kinds untouched. Only cancellation of ctx stops
// the batch, in which case the error matches retry.ErrCancelled and the map
// holds the kinds finished so far.
func (m *Manager) Generate(ctx context.Context, req Request, kinds []string) (map[string]string, error) {
	out := make(map[string]string, len(kinds))

	if !m.Enabled() {
		for _, kind := range kinds {
			out[kind] = DisabledMarker(kind)
		}
		return out, nil
	}

	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return out, &retry.CancelledError{Cause: err}
		}
		text, err := m.generateKind(ctx, req, kind)
		if err != nil {
			return out, fmt.Errorf("content %q: %w", kind, err)
		}
		out[kind] = text
	}
	return out, nil
}

func (m *Manager) generateKind(ctx context.Context, req Request, kind string) (string, error) {
	req.Kind = kind
	p := m.SelectFor(kind)
	name := p.Name()

	retrier := retry.New(m.policy, append(slices.Clone(m.retryOpts),
		retry.WithOnRetry(func(attempt int, delay time.Duration, err error) {
			m.recorder.IncProviderRetry(name, kind)
			m.logger.Debug("retrying provider", "provider", name, "kind", kind,
				"attempt", attempt, "delay", delay, "error", err)
		}))...)

	attempts := 0
	text, err := retry.DoValue(ctx, retrier, func(ctx context.Context) (string, error) {
		attempts++
		m.recorder.IncProviderAttempt(name, kind)
		s, err := p.Generate(ctx, req)
		if err == nil && s == "" {
			err = ErrEmptyContent
		}
		return s, err
	})
	if err == nil {
		return text, nil
	}
	if errors.Is(err, retry.ErrCancelled) {
		return "", err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", &retry.CancelledError{Attempts: attempts, Cause: ctxErr, Last: err}
	}

	perr := &ProviderError{Provider: name, Kind: kind, Attempts: attempts, Cause: err}
	m.logger.Warn("content provider failed, using placeholder", "provider", name, "kind", kind, "error", perr)
	m.recorder.IncFallback(name, kind)

	fallback, ferr := m.fallback.Generate(ctx, req)
	if ferr != nil || fallback == "" {
		return PlaceholderText(req), nil
	}
	return fallback, nil
}

// ProviderStatus is the per-provider part of Status.
type ProviderStatus struct {
	Available   bool        `json:"available"`
	KindCount   int         `json:"kind_count"`
	Kinds       []string    `json:"kinds"`
	Description Description `json:"description"`
}

// Status is a read-only snapshot of the manager.
type Status struct {
	Enabled   bool                      `json:"enabled"`
	Preferred string                    `json:"preferred,omitempty"`
	Active    string                    `json:"active"`
	Order     []string                  `json:"order"`
	Providers map[string]ProviderStatus `json:"providers"`
}

// Status reports the registry without side effects.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Status{
		Enabled:   m.enabled,
		Preferred: m.preferred,
		Active:    m.selectLocked("").Name(),
		Order:     slices.Clone(m.order),
		Providers: make(map[string]ProviderStatus, len(m.providers)),
	}
	for name, p := range m.providers {
		kinds := p.SupportedKinds()
		if len(kinds) == 0 {
			kinds = Kinds()
		}
		st.Providers[name] = ProviderStatus{
			Available:   p.Available(),
			KindCount:   len(kinds),
			Kinds:       kinds,
			Description: p.Describe(),
		}
	}
	return st
}

// ValidateConfiguration lists problems with the current setup. It never
// changes state and never fails generation; callers decide what to do.
func (m *Manager) ValidateConfiguration() []Issue {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var issues []Issue
	if len(m.providers) == 0 {
		issues = append(issues, Issue{Severity: SeverityWarning, Message: "no providers registered; placeholder text will be used"})
	}

	available := 0
	for _, name := range m.order {
		if m.providers[name].Available() {
			available++
		}
	}
	if m.enabled && len(m.providers) > 0 && available == 0 {
		issues = append(issues, Issue{Severity: SeverityError, Message: "generation enabled but no registered provider is available"})
	}

	if m.preferred != "" {
		p, ok := m.providers[m.preferred]
		switch {
		case !ok:
			issues = append(issues, Issue{Severity: SeverityError, Provider: m.preferred, Message: "preferred provider is not registered"})
		case !p.Available():
			issues = append(issues, Issue{Severity: SeverityError, Provider: m.preferred, Message: "preferred provider is not available"})
		}
	}

	for _, name := range m.order {
		for _, issue := range m.providers[name].ValidateConfig() {
			if issue.Provider == "" {
				issue.Provider = name
			}
			issues = append(issues, issue)
		}
	}

	if err := m.policy.Validate(); err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Message: "retry policy: " + err.Error()})
	}
	return issues
}

// Err returns ValidateConfiguration as a *ConfigurationError, or nil when
// there is nothing to report.
func (m *Manager) Err() error {
	issues := m.ValidateConfiguration()
	if len(issues) == 0 {
		return nil
	}
	return &ConfigurationError{Issues: issues}
}
