// Package substitute resolves {{identifier}} placeholders in plain-text templates.
//
// The engine is pure: it never touches the filesystem and never fails because a
// variable is missing. Unresolved placeholders are left verbatim so callers can
// decide (through Preview or Render) whether the result is acceptable.
//
// Resolution order for a discovered placeholder:
//
//  1. The caller-supplied Variables.
//  2. A built-in generator (date, timestamp, datetime, year).
//  3. Otherwise the placeholder text stays in place.
package substitute

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Variables maps placeholder names to arbitrary values.
// Values are converted to text with Format before substitution.
type Variables map[string]any

var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Builtin produces a value for a placeholder that needs no caller input.
type Builtin func(now time.Time) string

// DefaultBuiltins returns the generators available to every template.
func DefaultBuiltins() map[string]Builtin {
	return map[string]Builtin{
		"date":      func(now time.Time) string { return now.Format("2006-01-02") },
		"timestamp": func(now time.Time) string { return now.Format(time.RFC3339) },
		"datetime":  func(now time.Time) string { return now.Format("2006-01-02 15:04:05") },
		"year":      func(now time.Time) string { return now.Format("2006") },
	}
}

// Engine performs placeholder discovery and substitution.
// The zero value is not usable; construct it with New.
type Engine struct {
	now      func() time.Time
	builtins map[string]Builtin
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used by built-in generators.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithBuiltin registers (or replaces) a built-in generator.
func WithBuiltin(name string, fn Builtin) Option {
	return func(e *Engine) {
		e.builtins[name] = fn
	}
}

// New creates an Engine with the default built-ins.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:      time.Now,
		builtins: DefaultBuiltins(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of Render: the resolved text and the placeholder
// names grouped by resolution status. Name lists are sorted and deduplicated.
type Result struct {
	Text       string
	Found      []string
	Resolved   []string
	Unresolved []string
}

// Names returns the distinct placeholder names in tmpl, sorted.
func Names(tmpl string) []string {
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		seen[m[1]] = struct{}{}
	}
	return sortedKeys(seen)
}

// IsBuiltin reports whether name is served by a built-in generator.
func (e *Engine) IsBuiltin(name string) bool {
	_, ok := e.builtins[name]
	return ok
}

// Substitute returns tmpl with every resolvable placeholder replaced.
func (e *Engine) Substitute(tmpl string, vars Variables) (string, error) {
	res, err := e.Render(tmpl, vars)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Render substitutes tmpl and reports which placeholders were resolved.
func (e *Engine) Render(tmpl string, vars Variables) (Result, error) {
	found := Names(tmpl)
	if len(found) == 0 {
		return Result{Text: tmpl, Found: []string{}, Resolved: []string{}, Unresolved: []string{}}, nil
	}

	now := e.now()
	values := make(map[string]string, len(found))
	resolved := make([]string, 0, len(found))
	unresolved := make([]string, 0)

	for _, name := range found {
		if v, ok := vars[name]; ok {
			s, err := Format(v)
			if err != nil {
				return Result{}, &SubstitutionError{
					TemplateLength: len(tmpl),
					VariableCount:  len(vars),
					Placeholder:    name,
					Cause:          err,
				}
			}
			values[name] = s
			resolved = append(resolved, name)
			continue
		}
		if gen, ok := e.builtins[name]; ok {
			values[name] = gen(now)
			resolved = append(resolved, name)
			continue
		}
		unresolved = append(unresolved, name)
	}

	// One replacement pass: substituted values are never rescanned.
	text := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-2]
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})

	return Result{
		Text:       text,
		Found:      found,
		Resolved:   resolved,
		Unresolved: unresolved,
	}, nil
}

// Preview holds discovery diagnostics without the resolved text.
type Preview struct {
	Found         []string          `json:"found"`
	Resolved      []string          `json:"resolved"`
	Unresolved    []string          `json:"unresolved"`
	ContextSample map[string]string `json:"context_sample"`
}

const (
	sampleSize     = 10
	sampleValueMax = 50
)

// Preview reports what Substitute would do, without producing text.
// Formatting faults are reported in the sample instead of failing.
func (e *Engine) Preview(tmpl string, vars Variables) Preview {
	found := Names(tmpl)
	p := Preview{
		Found:         found,
		Resolved:      make([]string, 0, len(found)),
		Unresolved:    make([]string, 0),
		ContextSample: make(map[string]string),
	}
	for _, name := range found {
		_, isVar := vars[name]
		if isVar || e.IsBuiltin(name) {
			p.Resolved = append(p.Resolved, name)
		} else {
			p.Unresolved = append(p.Unresolved, name)
		}
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > sampleSize {
		keys = keys[:sampleSize]
	}
	for _, k := range keys {
		s, err := Format(vars[k])
		if err != nil {
			s = fmt.Sprintf("<format error: %v>", err)
		}
		p.ContextSample[k] = truncate(s, sampleValueMax)
	}
	return p
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var defaultEngine = New()

// Substitute resolves tmpl using the default engine.
func Substitute(tmpl string, vars Variables) (string, error) {
	return defaultEngine.Substitute(tmpl, vars)
}

// Render resolves tmpl using the default engine and returns diagnostics.
func Render(tmpl string, vars Variables) (Result, error) {
	return defaultEngine.Render(tmpl, vars)
}

// PreviewOf reports discovery diagnostics using the default engine.
func PreviewOf(tmpl string, vars Variables) Preview {
	return defaultEngine.Preview(tmpl, vars)
}
