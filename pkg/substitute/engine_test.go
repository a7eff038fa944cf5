package substitute_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/scribe/pkg/substitute"
)

type panicky struct{}

func (panicky) String() string { panic("boom") }

type version struct{ major, minor int }

func (v *version) String() string { return fmt.Sprintf("v%d.%d", v.major, v.minor) }

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
}

func TestSubstitute(t *testing.T) {
	engine := substitute.New(substitute.WithClock(fixedClock))

	t.Run("Template Without Placeholders Is Unchanged", func(t *testing.T) {
		for _, tmpl := range []string{"", "plain text", "line one\nline two", "a { b"} {
			out, err := engine.Substitute(tmpl, substitute.Variables{"x": 1})
			require.NoError(t, err)
			assert.Equal(t, tmpl, out)
		}
	})

	t.Run("Greeting Scenario Uses Caller Variables And Date Builtin", func(t *testing.T) {
		out, err := engine.Substitute("Hello {{name}}, file {{filename}}, date {{date}}",
			substitute.Variables{"name": "Dev", "filename": "a.py"})
		require.NoError(t, err)
		assert.Equal(t, "Hello Dev, file a.py, date 2024-03-09", out)
	})

	t.Run("Default Engine Date Matches Today", func(t *testing.T) {
		out, err := substitute.Substitute("{{date}}", nil)
		require.NoError(t, err)
		assert.Equal(t, time.Now().Format("2006-01-02"), out)
	})

	t.Run("Unknown Placeholder Stays Verbatim", func(t *testing.T) {
		out, err := engine.Substitute("A {{missing}} and {{missing}} B", substitute.Variables{})
		require.NoError(t, err)
		assert.Equal(t, "A {{missing}} and {{missing}} B", out)
	})

	t.Run("Repeated Placeholder Is Substituted Uniformly", func(t *testing.T) {
		out, err := engine.Substitute("{{x}}-{{x}}-{{x}}", substitute.Variables{"x": "v"})
		require.NoError(t, err)
		assert.Equal(t, "v-v-v", out)
	})

	t.Run("Caller Variable Overrides Builtin", func(t *testing.T) {
		out, err := engine.Substitute("{{date}}", substitute.Variables{"date": "yesterday"})
		require.NoError(t, err)
		assert.Equal(t, "yesterday", out)
	})

	t.Run("Builtins", func(t *testing.T) {
		out, err := engine.Substitute("{{timestamp}}|{{datetime}}|{{year}}", nil)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-09T14:05:06Z|2024-03-09 14:05:06|2024", out)
	})

	t.Run("Substituted Values Are Not Rescanned", func(t *testing.T) {
		out, err := engine.Substitute("{{a}}", substitute.Variables{"a": "{{b}}", "b": "nope"})
		require.NoError(t, err)
		assert.Equal(t, "{{b}}", out)
	})

	t.Run("Typed Nil Value Is Unfilled", func(t *testing.T) {
		var missing *version
		out, err := engine.Substitute("x={{v}} y={{w}}", substitute.Variables{"v": missing, "w": &version{1, 2}})
		require.NoError(t, err)
		assert.Equal(t, "x=[To be filled] y=v1.2", out)
	})

	t.Run("Formatting Panic Becomes Substitution Error", func(t *testing.T) {
		tmpl := "value: {{bad}}"
		_, err := engine.Substitute(tmpl, substitute.Variables{"bad": panicky{}, "ok": 1})
		require.Error(t, err)
		assert.ErrorIs(t, err, substitute.ErrSubstitution)

		var subErr *substitute.SubstitutionError
		require.True(t, errors.As(err, &subErr))
		assert.Equal(t, len(tmpl), subErr.TemplateLength)
		assert.Equal(t, 2, subErr.VariableCount)
		assert.Equal(t, "bad", subErr.Placeholder)
	})
}

func TestRender(t *testing.T) {
	engine := substitute.New(substitute.WithClock(fixedClock))

	res, err := engine.Render("{{a}} {{b}} {{date}} {{a}} {{zz}}", substitute.Variables{"a": true, "b": nil})
	require.NoError(t, err)
	assert.Equal(t, "Yes [To be filled] 2024-03-09 Yes {{zz}}", res.Text)
	assert.Equal(t, []string{"a", "b", "date", "zz"}, res.Found)
	assert.Equal(t, []string{"a", "b", "date"}, res.Resolved)
	assert.Equal(t, []string{"zz"}, res.Unresolved)
}

func TestPreview(t *testing.T) {
	engine := substitute.New()

	cases := []struct {
		name string
		tmpl string
		vars substitute.Variables
	}{
		{"Empty", "", nil},
		{"All Resolved", "{{a}} {{date}}", substitute.Variables{"a": 1}},
		{"Mixed", "{{a}} {{b}} {{c}}", substitute.Variables{"b": "x"}},
		{"Malformed Ignored", "{{ a }} {a} {{b}}", substitute.Variables{"a": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := engine.Preview(tc.tmpl, tc.vars)
			union := append(append([]string{}, p.Resolved...), p.Unresolved...)
			assert.ElementsMatch(t, p.Found, union)
			for _, r := range p.Resolved {
				assert.NotContains(t, p.Unresolved, r)
			}
		})
	}

	t.Run("Context Sample Is Bounded And Truncated", func(t *testing.T) {
		vars := substitute.Variables{}
		for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
			vars[k] = k
		}
		long := ""
		for range 80 {
			long += "x"
		}
		vars["a"] = long

		p := engine.Preview("{{a}}", vars)
		assert.Len(t, p.ContextSample, 10)
		assert.Equal(t, long[:50]+"...", p.ContextSample["a"])
		assert.NotContains(t, p.ContextSample, "l")
	})

	t.Run("Formatting Fault Is Reported In Sample", func(t *testing.T) {
		p := engine.Preview("{{bad}}", substitute.Variables{"bad": panicky{}})
		assert.Equal(t, []string{"bad"}, p.Resolved)
		assert.Contains(t, p.ContextSample["bad"], "format error")
	})
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b_2"}, substitute.Names("{{b_2}} {{a}} {{a}} {{not valid}} {c}"))
	assert.Empty(t, substitute.Names("nothing here"))
}
