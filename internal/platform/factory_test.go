package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/scribe/internal/config"
	"github.com/aretw0/scribe/pkg/content"
	"github.com/aretw0/scribe/pkg/core"
	"github.com/aretw0/scribe/pkg/retry"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestNew(t *testing.T) {
	t.Run("Requires Output Root", func(t *testing.T) {
		_, err := New("")
		assert.Error(t, err)
	})

	t.Run("Generates End To End", func(t *testing.T) {
		base := t.TempDir()
		src := filepath.Join(base, "pkg", "tool.go")
		require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
		require.NoError(t, os.WriteFile(src, []byte("package pkg\n"), 0o644))

		s, err := New("docs",
			WithBase(base),
			WithProvider(content.NewMock("canned", content.WithResponse(content.KindPurpose, "Tooling helpers"))),
			WithContentKinds(content.KindPurpose),
			WithRetryOptions(retry.WithSleeper(noSleep)),
			WithFileName(core.FileIndex, "README.md"),
		)
		require.NoError(t, err)

		tmpl := core.Template{
			Name:    "t",
			Index:   "# {{filename}} ({{file_type}}, {{file_category}})\n{{ai_purpose}}\n",
			History: "- {{date}}\n",
		}
		out, err := s.Generator.Generate(context.Background(), src, tmpl, nil, core.GenerateOptions{Backup: true})
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(base, "docs", "pkg", "tool.go", "README.md"), out.Files[core.FileIndex])
		got, err := os.ReadFile(out.Files[core.FileIndex])
		require.NoError(t, err)
		assert.Equal(t, "# tool.go (go, source)\nTooling helpers\n", string(got))

		assert.Len(t, s.Components(), 4)
	})

	t.Run("Rejects Duplicate Providers", func(t *testing.T) {
		_, err := New("docs", WithBase(t.TempDir()),
			WithProvider(content.NewMock("a")),
			WithProvider(content.NewMock("a")),
		)
		assert.ErrorIs(t, err, content.ErrDuplicateProvider)
	})

	t.Run("Injected Manager Wins", func(t *testing.T) {
		m := content.NewManager(content.WithEnabled(false))
		s, err := New("docs", WithBase(t.TempDir()), WithContentManager(m), WithContentEnabled(true))
		require.NoError(t, err)
		assert.Same(t, m, s.Content)
		assert.False(t, s.Content.Enabled())
	})
}

func TestFromSettings(t *testing.T) {
	settings := config.Defaults()
	settings.Content.Enabled = false
	settings.Content.Preferred = "second"
	settings.Content.Providers = []config.ProviderSettings{
		{Name: "first", Responses: map[string]string{"purpose": "p"}},
		{Name: "second", Type: "mock", Fail: true},
	}

	opts, err := FromSettings(settings)
	require.NoError(t, err)

	s, err := New("docs", append(opts, WithBase(t.TempDir()))...)
	require.NoError(t, err)

	st := s.Content.Status()
	assert.False(t, st.Enabled)
	assert.Equal(t, "second", st.Preferred)
	assert.Equal(t, []string{"first", "second"}, st.Order)

	_, err = BuildProviders([]config.ProviderSettings{{Name: "x", Type: "http"}})
	assert.Error(t, err)

	t.Run("Max Length Limits Provider Output", func(t *testing.T) {
		base := t.TempDir()
		src := filepath.Join(base, "tool.go")
		require.NoError(t, os.WriteFile(src, []byte("package tool\n"), 0o644))

		settings := config.Defaults()
		settings.Content.Kinds = []string{content.KindPurpose}
		settings.Content.MaxLength = 7
		settings.Content.Providers = []config.ProviderSettings{
			{Name: "canned", Responses: map[string]string{content.KindPurpose: "Tooling helpers"}},
		}
		opts, err := FromSettings(settings)
		require.NoError(t, err)

		s, err := New("docs", append(opts, WithBase(base))...)
		require.NoError(t, err)

		tmpl := core.Template{Name: "t", Index: "{{ai_purpose}}", History: "-"}
		out, err := s.Generator.Generate(context.Background(), src, tmpl, nil, core.GenerateOptions{})
		require.NoError(t, err)
		got, err := os.ReadFile(out.Files[core.FileIndex])
		require.NoError(t, err)
		assert.Equal(t, "Tooling", string(got))
	})
}
