package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Missing Default File Yields Defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())
		s, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Defaults(), s)
	})

	t.Run("Missing Explicit File Fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("YAML Overrides Defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scribe.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
output_root: out/docs
backup: false
template:
  name: mini
  index: "# {{filename}}"
  history: "- {{date}}"
  defaults:
    author: Docs Team
  required: [author]
variables:
  project: scribe
content:
  enabled: false
  preferred: canned
  kinds: purpose,usage
  max_length: 200
  retry:
    max_retries: 5
    base_delay: 250ms
    max_delay: 2s
    multiplier: 1.5
  providers:
    - name: canned
      type: mock
      responses:
        purpose: Does things
categories:
  - pattern: "**/cmd/**"
    category: entrypoint
watch:
  debounce: 1s
`), 0o644))

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "out/docs", s.OutputRoot)
		assert.False(t, s.Backup)
		assert.Equal(t, 10, s.MaxBackups)
		assert.Equal(t, "mini", s.Template.Name)
		assert.Equal(t, "Docs Team", s.Template.Defaults["author"])
		assert.Equal(t, []string{"author"}, s.Template.Required)
		assert.Equal(t, "scribe", s.Variables["project"])
		assert.False(t, s.Content.Enabled)
		assert.Equal(t, []string{"purpose", "usage"}, s.Content.Kinds)
		assert.Equal(t, 200, s.Content.MaxLength)
		assert.Equal(t, 5, s.Content.Retry.MaxRetries)
		assert.Equal(t, 250*time.Millisecond, s.Content.Retry.BaseDelay)
		assert.Equal(t, 2*time.Second, s.Content.Retry.MaxDelay)
		require.Len(t, s.Content.Providers, 1)
		assert.Equal(t, "Does things", s.Content.Providers[0].Responses["purpose"])
		assert.Equal(t, "entrypoint", s.Categories[0].Category)
		assert.Equal(t, time.Second, s.Watch.Debounce)
	})

	t.Run("JSON Is Accepted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scribe.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"output_root": "json-out", "max_backups": 3}`), 0o644))
		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "json-out", s.OutputRoot)
		assert.Equal(t, 3, s.MaxBackups)
	})
}

func TestValidate(t *testing.T) {
	t.Run("Rejects Bad Values", func(t *testing.T) {
		_, err := Parse([]byte(`
output_root: ""
max_backups: -1
content:
  max_length: -5
  providers:
    - name: a
      type: http
    - name: a
`), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output_root")
		assert.Contains(t, err.Error(), "max_backups")
		assert.Contains(t, err.Error(), "content.max_length")
		assert.Contains(t, err.Error(), "unsupported type")
		assert.Contains(t, err.Error(), "duplicate name")
	})

	t.Run("Rejects Malformed YAML", func(t *testing.T) {
		_, err := Parse([]byte("output_root: [unclosed"), false)
		assert.Error(t, err)
	})

	t.Run("Defaults Are Valid", func(t *testing.T) {
		assert.NoError(t, Defaults().Validate())
	})
}
