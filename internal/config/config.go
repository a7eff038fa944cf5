// Package config loads scribe settings from a YAML (or JSON) file.
//
// The file is parsed into a generic map and then decoded with mapstructure so
// durations ("250ms") and comma-separated lists are accepted. A missing file
// yields Defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/scribe/pkg/adapters/metadata"
	"github.com/aretw0/scribe/pkg/content"
	"github.com/aretw0/scribe/pkg/core"
	"github.com/aretw0/scribe/pkg/retry"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "scribe.yaml"

// Settings is the on-disk configuration.
type Settings struct {
	OutputRoot string          `yaml:"output_root" mapstructure:"output_root"`
	Backup     bool            `yaml:"backup" mapstructure:"backup"`
	MaxBackups int             `yaml:"max_backups" mapstructure:"max_backups"`
	Log        LogSettings     `yaml:"log" mapstructure:"log"`
	Template   core.Template   `yaml:"template" mapstructure:"template"`
	Variables  map[string]any  `yaml:"variables" mapstructure:"variables"`
	Content    ContentSettings `yaml:"content" mapstructure:"content"`
	Categories []metadata.Rule `yaml:"categories" mapstructure:"categories"`
	Watch      WatchSettings   `yaml:"watch" mapstructure:"watch"`
	Metrics    MetricsSettings `yaml:"metrics" mapstructure:"metrics"`
}

// LogSettings selects the log level and handler.
type LogSettings struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ContentSettings configures supplementary content generation.
type ContentSettings struct {
	Enabled   bool               `yaml:"enabled" mapstructure:"enabled"`
	Preferred string             `yaml:"preferred" mapstructure:"preferred"`
	Kinds     []string           `yaml:"kinds" mapstructure:"kinds"`
	MaxLength int                `yaml:"max_length" mapstructure:"max_length"`
	Retry     retry.Policy       `yaml:"retry" mapstructure:"retry"`
	Providers []ProviderSettings `yaml:"providers" mapstructure:"providers"`
}

// ProviderSettings declares a provider to register. Only the "mock" type
// exists; real service integrations are out of scope.
type ProviderSettings struct {
	Name      string            `yaml:"name" mapstructure:"name"`
	Type      string            `yaml:"type" mapstructure:"type"`
	Kinds     []string          `yaml:"kinds" mapstructure:"kinds"`
	Responses map[string]string `yaml:"responses" mapstructure:"responses"`
	Fail      bool              `yaml:"fail" mapstructure:"fail"`
	Disabled  bool              `yaml:"disabled" mapstructure:"disabled"`
}

// WatchSettings tunes `scribe watch`.
type WatchSettings struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// MetricsSettings enables the Prometheus endpoint when Addr is set.
type MetricsSettings struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultTemplate is used when the settings file declares none.
func DefaultTemplate() core.Template {
	return core.Template{
		Name:        "default",
		Description: "Standard file documentation",
		Index: `# {{filename}}

| Field | Value |
|-------|-------|
| Path | {{file_path}} |
| Type | {{file_type}} |
| Category | {{file_category}} |
| Size | {{file_size}} bytes |

## Purpose

{{ai_purpose}}

## Overview

{{ai_overview}}

## Dependencies

{{ai_dependencies}}

## Notes

{{notes}}
`,
		History: `# History of {{filename}}

## {{date}}

- Documentation generated from template "{{template_name}}" at {{generated_at}}.
`,
		Defaults: map[string]any{
			"notes": nil,
		},
	}
}

// Defaults returns the settings used when no file is present.
func Defaults() Settings {
	return Settings{
		OutputRoot: "docs/files",
		Backup:     true,
		MaxBackups: 10,
		Log:        LogSettings{Level: "info", Format: "text"},
		Template:   DefaultTemplate(),
		Content: ContentSettings{
			Enabled: true,
			Kinds:   content.DefaultKinds(),
			Retry:   retry.DefaultPolicy(),
		},
		Watch: WatchSettings{Debounce: 200 * time.Millisecond},
	}
}

// Load reads path over Defaults. An empty path tries DefaultFile; a missing
// DefaultFile is not an error, a missing explicit path is.
func Load(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

// Parse decodes raw settings over Defaults.
func Parse(data []byte, isJSON bool) (Settings, error) {
	raw := map[string]any{}
	if isJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Settings{}, fmt.Errorf("parse config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}

	s := Defaults()
	if err := Decode(raw, &s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Decode maps raw into out with the hooks used for settings files.
func Decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		// Lists and maps from the file replace the defaults instead of merging.
		ZeroFields: true,
		Result:     out,
		TagName:    "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Validate checks cross-field constraints.
func (s Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.OutputRoot) == "" {
		errs = append(errs, errors.New("output_root must not be empty"))
	}
	if s.MaxBackups < 0 {
		errs = append(errs, errors.New("max_backups must be >= 0"))
	}
	if s.Content.MaxLength < 0 {
		errs = append(errs, errors.New("content.max_length must not be negative"))
	}
	if err := s.Content.Retry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("content.retry: %w", err))
	}
	seen := map[string]bool{}
	for i, p := range s.Content.Providers {
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("content.providers[%d]: name is required", i))
		case seen[p.Name]:
			errs = append(errs, fmt.Errorf("content.providers[%d]: duplicate name %q", i, p.Name))
		}
		seen[p.Name] = true
		if p.Type != "" && p.Type != "mock" {
			errs = append(errs, fmt.Errorf("content.providers[%d]: unsupported type %q", i, p.Type))
		}
	}
	for _, k := range s.Content.Kinds {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, errors.New("content.kinds: empty kind"))
		}
	}
	return errors.Join(errs...)
}
