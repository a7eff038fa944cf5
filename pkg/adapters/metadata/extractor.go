// Package metadata describes source files for the generator: type by
// extension, category by path rules and a binary sniff of the first bytes.
package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/scribe/pkg/core"
)

// SniffSize is how much of a file is read to decide whether it is binary.
const SniffSize = 8 << 10

var extensionTypes = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".mjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".jsx":   "javascript",
	".java":  "java",
	".kt":    "kotlin",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".sh":    "shell",
	".bash":  "shell",
	".sql":   "sql",
	".md":    "markdown",
	".rst":   "restructuredtext",
	".txt":   "text",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".html":  "html",
	".css":   "css",
	".proto": "protobuf",
	".png":   "image",
	".jpg":   "image",
	".jpeg":  "image",
	".gif":   "image",
	".pdf":   "pdf",
}

// Rule assigns Category to paths matching the doublestar Pattern.
type Rule struct {
	Pattern  string `yaml:"pattern" mapstructure:"pattern"`
	Category string `yaml:"category" mapstructure:"category"`
}

// DefaultRules is consulted in order; the first match wins.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "**/*_test.go", Category: "test"},
		{Pattern: "**/{test,tests,__tests__}/**", Category: "test"},
		{Pattern: "**/*.{test,spec}.{js,ts,jsx,tsx}", Category: "test"},
		{Pattern: "**/test_*.py", Category: "test"},
		{Pattern: "**/{docs,doc}/**", Category: "documentation"},
		{Pattern: "**/*.{md,rst,txt}", Category: "documentation"},
		{Pattern: "**/{Makefile,Dockerfile,go.mod,go.sum,package.json}", Category: "build"},
		{Pattern: "**/*.{yaml,yml,toml,json,ini,env}", Category: "config"},
		{Pattern: "**/{vendor,node_modules,third_party}/**", Category: "vendor"},
		{Pattern: "**/*.{png,jpg,jpeg,gif,svg,pdf}", Category: "asset"},
	}
}

// DefaultCategory is used when no rule matches.
const DefaultCategory = "source"

// Extractor implements core.MetadataService on the local filesystem.
type Extractor struct {
	rules []Rule
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRules prepends rules ahead of the defaults.
func WithRules(rules ...Rule) Option {
	return func(e *Extractor) { e.rules = slices.Concat(rules, e.rules) }
}

// New returns an Extractor. Invalid patterns are rejected.
func New(opts ...Option) (*Extractor, error) {
	e := &Extractor{rules: DefaultRules()}
	for _, opt := range opts {
		opt(e)
	}
	for _, r := range e.rules {
		if !doublestar.ValidatePattern(r.Pattern) {
			return nil, fmt.Errorf("invalid category pattern %q", r.Pattern)
		}
	}
	return e, nil
}

// Extract stats and sniffs filePath. Errors for a missing file wrap
// fs.ErrNotExist and core.ErrSourceNotFound.
func (e *Extractor) Extract(ctx context.Context, filePath string) (core.FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return core.FileMetadata{}, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return core.FileMetadata{}, fmt.Errorf("%w: %w", core.ErrSourceNotFound, err)
	}
	if err != nil {
		return core.FileMetadata{}, err
	}
	if info.IsDir() {
		return core.FileMetadata{}, fmt.Errorf("%s is a directory", filePath)
	}

	name := filepath.Base(filePath)
	ext := filepath.Ext(name)
	md := core.FileMetadata{
		Path:      filePath,
		Name:      name,
		Extension: ext,
		Stem:      strings.TrimSuffix(name, ext),
		Type:      TypeOf(name),
		Category:  e.Category(filePath),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
	}

	binary, err := sniffBinary(filePath)
	if err != nil {
		return md, fmt.Errorf("sniff %s: %w", filePath, err)
	}
	md.IsBinary = binary
	return md, nil
}

// TypeOf maps a file name to a type by extension, "unknown" if unmapped.
func TypeOf(name string) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	switch filepath.Base(name) {
	case "Makefile":
		return "make"
	case "Dockerfile":
		return "docker"
	}
	return "unknown"
}

// Category applies the rules to filePath in slash form.
func (e *Extractor) Category(filePath string) string {
	p := filepath.ToSlash(strings.TrimPrefix(filePath, filepath.VolumeName(filePath)))
	p = strings.TrimLeft(p, "/")
	for _, r := range e.rules {
		if ok, _ := doublestar.Match(r.Pattern, p); ok {
			return r.Category
		}
	}
	return DefaultCategory
}

func sniffBinary(filePath string) (bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, SniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}

var _ core.MetadataService = (*Extractor)(nil)
