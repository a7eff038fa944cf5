package scribe

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the release of this module, trimmed of whitespace.
var Version = strings.TrimSpace(version)
