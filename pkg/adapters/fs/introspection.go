package fs

import (
	"maps"

	"github.com/aretw0/introspection"

	"github.com/aretw0/scribe/pkg/core"
)

// DirectoryState exposes internal state for observability.
type DirectoryState struct {
	Root       string                   `json:"root"`
	Base       string                   `json:"base"`
	FileNames  map[core.FileKind]string `json:"file_names"`
	MaxBackups int                      `json:"max_backups"`
	Backups    int                      `json:"backups"`
	LastBackup string                   `json:"last_backup,omitempty"`
}

// State implements introspection.Introspectable.
func (d *Directory) State() any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DirectoryState{
		Root:       d.Root,
		Base:       d.Base,
		FileNames:  maps.Clone(d.names),
		MaxBackups: d.maxBackups,
		Backups:    d.backups,
		LastBackup: d.lastBackup,
	}
}

// ComponentType implements introspection.Component.
func (d *Directory) ComponentType() string {
	return "directory"
}

var _ introspection.Introspectable = (*Directory)(nil)
var _ introspection.Component = (*Directory)(nil)
