package core

import (
	"context"

	"github.com/aretw0/scribe/pkg/content"
)

// DirectoryService owns the layout of generated documentation on disk.
// Adhering to this interface keeps the generator independent of where and
// how output directories are created.
type DirectoryService interface {
	// EnsureOutputDir creates (if needed) and returns the output directory for filePath.
	EnsureOutputDir(ctx context.Context, filePath string) (string, error)

	// ResolveOutputDir returns the output directory for filePath without creating it.
	ResolveOutputDir(filePath string) (string, error)

	// FindExisting reports which output files already exist in dir.
	FindExisting(dir string) (map[FileKind]bool, error)

	// Backup copies the existing output files of dir aside and returns the copies.
	Backup(ctx context.Context, dir string) ([]string, error)

	// OutputPath returns the path of the file of the given kind inside dir.
	OutputPath(dir string, kind FileKind) string
}

// MetadataService describes source files.
type MetadataService interface {
	// Extract returns metadata for filePath. Errors wrapping fs.ErrNotExist
	// mean the file is missing.
	Extract(ctx context.Context, filePath string) (FileMetadata, error)
}

// FileWriter persists generated text.
type FileWriter interface {
	WriteText(path, text string) error
}

// ContentSource produces supplementary content per kind. *content.Manager
// is the standard implementation.
type ContentSource interface {
	Generate(ctx context.Context, req content.Request, kinds []string) (map[string]string, error)
}

var _ ContentSource = (*content.Manager)(nil)
