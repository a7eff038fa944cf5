package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/scribe/internal/logging"
	"github.com/aretw0/scribe/pkg/core"
)

const (
	// BackupDirName holds timestamped copies of replaced documents.
	BackupDirName = ".backups"
	// DefaultDirPerm is applied to created output directories.
	DefaultDirPerm os.FileMode = 0o755

	backupStampLayout = "20060102-150405.000"
)

// ErrEmptyPath is returned when no source path is given.
var ErrEmptyPath = errors.New("empty source path")

// Directory is the filesystem DirectoryService. Output for a source file
// lives under Root in a directory that mirrors the source's path relative
// to Base.
type Directory struct {
	Root string
	Base string

	names      map[core.FileKind]string
	maxBackups int
	now        func() time.Time
	writer     *TextWriter
	logger     *slog.Logger

	mu         sync.RWMutex
	lastBackup string
	backups    int
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithBase sets the directory source paths are made relative to.
// It defaults to the working directory.
func WithBase(base string) DirectoryOption {
	return func(d *Directory) { d.Base = base }
}

// WithFileName overrides the file name used for kind. Names containing
// path separators or glob metacharacters are ignored.
func WithFileName(kind core.FileKind, name string) DirectoryOption {
	return func(d *Directory) {
		if name != "" && !strings.ContainsAny(name, `/\*?[]{},`) {
			d.names[kind] = name
		}
	}
}

// WithMaxBackups keeps only the n most recent backup sets. Zero keeps all.
func WithMaxBackups(n int) DirectoryOption {
	return func(d *Directory) { d.maxBackups = max(n, 0) }
}

// WithClock sets the time source for backup names.
func WithClock(now func() time.Time) DirectoryOption {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DirectoryOption {
	return func(d *Directory) { d.logger = logging.OrNop(l) }
}

// WithPerm sets the permission of written documents.
func WithPerm(perm os.FileMode) DirectoryOption {
	return func(d *Directory) { d.writer.Perm = perm }
}

// NewDirectory creates a Directory rooted at root.
func NewDirectory(root string, opts ...DirectoryOption) *Directory {
	d := &Directory{
		Root: root,
		names: map[core.FileKind]string{
			core.FileIndex:   "index.md",
			core.FileHistory: "history.md",
		},
		now:    time.Now,
		writer: NewTextWriter(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.Base == "" {
		if wd, err := os.Getwd(); err == nil {
			d.Base = wd
		}
	}
	return d
}

// ResolveOutputDir maps filePath to its output directory without touching disk.
func (d *Directory) ResolveOutputDir(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", ErrEmptyPath
	}
	if d.Root == "" {
		return "", errors.New("output root is not configured")
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", filePath, err)
	}

	rel, err := filepath.Rel(d.Base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// Outside Base: mirror the absolute path instead.
		rel = strings.TrimLeft(strings.TrimPrefix(abs, filepath.VolumeName(abs)), `/\`)
	}

	parts := []string{d.Root}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == "" {
			continue
		}
		parts = append(parts, sanitizeSegment(seg))
	}
	if len(parts) == 1 {
		return "", fmt.Errorf("resolve %q: path has no file component", filePath)
	}
	return filepath.Join(parts...), nil
}

func sanitizeSegment(seg string) string {
	if seg == "." || seg == ".." {
		return "_"
	}
	var b strings.Builder
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// EnsureOutputDir resolves and creates the output directory for filePath.
func (d *Directory) EnsureOutputDir(ctx context.Context, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := d.ResolveOutputDir(filePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

// OutputPath returns the path of the document of the given kind in dir.
func (d *Directory) OutputPath(dir string, kind core.FileKind) string {
	name, ok := d.names[kind]
	if !ok {
		name = string(kind) + ".md"
	}
	return filepath.Join(dir, name)
}

// FindExisting reports which documents are present in dir. A missing dir
// means none are.
func (d *Directory) FindExisting(dir string) (map[core.FileKind]bool, error) {
	found := make(map[core.FileKind]bool, len(d.names))
	for kind := range d.names {
		found[kind] = false
	}

	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return found, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), d.pattern(), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	for kind, name := range d.names {
		found[kind] = slices.Contains(matches, name)
	}
	return found, nil
}

// pattern matches any configured document name at the top level.
func (d *Directory) pattern() string {
	names := make([]string, 0, len(d.names))
	for _, name := range d.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return "{" + strings.Join(names, ",") + "}"
}

// Backup copies the existing documents of dir into a new timestamped
// directory under BackupDirName and returns the copies. Failure leaves the
// originals untouched.
func (d *Directory) Backup(ctx context.Context, dir string) ([]string, error) {
	existing, err := d.FindExisting(dir)
	if err != nil {
		return nil, err
	}

	dest, err := d.newBackupDir(dir)
	if err != nil {
		return nil, err
	}

	var copied []string
	for _, kind := range core.FileKinds() {
		if !existing[kind] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		src := d.OutputPath(dir, kind)
		dst := filepath.Join(dest, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return copied, fmt.Errorf("backup %s: %w", src, err)
		}
		copied = append(copied, dst)
	}

	d.mu.Lock()
	d.lastBackup = dest
	d.backups++
	d.mu.Unlock()

	d.logger.Debug("backup created", "dir", dest, "files", len(copied))
	if d.maxBackups > 0 {
		if err := d.prune(dir); err != nil {
			d.logger.Warn("pruning old backups failed", "dir", dir, "error", err)
		}
	}
	return copied, nil
}

func (d *Directory) newBackupDir(dir string) (string, error) {
	base := filepath.Join(dir, BackupDirName, d.now().UTC().Format(backupStampLayout))
	dest := base
	for i := 1; ; i++ {
		err := os.MkdirAll(filepath.Dir(dest), DefaultDirPerm)
		if err == nil {
			err = os.Mkdir(dest, DefaultDirPerm)
		}
		if err == nil {
			return dest, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create backup dir: %w", err)
		}
		dest = fmt.Sprintf("%s-%d", base, i)
	}
}

// prune removes the oldest backup sets beyond maxBackups. Set names sort
// chronologically.
func (d *Directory) prune(dir string) error {
	root := filepath.Join(dir, BackupDirName)
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	var sets []string
	for _, e := range entries {
		if e.IsDir() {
			sets = append(sets, e.Name())
		}
	}
	slices.Sort(sets)
	for len(sets) > d.maxBackups {
		if err := os.RemoveAll(filepath.Join(root, sets[0])); err != nil {
			return err
		}
		sets = sets[1:]
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	return replaceFile(dst, data, info.Mode().Perm())
}

// WriteText implements core.FileWriter.
func (d *Directory) WriteText(path, text string) error {
	return d.writer.WriteText(path, text)
}

var (
	_ core.DirectoryService = (*Directory)(nil)
	_ core.FileWriter       = (*Directory)(nil)
	_ core.FileWriter       = (*TextWriter)(nil)
)
