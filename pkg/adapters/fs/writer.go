package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFilePerm is applied to generated documents.
const DefaultFilePerm os.FileMode = 0o644

// TempFilePrefix starts the name of every staging file. Staging files live
// next to their destination so the final rename never crosses a filesystem.
const TempFilePrefix = ".scribe-"

// TextWriter writes UTF-8 text atomically with "\n" line endings.
type TextWriter struct {
	Perm os.FileMode
}

// NewTextWriter returns a writer using DefaultFilePerm.
func NewTextWriter() *TextWriter {
	return &TextWriter{Perm: DefaultFilePerm}
}

// WriteText implements core.FileWriter.
func (w *TextWriter) WriteText(path, text string) error {
	perm := w.Perm
	if perm == 0 {
		perm = DefaultFilePerm
	}
	return replaceFile(path, []byte(NormalizeText(text)), perm)
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeText converts CRLF and CR to LF and replaces invalid UTF-8
// sequences with U+FFFD.
func NormalizeText(s string) string {
	return newlines.Replace(strings.ToValidUTF8(s, "\uFFFD"))
}

// replaceFile stages data beside dst and renames it into place. Readers
// observe either the previous document or the complete new one.
func replaceFile(dst string, data []byte, perm os.FileMode) (err error) {
	staging, err := os.CreateTemp(filepath.Dir(dst), TempFilePrefix+filepath.Base(dst)+"-*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", dst, err)
	}
	name := staging.Name()
	defer func() {
		if err != nil {
			os.Remove(name)
		}
	}()

	_, werr := staging.Write(data)
	if werr == nil {
		werr = staging.Sync()
	}
	if cerr := staging.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(name, perm)
	}
	if werr != nil {
		return fmt.Errorf("stage %s: %w", dst, werr)
	}

	if err := os.Rename(name, dst); err != nil {
		return fmt.Errorf("replace %s: %w", dst, err)
	}
	return nil
}
