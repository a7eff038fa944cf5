package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned by FindRoot when no indicator exists above startDir.
var ErrRootNotFound = errors.New("project root not found")

// rootIndicators mark a project root, in priority order per directory.
var rootIndicators = []string{"scribe.yaml", "scribe.json", ".git", "go.mod"}

// FindRoot walks upwards from startDir looking for a project root: a
// directory holding a scribe settings file, a .git directory or a go.mod.
// Source paths are mirrored relative to this root.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, name := range rootIndicators {
			if hasFile(dir, name) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
