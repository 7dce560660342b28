package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/slok/patchcheck/internal/conventions"
)

// Sandbox represents an ephemeral working directory owned by a single pipeline run.
type Sandbox struct {
	ID        string
	Root      string
	Files     []string // Seeded files, relative to Root and sorted.
	CreatedAt time.Time
}

// Path returns the absolute path of a sandbox relative path.
func (s Sandbox) Path(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// Baseline is the file set a sandbox is seeded with.
//
// SourceDir (an existing checkout) is copied first and Files are written on top,
// so both can be used at the same time to overlay files on a checkout.
type Baseline struct {
	// SourceDir is a local directory copied recursively into the sandbox (optional).
	SourceDir string
	// Files maps a relative slash separated path to its content (optional).
	Files map[string]string
}

// DefaultBaseline returns the baseline used when none is configured.
func DefaultBaseline() Baseline {
	return Baseline{
		Files: map[string]string{
			"example.py": "def add(a,b):\n    return a+b\n",
		},
	}
}

// IsEmpty returns true when the baseline would seed nothing.
func (b Baseline) IsEmpty() bool {
	return b.SourceDir == "" && len(b.Files) == 0
}

// Validate validates the baseline.
func (b Baseline) Validate() error {
	for p := range b.Files {
		if err := ValidateRelPath(p); err != nil {
			return fmt.Errorf("baseline file %q: %w", p, err)
		}
		if IsSandboxMetaPath(p) {
			return fmt.Errorf("baseline file %q: %s is reserved: %w", p, conventions.SandboxMetaDir, ErrNotValid)
		}
	}
	return nil
}

// IsSandboxMetaPath returns true when the relative path is inside the sandbox meta dir.
func IsSandboxMetaPath(p string) bool {
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	first, _, _ := strings.Cut(clean, "/")
	return first == conventions.SandboxMetaDir
}

// ValidateRelPath checks a path is relative and can't escape its root.
func ValidateRelPath(p string) error {
	if p == "" {
		return fmt.Errorf("path is empty: %w", ErrNotValid)
	}

	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	if filepath.IsAbs(filepath.FromSlash(p)) || strings.HasPrefix(p, "/") {
		return fmt.Errorf("path must be relative: %w", ErrNotValid)
	}
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path escapes the sandbox root: %w", ErrNotValid)
	}
	return nil
}
