package local

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/patchcheck/internal/log"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/sandbox"
)

// DirPrefix is the prefix of every sandbox directory name.
const DirPrefix = "patchcheck-"

// ManagerConfig is the configuration for the local sandbox manager.
type ManagerConfig struct {
	// BaseDir is where sandbox directories are created, defaults to the OS temp dir.
	BaseDir string
	Logger  log.Logger
}

func (c *ManagerConfig) defaults() error {
	if c.BaseDir == "" {
		c.BaseDir = os.TempDir()
	}
	abs, err := filepath.Abs(c.BaseDir)
	if err != nil {
		return fmt.Errorf("invalid base dir: %w", err)
	}
	c.BaseDir = abs

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "sandbox.Local"})
	return nil
}

// Manager creates sandboxes as temporary directories on the local filesystem.
type Manager struct {
	baseDir string
	logger  log.Logger
}

// NewManager returns a new local sandbox manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{
		baseDir: cfg.BaseDir,
		logger:  cfg.Logger,
	}, nil
}

var _ sandbox.Manager = &Manager{}

// Create creates a new sandbox directory and seeds it with the baseline.
func (m *Manager) Create(ctx context.Context, baseline model.Baseline) (*model.Sandbox, error) {
	logger := m.logger.WithCtxValues(ctx)

	if err := baseline.Validate(); err != nil {
		return nil, fmt.Errorf("invalid baseline: %w", err)
	}

	if err := os.MkdirAll(m.baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create sandbox base directory: %w: %w", model.ErrSandbox, err)
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	root, err := os.MkdirTemp(m.baseDir, DirPrefix+strings.ToLower(id)+"-")
	if err != nil {
		return nil, fmt.Errorf("could not create sandbox directory: %w: %w", model.ErrSandbox, err)
	}

	files, err := m.seed(ctx, root, baseline)
	if err != nil {
		m.remove(logger, root)
		return nil, fmt.Errorf("could not seed sandbox: %w: %w", model.ErrSandbox, err)
	}

	logger.Debugf("Created sandbox %s at %s with %d files", id, root, len(files))

	return &model.Sandbox{
		ID:        id,
		Root:      root,
		Files:     files,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Destroy removes the sandbox directory tree.
func (m *Manager) Destroy(ctx context.Context, sb *model.Sandbox) {
	if sb == nil || sb.Root == "" {
		return
	}

	logger := m.logger.WithCtxValues(ctx)
	m.remove(logger, sb.Root)
	logger.Debugf("Destroyed sandbox %s", sb.ID)
}

func (m *Manager) remove(logger log.Logger, root string) {
	// Never remove something outside our base dir.
	if filepath.Dir(root) != m.baseDir || !strings.HasPrefix(filepath.Base(root), DirPrefix) {
		logger.Errorf("Refusing to remove %s, not a sandbox directory", root)
		return
	}

	if err := os.RemoveAll(root); err != nil {
		logger.Warningf("Could not remove sandbox directory %s: %s", root, err)
	}
}

func (m *Manager) seed(ctx context.Context, root string, baseline model.Baseline) ([]string, error) {
	seeded := map[string]struct{}{}

	if baseline.SourceDir != "" {
		if err := m.copyDir(ctx, baseline.SourceDir, root, seeded); err != nil {
			return nil, fmt.Errorf("could not copy %q: %w", baseline.SourceDir, err)
		}
	}

	// Sorted so the seeding order is deterministic.
	paths := make([]string, 0, len(baseline.Files))
	for p := range baseline.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		dst := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, fmt.Errorf("could not create directory for %q: %w", p, err)
		}
		if err := os.WriteFile(dst, []byte(baseline.Files[p]), 0o644); err != nil {
			return nil, fmt.Errorf("could not write %q: %w", p, err)
		}
		seeded[filepath.ToSlash(filepath.Clean(p))] = struct{}{}
	}

	files := make([]string, 0, len(seeded))
	for f := range seeded {
		files = append(files, f)
	}
	sort.Strings(files)

	return files, nil
}

// copyDir copies regular files and directories from src into dst. Symlinks and
// special files are skipped so nothing outside the checkout leaks into the sandbox.
func (m *Manager) copyDir(ctx context.Context, src, dst string, seeded map[string]struct{}) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir() && model.IsSandboxMetaPath(rel):
			m.logger.Debugf("Skipping reserved directory %s", path)
			return fs.SkipDir
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type().IsRegular():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			if err := copyFile(path, target, fi.Mode().Perm()); err != nil {
				return err
			}
			seeded[filepath.ToSlash(rel)] = struct{}{}
			return nil
		default:
			m.logger.Debugf("Skipping non regular file %s", path)
			return nil
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
