package patch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/slok/patchcheck/internal/conventions"
	"github.com/slok/patchcheck/internal/log"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/process"
)

// DefaultTool is the patch tool used when none is configured.
const DefaultTool = "git"

// Validator checks if a diff applies cleanly without modifying the sandbox.
type Validator interface {
	// ValidateDryRun checks the diff against the sandbox files. A diff that doesn't
	// apply is not an error, only a result with OK false.
	ValidateDryRun(ctx context.Context, diff model.Diff, sb *model.Sandbox) (*model.ValidateResult, error)
}

//go:generate mockery --case underscore --output patchmock --outpkg patchmock --structname MockValidator --name Validator

// Applicator applies a diff to the sandbox files.
type Applicator interface {
	// Apply applies the diff on the sandbox. A diff that doesn't apply is not an
	// error, only a result with Applied false.
	Apply(ctx context.Context, diff model.Diff, sb *model.Sandbox) (*model.PatchResult, error)
}

//go:generate mockery --case underscore --output patchmock --outpkg patchmock --structname MockApplicator --name Applicator

// ToolConfig is the configuration shared by the patch validator and applicator.
type ToolConfig struct {
	// Runner runs the patch tool. Required.
	Runner process.Runner
	// Tool is the git binary name or path.
	Tool string
	// ExtraArgs are added to `git apply` (e.g. `--whitespace=nowarn`).
	ExtraArgs []string
	// Timeout for the patch tool, if zero the runner default is used.
	Timeout time.Duration
	Logger  log.Logger
}

func (c *ToolConfig) defaults(svc string) error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Tool == "" {
		c.Tool = DefaultTool
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": svc})
	return nil
}

// tool runs the patch tool over a diff written inside the sandbox.
type tool struct {
	runner    process.Runner
	name      string
	extraArgs []string
	timeout   time.Duration
	logger    log.Logger
}

func newTool(cfg ToolConfig) tool {
	return tool{
		runner:    cfg.Runner,
		name:      cfg.Tool,
		extraArgs: cfg.ExtraArgs,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}
}

func (t tool) run(ctx context.Context, diff model.Diff, sb *model.Sandbox, dryRun bool) (*model.CommandResult, error) {
	if err := diff.Validate(); err != nil {
		return nil, err
	}
	if sb == nil || sb.Root == "" {
		return nil, fmt.Errorf("sandbox is required: %w", model.ErrNotValid)
	}

	patchPath := conventions.SandboxPatchPath(sb.Root)
	metaDir := filepath.Dir(patchPath)
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create patch directory: %w: %w", model.ErrSandbox, err)
	}
	// Never overwrite an existing file, it would belong to the sandbox tree.
	f, err := os.OpenFile(patchPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not create patch file: %w: %w", model.ErrSandbox, err)
	}
	// The patch file is not part of the tree the checks will run on. Only the file
	// written here is removed, the meta dir only when it's left empty.
	defer func() {
		if err := os.Remove(patchPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.logger.Warningf("Could not remove patch file %s: %s", patchPath, err)
		}
		_ = os.Remove(metaDir)
	}()
	_, werr := f.WriteString(string(diff))
	if err := errors.Join(werr, f.Close()); err != nil {
		return nil, fmt.Errorf("could not write patch file: %w: %w", model.ErrSandbox, err)
	}

	cmd := t.command(sb, dryRun)
	t.logger.Debugf("Running %s", cmd)

	res, err := t.runner.Run(ctx, cmd, sb.Root)
	if err != nil {
		return nil, fmt.Errorf("could not run patch tool: %w", err)
	}

	if res.TimedOut {
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("%s: %s", cmd.Name, model.ErrTimeout))
	}

	return res, nil
}

func (t tool) command(sb *model.Sandbox, dryRun bool) model.Command {
	args := []string{"apply"}
	args = append(args, t.extraArgs...)
	if dryRun {
		args = append(args, "--check")
	}
	// Relative so it's valid for runners that mount the sandbox somewhere else.
	args = append(args, filepath.ToSlash(conventions.SandboxPatchRelPath()))

	return model.Command{
		Name: t.name,
		Args: args,
		Env: map[string]string{
			// Git must not discover a repository above the sandbox, paths outside
			// of the current dir would be silently ignored.
			"GIT_CEILING_DIRECTORIES": filepath.Dir(sb.Root),
		},
		Timeout: t.timeout,
	}
}

func appendLine(s, line string) string {
	if s == "" || s[len(s)-1] == '\n' {
		return s + line
	}
	return s + "\n" + line
}

// GitValidator validates diffs with `git apply --check`.
type GitValidator struct {
	tool tool
}

// NewGitValidator returns a new git patch validator.
func NewGitValidator(cfg ToolConfig) (*GitValidator, error) {
	if err := cfg.defaults("patch.GitValidator"); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &GitValidator{tool: newTool(cfg)}, nil
}

var _ Validator = &GitValidator{}

// ValidateDryRun satisfies Validator interface.
func (v *GitValidator) ValidateDryRun(ctx context.Context, diff model.Diff, sb *model.Sandbox) (*model.ValidateResult, error) {
	res, err := v.tool.run(ctx, diff, sb, true)
	if err != nil {
		return nil, err
	}

	return &model.ValidateResult{
		OK:      res.OK(),
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
		Preview: diff.Preview(model.PreviewMaxLen),
	}, nil
}

// GitApplicator applies diffs with `git apply`.
type GitApplicator struct {
	tool tool
}

// NewGitApplicator returns a new git patch applicator.
func NewGitApplicator(cfg ToolConfig) (*GitApplicator, error) {
	if err := cfg.defaults("patch.GitApplicator"); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &GitApplicator{tool: newTool(cfg)}, nil
}

var _ Applicator = &GitApplicator{}

// Apply satisfies Applicator interface.
func (a *GitApplicator) Apply(ctx context.Context, diff model.Diff, sb *model.Sandbox) (*model.PatchResult, error) {
	res, err := a.tool.run(ctx, diff, sb, false)
	if err != nil {
		return nil, err
	}

	return &model.PatchResult{
		Applied: res.OK(),
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
	}, nil
}
