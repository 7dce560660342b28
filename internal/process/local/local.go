package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/slok/patchcheck/internal/log"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/process"
)

const (
	// DefaultTimeout is the timeout used for commands that don't set one.
	DefaultTimeout = 5 * time.Minute
	// DefaultMaxOutputBytes is the capture limit for each output stream.
	DefaultMaxOutputBytes = 1 << 20 // 1 MiB.

	// waitDelay is how long we wait for the output pipes after the process has been killed,
	// grandchildren that inherited the pipes could keep them open otherwise.
	waitDelay = 5 * time.Second
)

// DefaultInheritedEnv are the host environment variables passed down to the commands.
var DefaultInheritedEnv = []string{"PATH", "HOME", "USER", "LANG", "LC_ALL", "TMPDIR", "TERM"}

// RunnerConfig is the configuration for the local process runner.
type RunnerConfig struct {
	// DefaultTimeout is used when the command doesn't set a timeout.
	DefaultTimeout time.Duration
	// MaxOutputBytes is the capture limit for stdout and stderr (each one).
	MaxOutputBytes int
	// InheritedEnv are the host env var names that will be passed to the processes.
	InheritedEnv []string
	Logger       log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("default timeout can't be negative")
	}
	if c.DefaultTimeout == 0 {
		c.DefaultTimeout = DefaultTimeout
	}
	if c.MaxOutputBytes < 0 {
		return fmt.Errorf("max output bytes can't be negative")
	}
	if c.MaxOutputBytes == 0 {
		c.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if c.InheritedEnv == nil {
		c.InheritedEnv = DefaultInheritedEnv
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "process.Local"})
	return nil
}

// Runner runs commands as host processes.
type Runner struct {
	defaultTimeout time.Duration
	maxOutputBytes int
	inheritedEnv   []string
	logger         log.Logger
}

// NewRunner returns a new local process runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		defaultTimeout: cfg.DefaultTimeout,
		maxOutputBytes: cfg.MaxOutputBytes,
		inheritedEnv:   cfg.InheritedEnv,
		logger:         cfg.Logger,
	}, nil
}

var _ process.Runner = &Runner{}

// Run runs the command in dir and blocks until it finishes, times out or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, cmd model.Command, dir string) (*model.CommandResult, error) {
	logger := r.logger.WithCtxValues(ctx)

	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("working directory %q: %w: %w", dir, model.ErrLaunch, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory %q is not a directory: %w", dir, model.ErrLaunch)
	}

	bin, err := r.lookPath(cmd.Name, dir)
	if err != nil {
		return nil, fmt.Errorf("could not find %q: %w: %w", cmd.Name, model.ErrLaunch, err)
	}

	timeout := cmd.Timeout
	if timeout == 0 {
		timeout = r.defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, bin, cmd.Args...)
	c.Dir = dir
	c.Env = r.env(cmd.Env)
	c.WaitDelay = waitDelay
	setProcessGroup(c)

	stdout := process.NewLimitedBuffer(r.maxOutputBytes)
	stderr := process.NewLimitedBuffer(r.maxOutputBytes)
	c.Stdout = stdout
	c.Stderr = stderr

	logger.Debugf("Running %q in %s (timeout %s)", cmd.String(), dir, timeout)

	start := time.Now()
	err = c.Run()
	res := &model.CommandResult{
		Duration:  time.Since(start),
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}
	if res.Truncated {
		logger.Warningf("Output of %q truncated to %d bytes", cmd.Name, r.maxOutputBytes)
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		// The caller went away, don't report a result for a process we killed on its behalf.
		case ctx.Err() != nil:
			return nil, fmt.Errorf("running %q: %w", cmd.Name, ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			res.ExitCode = -1
			res.TimedOut = true
			logger.Warningf("Command %q killed after %s timeout", cmd.Name, timeout)
			return res, nil
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			return nil, fmt.Errorf("could not run %q: %w: %w", cmd.Name, model.ErrLaunch, err)
		}
	}

	logger.Debugf("Command %q exited with code %d after %s", cmd.Name, res.ExitCode, res.Duration)

	return res, nil
}

// lookPath resolves the binary, relative paths with separators are relative to the working dir.
func (r *Runner) lookPath(name, dir string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) && !filepath.IsAbs(name) {
		name = filepath.Join(dir, name)
	}
	return exec.LookPath(name)
}

func (r *Runner) env(extra map[string]string) []string {
	env := make([]string, 0, len(r.inheritedEnv)+len(extra))
	for _, k := range r.inheritedEnv {
		if v, ok := os.LookupEnv(k); ok {
			env = append(env, k+"="+v)
		}
	}

	// Sorted so the process environment is deterministic.
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}

	return env
}
