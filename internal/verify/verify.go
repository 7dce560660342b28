package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/patchcheck/internal/log"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/process"
)

// Verifier runs the verification checks on a sandbox.
type Verifier interface {
	// RunChecks runs all the checks in order and returns one result per check. Failing
	// checks don't stop the next ones, only a cancelled context does.
	RunChecks(ctx context.Context, sb *model.Sandbox) ([]model.CheckResult, error)
}

//go:generate mockery --case underscore --output verifymock --outpkg verifymock --structname MockVerifier --name Verifier

// RunnerConfig is the configuration for the verification runner.
type RunnerConfig struct {
	// Runner runs the check commands. Required.
	Runner process.Runner
	// Checks are the ordered checks, if nil the default ones are used.
	Checks []model.CheckSpec
	Logger log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Checks == nil {
		c.Checks = model.DefaultChecks()
	}

	names := map[string]bool{}
	for _, check := range c.Checks {
		if err := check.Validate(); err != nil {
			return err
		}
		if names[check.Name] {
			return fmt.Errorf("check %q is duplicated", check.Name)
		}
		names[check.Name] = true
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "verify.Runner"})
	return nil
}

// Runner runs checks as commands in the sandbox root.
type Runner struct {
	runner process.Runner
	checks []model.CheckSpec
	logger log.Logger
}

// NewRunner returns a new verification runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		runner: cfg.Runner,
		checks: cfg.Checks,
		logger: cfg.Logger,
	}, nil
}

var _ Verifier = &Runner{}

// Checks returns the configured checks.
func (r *Runner) Checks() []model.CheckSpec {
	return r.checks
}

// RunChecks satisfies Verifier interface.
func (r *Runner) RunChecks(ctx context.Context, sb *model.Sandbox) ([]model.CheckResult, error) {
	if sb == nil || sb.Root == "" {
		return nil, fmt.Errorf("sandbox is required: %w", model.ErrNotValid)
	}
	logger := r.logger.WithCtxValues(ctx)

	results := make([]model.CheckResult, 0, len(r.checks))
	for _, check := range r.checks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("verification aborted: %w", err)
		}

		res, err := r.runCheck(ctx, check, sb)
		if err != nil {
			return nil, fmt.Errorf("verification aborted on check %q: %w", check.Name, err)
		}

		logger.Debugf("Check %s finished (ok: %t, exit code: %d, duration: %s)", res.Name, res.OK, res.ExitCode, res.Duration)
		results = append(results, *res)
	}

	return results, nil
}

func (r *Runner) runCheck(ctx context.Context, check model.CheckSpec, sb *model.Sandbox) (*model.CheckResult, error) {
	res, err := r.runner.Run(ctx, check.Command, sb.Root)
	if err != nil {
		// Only the caller going away aborts, a check tool that can't run is a failed check.
		if ctx.Err() != nil {
			return nil, err
		}
		if !errors.Is(err, model.ErrLaunch) {
			return nil, err
		}

		return &model.CheckResult{
			Name:     check.Name,
			OK:       false,
			Error:    err.Error(),
			ExitCode: -1,
		}, nil
	}

	errMsg := res.Stderr
	if res.TimedOut {
		timeout := check.Command.Timeout
		msg := fmt.Sprintf("check %q killed: %s", check.Name, model.ErrTimeout)
		if timeout > 0 {
			msg = fmt.Sprintf("check %q killed after %s: %s", check.Name, timeout, model.ErrTimeout)
		}
		if errMsg != "" && errMsg[len(errMsg)-1] != '\n' {
			errMsg += "\n"
		}
		errMsg += msg
	}

	return &model.CheckResult{
		Name:     check.Name,
		OK:       res.OK(),
		Output:   res.Stdout,
		Error:    errMsg,
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
		Duration: res.Duration,
	}, nil
}
