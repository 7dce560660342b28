package process

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/slok/patchcheck/internal/model"
)

// Runner executes external commands.
//
// A command that runs and exits non-zero is not an error, the exit code is part of
// the result. Errors are only returned when the process could not be launched
// (wrapping model.ErrLaunch) or when the context was cancelled.
type Runner interface {
	Run(ctx context.Context, cmd model.Command, dir string) (*model.CommandResult, error)
}

//go:generate mockery --case underscore --output processmock --outpkg processmock --structname MockRunner --name Runner

// RunnerFunc is a helper to create runners from functions.
type RunnerFunc func(ctx context.Context, cmd model.Command, dir string) (*model.CommandResult, error)

// Run satisfies Runner interface.
func (r RunnerFunc) Run(ctx context.Context, cmd model.Command, dir string) (*model.CommandResult, error) {
	return r(ctx, cmd, dir)
}

// CheckBinaries checks that the binaries are available in PATH.
func CheckBinaries(binaries []string) []model.PreflightResult {
	results := make([]model.PreflightResult, 0, len(binaries))
	seen := map[string]bool{}
	for _, b := range binaries {
		if seen[b] {
			continue
		}
		seen[b] = true

		id := "binary_" + b
		path, err := exec.LookPath(b)
		if err != nil {
			results = append(results, model.PreflightResult{
				ID:      id,
				Message: fmt.Sprintf("%s not found in PATH", b),
				Status:  model.PreflightStatusError,
			})
			continue
		}

		results = append(results, model.PreflightResult{
			ID:      id,
			Message: fmt.Sprintf("%s found at %s", b, path),
			Status:  model.PreflightStatusOK,
		})
	}

	return results
}
