package sandbox

import (
	"context"

	"github.com/slok/patchcheck/internal/model"
)

// Manager is the interface for ephemeral sandbox lifecycle management.
type Manager interface {
	// Create creates a new, uniquely named, sandbox seeded with the baseline.
	// Errors wrap model.ErrSandbox, partial state is cleaned up before returning.
	Create(ctx context.Context, baseline model.Baseline) (*model.Sandbox, error)
	// Destroy removes the sandbox. It never fails, cleanup errors are only logged so
	// they can't hide the result of the work done in the sandbox.
	Destroy(ctx context.Context, sb *model.Sandbox)
}

//go:generate mockery --case underscore --output sandboxmock --outpkg sandboxmock --structname MockManager --name Manager

// With creates a sandbox, calls fn with it and destroys it on every exit path,
// including fn panicking.
func With[T any](ctx context.Context, m Manager, baseline model.Baseline, fn func(ctx context.Context, sb *model.Sandbox) (T, error)) (T, error) {
	sb, err := m.Create(ctx, baseline)
	if err != nil {
		var zero T
		return zero, err
	}
	defer m.Destroy(context.WithoutCancel(ctx), sb)

	return fn(ctx, sb)
}
