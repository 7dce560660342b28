package apply

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/slok/patchcheck/internal/log"
	"github.com/slok/patchcheck/internal/metrics"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/patch"
	"github.com/slok/patchcheck/internal/sandbox"
	"github.com/slok/patchcheck/internal/tracing"
	"github.com/slok/patchcheck/internal/verify"
)

// ServiceConfig is the configuration for the apply service.
type ServiceConfig struct {
	Manager    sandbox.Manager
	Applicator patch.Applicator
	Verifier   verify.Verifier
	// Baseline is used for the requests that don't have one, if empty the default one is used.
	Baseline model.Baseline
	Metrics  metrics.Recorder
	Tracer   trace.Tracer
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Manager == nil {
		return fmt.Errorf("sandbox manager is required")
	}
	if c.Applicator == nil {
		return fmt.Errorf("patch applicator is required")
	}
	if c.Verifier == nil {
		return fmt.Errorf("verifier is required")
	}
	if c.Baseline.IsEmpty() {
		c.Baseline = model.DefaultBaseline()
	}
	if err := c.Baseline.Validate(); err != nil {
		return fmt.Errorf("invalid baseline: %w", err)
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}
	if c.Tracer == nil {
		c.Tracer = tracing.NoopTracer
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Apply"})
	return nil
}

// Service applies diffs on ephemeral sandboxes and verifies the result.
type Service struct {
	manager    sandbox.Manager
	applicator patch.Applicator
	verifier   verify.Verifier
	baseline   model.Baseline
	metrics    metrics.Recorder
	tracer     trace.Tracer
	logger     log.Logger
}

// NewService creates a new apply service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		manager:    sandbox.NewMeasuredManager(metrics.OpApply, cfg.Metrics, cfg.Tracer, cfg.Manager),
		applicator: cfg.Applicator,
		verifier:   cfg.Verifier,
		baseline:   cfg.Baseline,
		metrics:    cfg.Metrics,
		tracer:     cfg.Tracer,
		logger:     cfg.Logger,
	}, nil
}

// Request contains the parameters for applying a diff.
type Request struct {
	Diff model.Diff
	// Baseline overrides the service baseline (optional).
	Baseline model.Baseline
	// NoChecks skips the verification checks after applying.
	NoChecks bool
}

// Run applies the diff on a new sandbox and, if applied, runs the verification checks
// on the result. A diff that doesn't apply or failing checks are not errors.
func (s *Service) Run(ctx context.Context, req Request) (res *model.ApplyResult, err error) {
	ctx, span := s.tracer.Start(ctx, "apply.Run", trace.WithAttributes(attribute.Int("diff.length", len(req.Diff))))
	start := time.Now()
	defer func() {
		s.metrics.ObservePipeline(ctx, metrics.OpApply, status(res, err), time.Since(start))
		if res != nil {
			span.SetAttributes(attribute.Bool("patch.applied", res.Applied), attribute.Int("checks", len(res.Checks)))
		}
		tracing.End(span, err)
	}()

	if err := req.Diff.Validate(); err != nil {
		return nil, err
	}

	baseline := s.baseline
	if !req.Baseline.IsEmpty() {
		baseline = req.Baseline
	}

	s.logger.WithCtxValues(ctx).Infof("Applying diff of %d bytes", len(req.Diff))

	return sandbox.With(ctx, s.manager, baseline, func(ctx context.Context, sb *model.Sandbox) (*model.ApplyResult, error) {
		ctx = s.logger.SetValuesOnCtx(ctx, log.Kv{"sandbox": sb.ID})
		logger := s.logger.WithCtxValues(ctx)

		pres, err := s.apply(ctx, req.Diff, sb)
		if err != nil {
			return nil, err
		}

		if !pres.Applied {
			logger.Debugf("Diff not applied")
			return &model.ApplyResult{
				Applied: false,
				Stdout:  pres.Stdout,
				Stderr:  pres.Stderr,
			}, nil
		}

		if req.NoChecks {
			logger.Debugf("Diff applied, skipping checks")
			return &model.ApplyResult{Applied: true, Checks: []model.CheckResult{}}, nil
		}

		checks, err := s.runChecks(ctx, sb)
		if err != nil {
			return nil, err
		}

		passed, failed := model.CountChecks(checks)
		logger.Debugf("Diff applied, %d checks passed and %d failed", passed, failed)

		return &model.ApplyResult{
			Applied: true,
			Checks:  checks,
		}, nil
	})
}

func (s *Service) apply(ctx context.Context, diff model.Diff, sb *model.Sandbox) (res *model.PatchResult, err error) {
	ctx, span := s.tracer.Start(ctx, "patch.Apply")
	start := time.Now()
	defer func() {
		s.metrics.ObserveStage(ctx, metrics.OpApply, metrics.StageApply, err == nil && res != nil && res.Applied, time.Since(start))
		tracing.End(span, err)
	}()

	res, err = s.applicator.Apply(ctx, diff, sb)
	if err == nil && res == nil {
		err = fmt.Errorf("patch applicator: %w", model.ErrNoResult)
	}
	if err != nil {
		return nil, fmt.Errorf("could not apply patch: %w", err)
	}
	return res, nil
}

func (s *Service) runChecks(ctx context.Context, sb *model.Sandbox) (res []model.CheckResult, err error) {
	ctx, span := s.tracer.Start(ctx, "verify.RunChecks")
	start := time.Now()
	defer func() {
		s.metrics.ObserveStage(ctx, metrics.OpApply, metrics.StageChecks, err == nil && model.AllChecksOK(res), time.Since(start))
		tracing.End(span, err)
	}()

	res, err = s.verifier.RunChecks(ctx, sb)
	if err != nil {
		return nil, fmt.Errorf("could not run checks: %w", err)
	}

	for _, c := range res {
		s.metrics.ObserveCheck(ctx, c.Name, c.OK, c.TimedOut, c.Duration)
	}

	return res, nil
}

func status(res *model.ApplyResult, err error) string {
	switch {
	case err != nil, res == nil:
		return metrics.StatusError
	case res.Passed():
		return metrics.StatusOK
	default:
		return metrics.StatusFailed
	}
}
