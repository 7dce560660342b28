package validate

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/slok/patchcheck/internal/log"
	"github.com/slok/patchcheck/internal/metrics"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/patch"
	"github.com/slok/patchcheck/internal/sandbox"
	"github.com/slok/patchcheck/internal/tracing"
)

// DefaultConcurrency is the number of diffs validated at the same time on batches.
const DefaultConcurrency = 4

// ServiceConfig is the configuration for the validate service.
type ServiceConfig struct {
	Manager   sandbox.Manager
	Validator patch.Validator
	// Baseline is used for the requests that don't have one, if empty the default one is used.
	Baseline    model.Baseline
	Concurrency int
	Metrics     metrics.Recorder
	Tracer      trace.Tracer
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Manager == nil {
		return fmt.Errorf("sandbox manager is required")
	}
	if c.Validator == nil {
		return fmt.Errorf("patch validator is required")
	}
	if c.Baseline.IsEmpty() {
		c.Baseline = model.DefaultBaseline()
	}
	if err := c.Baseline.Validate(); err != nil {
		return fmt.Errorf("invalid baseline: %w", err)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency can't be negative")
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Validate"})
	return nil
}

// Service validates diffs with dry-runs on ephemeral sandboxes.
type Service struct {
	manager     sandbox.Manager
	validator   patch.Validator
	baseline    model.Baseline
	concurrency int
	metrics     metrics.Recorder
	tracer      trace.Tracer
	logger      log.Logger
}

// NewService creates a new validate service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		manager:     sandbox.NewMeasuredManager(metrics.OpValidate, cfg.Metrics, cfg.Tracer, cfg.Manager),
		validator:   cfg.Validator,
		baseline:    cfg.Baseline,
		concurrency: cfg.Concurrency,
		metrics:     cfg.Metrics,
		tracer:      cfg.Tracer,
		logger:      cfg.Logger,
	}, nil
}

// Request contains the parameters for validating a diff.
type Request struct {
	Diff model.Diff
	// Baseline overrides the service baseline (optional).
	Baseline model.Baseline
}

// Run validates the diff on a new sandbox. A diff that doesn't apply is not an error.
func (s *Service) Run(ctx context.Context, req Request) (res *model.ValidateResult, err error) {
	ctx, span := s.tracer.Start(ctx, "validate.Run", trace.WithAttributes(attribute.Int("diff.length", len(req.Diff))))
	start := time.Now()
	defer func() {
		s.metrics.ObservePipeline(ctx, metrics.OpValidate, status(res, err), time.Since(start))
		if res != nil {
			span.SetAttributes(attribute.Bool("patch.ok", res.OK))
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

	s.logger.WithCtxValues(ctx).Infof("Validating diff of %d bytes", len(req.Diff))

	return sandbox.With(ctx, s.manager, baseline, func(ctx context.Context, sb *model.Sandbox) (*model.ValidateResult, error) {
		ctx = s.logger.SetValuesOnCtx(ctx, log.Kv{"sandbox": sb.ID})
		logger := s.logger.WithCtxValues(ctx)

		ctx, span := s.tracer.Start(ctx, "patch.ValidateDryRun")
		stageStart := time.Now()
		res, err := s.validator.ValidateDryRun(ctx, req.Diff, sb)
		if err == nil && res == nil {
			err = fmt.Errorf("patch validator: %w", model.ErrNoResult)
		}
		s.metrics.ObserveStage(ctx, metrics.OpValidate, metrics.StageDryRun, err == nil && res.OK, time.Since(stageStart))
		tracing.End(span, err)
		if err != nil {
			return nil, fmt.Errorf("could not validate patch: %w", err)
		}

		logger.Debugf("Diff validated (ok: %t)", res.OK)
		return res, nil
	})
}

// RunBatch validates multiple diffs concurrently, each one on its own sandbox. The
// results keep the order of the requests. The first failure cancels the rest.
func (s *Service) RunBatch(ctx context.Context, reqs []Request) ([]*model.ValidateResult, error) {
	results := make([]*model.ValidateResult, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Run(ctx, req)
			if err != nil {
				return fmt.Errorf("diff %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func status(res *model.ValidateResult, err error) string {
	switch {
	case err != nil, res == nil:
		return metrics.StatusError
	case res.OK:
		return metrics.StatusOK
	default:
		return metrics.StatusFailed
	}
}
