package sandbox

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/slok/patchcheck/internal/metrics"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/tracing"
)

type measuredManager struct {
	op      string
	next    Manager
	metrics metrics.Recorder
	tracer  trace.Tracer
}

// NewMeasuredManager wraps a manager recording a pipeline stage metric and a span
// for every sandbox creation and a span for every destruction.
func NewMeasuredManager(op string, rec metrics.Recorder, tracer trace.Tracer, next Manager) Manager {
	if rec == nil {
		rec = metrics.Noop
	}
	if tracer == nil {
		tracer = tracing.NoopTracer
	}

	return measuredManager{
		op:      op,
		next:    next,
		metrics: rec,
		tracer:  tracer,
	}
}

func (m measuredManager) Create(ctx context.Context, baseline model.Baseline) (sb *model.Sandbox, err error) {
	ctx, span := m.tracer.Start(ctx, "sandbox.Create")
	start := time.Now()
	defer func() {
		m.metrics.ObserveStage(ctx, m.op, metrics.StageSandboxCreate, err == nil, time.Since(start))
		if sb != nil {
			span.SetAttributes(attribute.String("sandbox.id", sb.ID), attribute.Int("sandbox.files", len(sb.Files)))
		}
		tracing.End(span, err)
	}()

	return m.next.Create(ctx, baseline)
}

func (m measuredManager) Destroy(ctx context.Context, sb *model.Sandbox) {
	ctx, span := m.tracer.Start(ctx, "sandbox.Destroy")
	defer span.End()
	if sb != nil {
		span.SetAttributes(attribute.String("sandbox.id", sb.ID))
	}

	m.next.Destroy(ctx, sb)
}
