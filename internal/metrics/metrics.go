package metrics

import (
	"context"
	"time"
)

// Pipeline operations.
const (
	OpValidate = "validate"
	OpApply    = "apply"
)

// Pipeline stages.
const (
	StageSandboxCreate = "sandbox_create"
	StageDryRun        = "dry_run"
	StageApply         = "apply"
	StageChecks        = "checks"
)

// Pipeline outcomes.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusError  = "error"
)

// Recorder knows how to record pipeline metrics.
type Recorder interface {
	// ObservePipeline records a full pipeline run (validate or apply) with its outcome.
	ObservePipeline(ctx context.Context, op, status string, duration time.Duration)
	// ObserveStage records a single pipeline stage.
	ObserveStage(ctx context.Context, op, stage string, success bool, duration time.Duration)
	// ObserveCheck records a verification check.
	ObserveCheck(ctx context.Context, check string, success, timedOut bool, duration time.Duration)
}

//go:generate mockery --case underscore --output metricsmock --outpkg metricsmock --structname MockRecorder --name Recorder

// Noop is a Recorder that doesn't record anything.
const Noop = noop(0)

type noop int

func (noop) ObservePipeline(context.Context, string, string, time.Duration) {}
func (noop) ObserveStage(context.Context, string, string, bool, time.Duration) {}
func (noop) ObserveCheck(context.Context, string, bool, bool, time.Duration) {}
