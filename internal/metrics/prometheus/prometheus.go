package prometheus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/patchcheck/internal/metrics"
)

const namespace = "patchcheck"

// Recorder records metrics on a Prometheus registry.
type Recorder struct {
	pipelineDuration *prometheus.HistogramVec
	stageDuration    *prometheus.HistogramVec
	checkDuration    *prometheus.HistogramVec
}

// NewRecorder returns a new Prometheus metrics recorder registered on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		return nil, fmt.Errorf("registerer is required")
	}

	r := &Recorder{
		pipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline run duration in seconds by operation and outcome.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"op", "status"}),

		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"op", "stage", "success"}),

		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "verify",
			Name:      "check_duration_seconds",
			Help:      "Verification check duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"check", "success", "timed_out"}),
	}

	for _, c := range []prometheus.Collector{r.pipelineDuration, r.stageDuration, r.checkDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("could not register metrics: %w", err)
		}
	}

	return r, nil
}

var _ metrics.Recorder = &Recorder{}

func (r *Recorder) ObservePipeline(_ context.Context, op, status string, duration time.Duration) {
	r.pipelineDuration.WithLabelValues(op, status).Observe(duration.Seconds())
}

func (r *Recorder) ObserveStage(_ context.Context, op, stage string, success bool, duration time.Duration) {
	r.stageDuration.WithLabelValues(op, stage, strconv.FormatBool(success)).Observe(duration.Seconds())
}

func (r *Recorder) ObserveCheck(_ context.Context, check string, success, timedOut bool, duration time.Duration) {
	r.checkDuration.WithLabelValues(check, strconv.FormatBool(success), strconv.FormatBool(timedOut)).Observe(duration.Seconds())
}

// WriteTextfile writes the gathered metrics in the Prometheus text format so they
// can be collected by the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("could not write metrics textfile: %w", err)
	}
	return nil
}
