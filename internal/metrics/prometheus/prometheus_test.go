package prometheus_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/patchcheck/internal/metrics"
	metricsprometheus "github.com/slok/patchcheck/internal/metrics/prometheus"
)

func labels(m *dto.Metric) map[string]string {
	l := map[string]string{}
	for _, lp := range m.GetLabel() {
		l[lp.GetName()] = lp.GetValue()
	}
	return l
}

// sampleCounts returns the histogram sample counts by metric name and joined labels.
func sampleCounts(t *testing.T, g prometheus.Gatherer) map[string]map[string]uint64 {
	t.Helper()
	mfs, err := g.Gather()
	require.NoError(t, err)

	got := map[string]map[string]uint64{}
	for _, mf := range mfs {
		got[mf.GetName()] = map[string]uint64{}
		for _, m := range mf.GetMetric() {
			key := ""
			for _, name := range []string{"op", "stage", "check", "status", "success", "timed_out"} {
				if v, ok := labels(m)[name]; ok {
					key += name + "=" + v + ","
				}
			}
			got[mf.GetName()][key] = m.GetHistogram().GetSampleCount()
		}
	}
	return got
}

func TestRecorder(t *testing.T) {
	tests := map[string]struct {
		measure   func(r metrics.Recorder)
		expCounts map[string]map[string]uint64
	}{
		"Pipeline runs should be measured by op and status.": {
			measure: func(r metrics.Recorder) {
				ctx := context.Background()
				r.ObservePipeline(ctx, metrics.OpValidate, metrics.StatusOK, time.Second)
				r.ObservePipeline(ctx, metrics.OpValidate, metrics.StatusOK, time.Second)
				r.ObservePipeline(ctx, metrics.OpApply, metrics.StatusFailed, time.Second)
			},
			expCounts: map[string]map[string]uint64{
				"patchcheck_pipeline_duration_seconds": {
					"op=validate,status=ok,":  2,
					"op=apply,status=failed,": 1,
				},
			},
		},

		"Stages and checks should be measured.": {
			measure: func(r metrics.Recorder) {
				ctx := context.Background()
				r.ObserveStage(ctx, metrics.OpApply, metrics.StageSandboxCreate, true, time.Millisecond)
				r.ObserveStage(ctx, metrics.OpApply, metrics.StageApply, false, time.Millisecond)
				r.ObserveCheck(ctx, "lint", true, false, time.Second)
				r.ObserveCheck(ctx, "tests", false, true, time.Minute)
			},
			expCounts: map[string]map[string]uint64{
				"patchcheck_pipeline_stage_duration_seconds": {
					"op=apply,stage=sandbox_create,success=true,": 1,
					"op=apply,stage=apply,success=false,":         1,
				},
				"patchcheck_verify_check_duration_seconds": {
					"check=lint,success=true,timed_out=false,":  1,
					"check=tests,success=false,timed_out=true,": 1,
				},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			reg := prometheus.NewRegistry()
			r, err := metricsprometheus.NewRecorder(reg)
			require.NoError(err)

			test.measure(r)

			assert.Equal(test.expCounts, sampleCounts(t, reg))
		})
	}
}

func TestRecorderRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metricsprometheus.NewRecorder(reg)
	require.NoError(t, err)

	_, err = metricsprometheus.NewRecorder(reg)
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	reg := prometheus.NewRegistry()
	r, err := metricsprometheus.NewRecorder(reg)
	require.NoError(err)
	r.ObservePipeline(context.Background(), metrics.OpValidate, metrics.StatusOK, time.Second)

	path := filepath.Join(t.TempDir(), "patchcheck.prom")
	err = metricsprometheus.WriteTextfile(path, reg)
	require.NoError(err)

	data, err := os.ReadFile(path)
	require.NoError(err)
	assert.Contains(string(data), `patchcheck_pipeline_duration_seconds_count{op="validate",status="ok"} 1`)
}
