package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFold(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "cpu")
	assert.Equal(t, "cpu", r.Series())

	r.RecordFold(0, 1.0, 2.5, 3)
	r.RecordFold(1, 0.5, 1.5, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.FoldCoverage.WithLabelValues("0")))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.FoldCoverage.WithLabelValues("1")))
	assert.Equal(t, 2.5, testutil.ToFloat64(r.FoldDispersion.WithLabelValues("0")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.FoldOutliers.WithLabelValues("0")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.FoldCoverage))

	expected := `
# HELP uncertainty_fold_coverage Fraction of validation values inside the prediction interval
# TYPE uncertainty_fold_coverage gauge
uncertainty_fold_coverage{fold="0",series="cpu"} 1
uncertainty_fold_coverage{fold="1",series="cpu"} 0.5
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "uncertainty_fold_coverage")
	require.Nil(t, err)
}

func TestRecordEvaluation(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "cpu")

	r.RecordEvaluation(0.1, nil)
	r.RecordEvaluation(0.2, nil)
	r.RecordEvaluation(0.3, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.EvaluationsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EvaluationsTotal.WithLabelValues(OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.EvaluationSeconds))
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "cpu")
	assert.Panics(t, func() { New(reg, "cpu") })
}
