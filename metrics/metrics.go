// Package metrics provides Prometheus instrumentation for cross validated uncertainty
// evaluations.
//
// Metrics exposed:
//   - uncertainty_fold_coverage: Gauge of the interval coverage of each fold
//   - uncertainty_fold_dispersion: Gauge of the bootstrap dispersion of each fold
//   - uncertainty_fold_outliers: Gauge of the residual outlier count of each fold
//   - uncertainty_evaluations_total: Counter of evaluations by outcome
//   - uncertainty_evaluation_seconds: Histogram of evaluation duration
//
// All metrics carry the series label so one registry can track several series.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder holds the Prometheus collectors of an evaluator
type Recorder struct {
	FoldCoverage      *prometheus.GaugeVec
	FoldDispersion    *prometheus.GaugeVec
	FoldOutliers      *prometheus.GaugeVec
	EvaluationsTotal  *prometheus.CounterVec
	EvaluationSeconds prometheus.Histogram

	series string
}

// New creates the collectors for a series and registers them on reg. A nil reg
// registers on the default registry.
func New(reg prometheus.Registerer, series string) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{
		"series": series,
	}

	return &Recorder{
		FoldCoverage: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "uncertainty_fold_coverage",
			Help:        "Fraction of validation values inside the prediction interval",
			ConstLabels: constLabels,
		}, []string{"fold"}),

		FoldDispersion: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "uncertainty_fold_dispersion",
			Help:        "Bootstrap dispersion used as the interval half width",
			ConstLabels: constLabels,
		}, []string{"fold"}),

		FoldOutliers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "uncertainty_fold_outliers",
			Help:        "Number of validation residuals outside the Tukey fences",
			ConstLabels: constLabels,
		}, []string{"fold"}),

		EvaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "uncertainty_evaluations_total",
			Help:        "Total number of evaluations by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		EvaluationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "uncertainty_evaluation_seconds",
			Help:        "Time spent cross validating and building intervals",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),

		series: series,
	}
}

// Series returns the series label of the recorder
func (r *Recorder) Series() string {
	return r.series
}

// RecordFold sets the gauges of a single fold
func (r *Recorder) RecordFold(fold int, coverage, dispersion float64, outliers int) {
	label := strconv.Itoa(fold)
	r.FoldCoverage.WithLabelValues(label).Set(coverage)
	r.FoldDispersion.WithLabelValues(label).Set(dispersion)
	r.FoldOutliers.WithLabelValues(label).Set(float64(outliers))
}

// RecordEvaluation counts an evaluation and observes its duration
func (r *Recorder) RecordEvaluation(seconds float64, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	r.EvaluationsTotal.WithLabelValues(outcome).Inc()
	r.EvaluationSeconds.Observe(seconds)
}
