// Package uncertainty cross validates point forecasters and turns their out of sample
// residuals into prediction intervals scored by coverage.
package uncertainty

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aouyang1/go-uncertainty/cv"
	"github.com/aouyang1/go-uncertainty/metrics"
	"github.com/aouyang1/go-uncertainty/score"
	"github.com/aouyang1/go-uncertainty/stats"
	"github.com/aouyang1/go-uncertainty/timedataset"
	"gonum.org/v1/gonum/stat"
)

var ErrNoFolds = errors.New("fold source produced no folds")

// Evaluator runs the cross validation pipeline: per fold predictions, bootstrap dispersion,
// interval construction and scoring
type Evaluator struct {
	opt      *Options
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// EvaluatorOption customizes an Evaluator
type EvaluatorOption func(*Evaluator)

// WithRecorder publishes fold and evaluation metrics to the Prometheus recorder
func WithRecorder(r *metrics.Recorder) EvaluatorOption {
	return func(e *Evaluator) {
		e.recorder = r
	}
}

// New creates a new Evaluator using the provided options. If no options are provided a
// default is used. A nil logger uses slog.Default().
func New(opt *Options, logger *slog.Logger, evOpts ...EvaluatorOption) (*Evaluator, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evaluator options, %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Evaluator{
		opt:    opt,
		logger: logger,
	}
	for _, o := range evOpts {
		o(e)
	}
	return e, nil
}

// Options returns the options the evaluator was created with
func (e *Evaluator) Options() *Options {
	return e.opt
}

// Evaluate predicts every fold with its paired predictor, builds the prediction intervals
// from the fold residuals and scores them. predictors[i] is expected to have been trained
// without the validation rows of fold i.
func (e *Evaluator) Evaluate(predictors []cv.Predictor, tb *timedataset.Table, folds cv.FoldSource) (res *Results, err error) {
	start := time.Now()
	defer func() {
		e.observe(start, res, err)
	}()

	runs, err := cv.PredictPerFold(predictors, tb, folds)
	if err != nil {
		return nil, fmt.Errorf("unable to predict folds, %w", err)
	}
	return e.score(runs)
}

// FitEvaluate trains a fresh estimator on the training rows of each fold before evaluating
// it on the fold's validation rows. The source is split once so fitting and prediction
// see the same folds.
func (e *Evaluator) FitEvaluate(newEstimator func() cv.Estimator, tb *timedataset.Table, folds cv.FoldSource) (res *Results, err error) {
	start := time.Now()
	defer func() {
		e.observe(start, res, err)
	}()

	fl, err := cv.Collect(tb, folds)
	if err != nil {
		return nil, fmt.Errorf("unable to fit folds, %w", err)
	}
	predictors, err := cv.FitPerFold(newEstimator, tb, fl)
	if err != nil {
		return nil, fmt.Errorf("unable to fit folds, %w", err)
	}
	e.logger.Debug("fit estimators", "folds", len(predictors), "elapsed", time.Since(start))

	runs, err := cv.PredictPerFold(predictors, tb, fl)
	if err != nil {
		return nil, fmt.Errorf("unable to predict folds, %w", err)
	}
	return e.score(runs)
}

func (e *Evaluator) score(runs *cv.Results) (*Results, error) {
	if len(runs.Runs) == 0 {
		return nil, ErrNoFolds
	}

	cvRes, err := cv.BuildIntervals(runs, e.opt.intervalOptions(), e.opt.rng())
	if err != nil {
		return nil, fmt.Errorf("unable to build intervals, %w", err)
	}
	coverage, err := cv.Coverage(cvRes)
	if err != nil {
		return nil, fmt.Errorf("unable to compute coverage, %w", err)
	}

	res := &Results{
		Folds:    make([]FoldResult, 0, len(cvRes.Runs)),
		Coverage: coverage,
		cv:       cvRes,
	}
	biases := make([]float64, 0, len(cvRes.Runs))
	for i, run := range cvRes.Runs {
		frame := cvRes.Intervals[i]
		scores, err := score.NewScores(run.Actual, run.Predicted, frame.Lower, frame.Upper)
		if err != nil {
			return nil, fmt.Errorf("unable to score fold %d, %w", run.Fold.ID, err)
		}

		var outliers []int
		if oo := e.opt.OutlierOptions; oo != nil {
			outliers = stats.DetectOutliers(run.Residual, oo.LowerPercentile, oo.UpperPercentile, oo.TukeyFactor)
		}

		fr := FoldResult{
			ID:         run.Fold.ID,
			TrainSize:  len(run.Fold.Train),
			Dispersion: cvRes.Dispersions[i],
			Outliers:   outliers,
			Scores:     scores,
			Interval:   frame,
		}
		if len(run.T) > 0 {
			fr.Start = run.T[0]
			fr.End = run.T[len(run.T)-1]
		}
		res.Folds = append(res.Folds, fr)
		biases = append(biases, scores.Bias)

		e.logger.Debug("scored fold",
			"fold", fr.ID,
			"train_size", fr.TrainSize,
			"valid_size", frame.Len(),
			"dispersion", fr.Dispersion,
			"coverage", scores.Coverage,
			"outliers", len(outliers),
		)
		if e.recorder != nil {
			e.recorder.RecordFold(fr.ID, scores.Coverage, fr.Dispersion, len(outliers))
		}
	}

	res.MeanCoverage = stat.Mean(coverage, nil)
	res.MeanBias = stat.Mean(biases, nil)
	return res, nil
}

func (e *Evaluator) observe(start time.Time, res *Results, err error) {
	elapsed := time.Since(start)
	if e.recorder != nil {
		e.recorder.RecordEvaluation(elapsed.Seconds(), err)
	}
	if err != nil {
		e.logger.Error("evaluation failed", "error", err, "elapsed", elapsed)
		return
	}
	e.logger.Info("evaluation complete",
		"folds", len(res.Folds),
		"mean_coverage", res.MeanCoverage,
		"mean_bias", res.MeanBias,
		"elapsed", elapsed,
	)
}
