// Package cv evaluates forecasters fold by fold over a time indexed table, producing the
// out of sample residuals, the prediction intervals built from them and their coverage
package cv

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/aouyang1/go-uncertainty/interval"
	"github.com/aouyang1/go-uncertainty/score"
	"github.com/aouyang1/go-uncertainty/stats"
	"github.com/aouyang1/go-uncertainty/timedataset"
)

var (
	ErrIndexAlignment    = errors.New("fold index not present in table")
	ErrFoldCountMismatch = errors.New("number of predictors does not match number of folds")
	ErrNoTarget          = errors.New("table has no target column")
	ErrNoResults         = errors.New("no cross validation results")
	ErrNoIntervals       = errors.New("prediction intervals have not been built")
	ErrNoFoldSource      = errors.New("no fold source")
)

// Predictor forecasts one value per row of a feature table. The table passed in never
// carries the target column.
type Predictor interface {
	Predict(x *timedataset.Table) ([]float64, error)
}

// Estimator is a Predictor that can be trained
type Estimator interface {
	Predictor
	Fit(train *timedataset.Table) error
}

// FoldSource produces the train and validation positions of each fold for a table.
// PredictPerFold and FitPerFold each call Split once, so predictors fit from one call
// only pair with the folds of another when Split yields the same folds for the same
// table. Use Collect to pin the folds of a source that cannot promise that.
type FoldSource interface {
	Split(tb *timedataset.Table) (iter.Seq[Fold], error)
}

// Fold holds the row positions used for training and for validation
type Fold struct {
	ID    int   `json:"id"`
	Train []int `json:"train"`
	Valid []int `json:"valid"`
}

// Run is the out of sample prediction of a single fold. Row i of every slice refers
// to the same validation sample.
type Run struct {
	Fold      Fold        `json:"fold"`
	T         []time.Time `json:"time"`
	Actual    []float64   `json:"actual"`
	Predicted []float64   `json:"predicted"`
	Residual  []float64   `json:"residual"`
}

// Results collects the fold runs in fold order. Intervals and Dispersions are only
// populated by BuildIntervals and are aligned with Runs.
type Results struct {
	Runs        []Run             `json:"runs"`
	Intervals   []*interval.Frame `json:"intervals,omitempty"`
	Dispersions []float64         `json:"dispersions,omitempty"`
}

// PredictPerFold pairs predictors[i] with the i-th fold of the source, predicts the
// validation rows and records the residuals. Whether predictors[i] was trained without
// the validation rows of fold i is the caller's responsibility.
//
// The first failing fold aborts the whole call.
func PredictPerFold(predictors []Predictor, tb *timedataset.Table, folds FoldSource) (*Results, error) {
	if tb == nil {
		return nil, timedataset.ErrNoTrainingData
	}
	if tb.Y == nil {
		return nil, ErrNoTarget
	}
	fs, err := Collect(tb, folds)
	if err != nil {
		return nil, err
	}
	if len(fs) != len(predictors) {
		return nil, fmt.Errorf("got %d predictors for %d folds, %w", len(predictors), len(fs), ErrFoldCountMismatch)
	}

	res := &Results{
		Runs: make([]Run, 0, len(fs)),
	}
	for i, f := range fs {
		run, err := predictFold(predictors[i], tb, f)
		if err != nil {
			return nil, err
		}
		res.Runs = append(res.Runs, run)
	}
	return res, nil
}

// Collect splits the table once and returns the folds as a fixed list
func Collect(tb *timedataset.Table, folds FoldSource) (FoldList, error) {
	if folds == nil {
		return nil, ErrNoFoldSource
	}
	seq, err := folds.Split(tb)
	if err != nil {
		return nil, fmt.Errorf("unable to split table into folds, %w", err)
	}
	return slices.Collect(seq), nil
}

func predictFold(p Predictor, tb *timedataset.Table, f Fold) (Run, error) {
	valid, err := tb.Rows(f.Valid)
	if err != nil {
		return Run{}, fmt.Errorf("fold %d validation rows, %w, %w", f.ID, ErrIndexAlignment, err)
	}

	pred, err := p.Predict(valid.Features())
	if err != nil {
		return Run{}, fmt.Errorf("unable to predict fold %d, %w", f.ID, err)
	}

	residual, err := stats.Residuals(valid.Y, pred)
	if err != nil {
		return Run{}, fmt.Errorf("unable to compute residuals of fold %d, %w", f.ID, err)
	}

	predicted := make([]float64, len(pred))
	copy(predicted, pred)
	return Run{
		Fold:      f,
		T:         valid.T,
		Actual:    valid.Y,
		Predicted: predicted,
		Residual:  residual,
	}, nil
}

// IntervalOptions configures how the per fold prediction intervals are built
type IntervalOptions struct {
	Dispersion    *stats.DispersionOptions `yaml:"dispersion" json:"dispersion"`
	WidenOverTime bool                     `yaml:"widen_over_time" json:"widen_over_time"`
}

func NewDefaultIntervalOptions() *IntervalOptions {
	return &IntervalOptions{
		Dispersion:    stats.NewDefaultDispersionOptions(),
		WidenOverTime: true,
	}
}

// BuildIntervals estimates the dispersion of each fold from its residuals and builds the
// prediction interval around its predictions, indexed by the validation times and carrying
// the actual values. A new Results sharing the runs of res is returned and res is left
// untouched.
//
// The bootstrap draws of all folds come from rng in fold order.
func BuildIntervals(res *Results, opt *IntervalOptions, rng *rand.Rand) (*Results, error) {
	if res == nil {
		return nil, ErrNoResults
	}
	if opt == nil {
		opt = NewDefaultIntervalOptions()
	}

	out := &Results{
		Runs:        res.Runs,
		Intervals:   make([]*interval.Frame, 0, len(res.Runs)),
		Dispersions: make([]float64, 0, len(res.Runs)),
	}
	for _, run := range res.Runs {
		d, err := stats.BootstrapDispersion(run.Residual, opt.Dispersion, rng)
		if err != nil {
			return nil, fmt.Errorf("unable to estimate dispersion of fold %d, %w", run.Fold.ID, err)
		}

		frame, err := interval.Build(run.Predicted, d, opt.WidenOverTime)
		if err != nil {
			return nil, fmt.Errorf("unable to build interval of fold %d, %w", run.Fold.ID, err)
		}
		if err := frame.SetIndex(run.T); err != nil {
			return nil, fmt.Errorf("unable to index interval of fold %d, %w", run.Fold.ID, err)
		}
		if err := frame.InsertTruth(run.Actual); err != nil {
			return nil, fmt.Errorf("unable to add truth to interval of fold %d, %w", run.Fold.ID, err)
		}

		out.Intervals = append(out.Intervals, frame)
		out.Dispersions = append(out.Dispersions, d)
	}
	return out, nil
}

// Coverage returns the fraction of actual values inside the interval of each fold in
// fold order
func Coverage(res *Results) ([]float64, error) {
	if res == nil {
		return nil, ErrNoResults
	}
	if res.Intervals == nil {
		return nil, ErrNoIntervals
	}

	coverage := make([]float64, 0, len(res.Intervals))
	for i, frame := range res.Intervals {
		c, err := score.Coverage(frame.Truth, frame.Lower, frame.Upper)
		if err != nil {
			return nil, fmt.Errorf("unable to score coverage of fold %d, %w", i, err)
		}
		coverage = append(coverage, c)
	}
	return coverage, nil
}
