package cv

import (
	"fmt"

	"github.com/aouyang1/go-uncertainty/timedataset"
)

// FitPerFold trains a new estimator on the training rows of each fold. The returned
// predictors are paired with the folds of the source in order and can be handed to
// PredictPerFold with the same table and source.
func FitPerFold(newEstimator func() Estimator, tb *timedataset.Table, folds FoldSource) ([]Predictor, error) {
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

	predictors := make([]Predictor, 0, len(fs))
	for _, f := range fs {
		train, err := tb.Rows(f.Train)
		if err != nil {
			return nil, fmt.Errorf("fold %d training rows, %w, %w", f.ID, ErrIndexAlignment, err)
		}
		if train.Len() == 0 {
			return nil, fmt.Errorf("fold %d has no training rows, %w", f.ID, timedataset.ErrNoTrainingData)
		}

		est := newEstimator()
		if err := est.Fit(train); err != nil {
			return nil, fmt.Errorf("unable to fit estimator of fold %d, %w", f.ID, err)
		}
		predictors = append(predictors, est)
	}
	return predictors, nil
}
