// Package models is a collection of linear regression fitting implementations that act as
// forecasters over a feature table
package models

import (
	"fmt"

	"github.com/aouyang1/go-uncertainty/array"
	"github.com/aouyang1/go-uncertainty/score"
	"github.com/aouyang1/go-uncertainty/timedataset"
)

type Model interface {
	Fit(tb *timedataset.Table) error
	Predict(tb *timedataset.Table) ([]float64, error)
	Score(tb *timedataset.Table) (float64, error)
	Intercept() float64
	Coef() []float64
}

// designMatrix returns the feature array of the table with a leading column of ones when
// fitting an intercept
func designMatrix(tb *timedataset.Table, fitIntercept bool) (*array.Array, error) {
	if tb == nil {
		return nil, ErrNoDesignMatrix
	}
	if !fitIntercept {
		if tb.X == nil {
			return nil, ErrNoDesignMatrix
		}
		return tb.X, nil
	}

	ones, err := array.Ones(tb.Len(), 1)
	if err != nil {
		return nil, fmt.Errorf("unable to create intercept column, %w", err)
	}
	if tb.X == nil {
		return ones, nil
	}
	x, err := array.Extend(ones, tb.X)
	if err != nil {
		return nil, fmt.Errorf("unable to add intercept column, %w", err)
	}
	return x, nil
}

// target returns the target column of a training table
func target(tb *timedataset.Table) ([]float64, error) {
	if tb == nil {
		return nil, ErrNoTrainingData
	}
	if tb.Y == nil {
		return nil, ErrNoTarget
	}
	return tb.Y, nil
}

// r2 scores a model against the target column of the table
func r2(model Model, tb *timedataset.Table) (float64, error) {
	y, err := target(tb)
	if err != nil {
		return 0.0, err
	}
	res, err := model.Predict(tb)
	if err != nil {
		return 0.0, err
	}
	return score.RSquared(res, y)
}
