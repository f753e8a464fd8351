package score

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrLenMismatch = errors.New("predicted and actual have different lengths")
	ErrEmptyInput  = errors.New("no values to score")
)

// Scores tracks the out of sample scores of a single fold
type Scores struct {
	Coverage float64 `json:"coverage"`
	Bias     float64 `json:"normalized_bias"`
	MSE      float64 `json:"mean_squared_error"`
	MAPE     float64 `json:"mean_average_percent_error"`
	R2       float64 `json:"r_squared"`
}

// NewScores calculates the point forecast and interval scores given the actual values,
// the forecast and its lower and upper bounds
func NewScores(actual, predicted, lower, upper []float64) (*Scores, error) {
	coverage, err := Coverage(actual, lower, upper)
	if err != nil {
		return nil, fmt.Errorf("unable to compute coverage, %w", err)
	}
	bias, err := NormalizedBias(actual, predicted)
	if err != nil {
		return nil, fmt.Errorf("unable to compute normalized bias, %w", err)
	}
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	rs, err := RSquared(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}

	return &Scores{
		Coverage: coverage,
		Bias:     bias,
		MSE:      mse,
		MAPE:     mape,
		R2:       rs,
	}, nil
}

// Coverage is the fraction of actual values that fall within [lower, upper], inclusive
// of both bounds. A NaN in any column counts as not covered.
func Coverage(actual, lower, upper []float64) (float64, error) {
	if len(lower) != len(actual) {
		return 0, fmt.Errorf("expected %d lower bounds, but got %d, %w", len(actual), len(lower), ErrLenMismatch)
	}
	if len(upper) != len(actual) {
		return 0, fmt.Errorf("expected %d upper bounds, but got %d, %w", len(actual), len(upper), ErrLenMismatch)
	}
	if len(actual) == 0 {
		return 0, ErrEmptyInput
	}

	var covered int
	for i := 0; i < len(actual); i++ {
		if lower[i] <= actual[i] && actual[i] <= upper[i] {
			covered++
		}
	}
	return float64(covered) / float64(len(actual)), nil
}

// NormalizedBias sums (predicted - actual) / (predicted + actual). Each term lies within
// [-1, 1] for non-negative series. Negative values indicate a tendency to under forecast
// and positive values a tendency to over forecast with 0 meaning no bias. Rows with a NaN
// or a zero denominator are skipped.
func NormalizedBias(actual, predicted []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrLenMismatch)
	}

	bias := 0.0
	for i := 0; i < len(actual); i++ {
		denom := predicted[i] + actual[i]
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) || denom == 0 {
			continue
		}
		bias += (predicted[i] - actual[i]) / denom
	}
	return bias, nil
}

// MSE computes the mean squared error. This is the same as sum((y-yhat)^2)/n.
// A score of 0 means a perfect match with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrLenMismatch)
	}

	mse := 0.0
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		mse += math.Pow(actual[i]-predicted[i], 2.0)
	}
	mse /= float64(len(actual))
	return mse, nil
}

// MAPE calculates the mean average percent error. This is the same as sum(abs((y-yhat)/y))/n.
// A score of 0 means a perfect match with no errors.
func MAPE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrLenMismatch)
	}

	mape := 0.0
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) || actual[i] == 0 {
			continue
		}
		mape += math.Abs((actual[i] - predicted[i]) / actual[i])
	}
	mape /= float64(len(actual))
	return mape, nil
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit and 0 represents no relationship
func RSquared(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrLenMismatch)
	}

	predictCopy := make([]float64, 0, len(predicted))
	actualCopy := make([]float64, 0, len(actual))
	for i := 0; i < len(predicted); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		predictCopy = append(predictCopy, predicted[i])
		actualCopy = append(actualCopy, actual[i])
	}
	r2 := stat.RSquaredFrom(predictCopy, actualCopy, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}
