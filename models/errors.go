package models

import (
	"errors"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrNoTrainingData     = errors.New("no training table")
	ErrNoTarget           = errors.New("training table has no target column")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
	ErrUnderdetermined    = errors.New("fewer samples than coefficients")
	ErrNotFit             = errors.New("model has not been fit")
)
