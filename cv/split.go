package cv

import (
	"errors"
	"fmt"
	"iter"

	"github.com/aouyang1/go-uncertainty/timedataset"
)

var (
	ErrInvalidFolds        = errors.New("number of folds must be positive")
	ErrNegativeSplitParam  = errors.New("test size, gap and max train size must be non-negative")
	ErrInsufficientSamples = errors.New("insufficient samples for the determined folds")
)

const DefaultNumFolds = 5

// TimeSeriesSplit produces expanding window folds where every validation block comes
// after all of its training rows. The last NumFolds*TestSize rows are split into
// consecutive validation blocks and each fold trains on the rows before its block.
type TimeSeriesSplit struct {
	NumFolds int `yaml:"num_folds" json:"num_folds"`

	// TestSize is the number of validation rows per fold. Defaults to n / (NumFolds + 1)
	// when 0.
	TestSize int `yaml:"test_size" json:"test_size"`

	// Gap is the number of rows dropped between the end of training and the validation block
	Gap int `yaml:"gap" json:"gap"`

	// MaxTrainSize caps the training window to the most recent rows when positive
	MaxTrainSize int `yaml:"max_train_size" json:"max_train_size"`
}

func NewDefaultTimeSeriesSplit() *TimeSeriesSplit {
	return &TimeSeriesSplit{
		NumFolds: DefaultNumFolds,
	}
}

// Validate checks the split parameters against a table of n rows and returns the
// validation block size
func (s *TimeSeriesSplit) Validate(n int) (int, error) {
	if s.NumFolds < 1 {
		return 0, fmt.Errorf("got %d folds, %w", s.NumFolds, ErrInvalidFolds)
	}
	if s.TestSize < 0 || s.Gap < 0 || s.MaxTrainSize < 0 {
		return 0, ErrNegativeSplitParam
	}
	if s.NumFolds+1 > n {
		return 0, fmt.Errorf("cannot have %d folds with %d samples, %w", s.NumFolds, n, ErrInsufficientSamples)
	}

	testSize := s.TestSize
	if testSize == 0 {
		testSize = n / (s.NumFolds + 1)
	}
	if n-s.Gap-testSize*s.NumFolds <= 0 {
		return 0, fmt.Errorf(
			"%d folds of %d samples with a gap of %d need more than %d samples, %w",
			s.NumFolds, testSize, s.Gap, n, ErrInsufficientSamples,
		)
	}
	return testSize, nil
}

// Split returns the folds of the table in chronological order
func (s *TimeSeriesSplit) Split(tb *timedataset.Table) (iter.Seq[Fold], error) {
	if s == nil {
		s = NewDefaultTimeSeriesSplit()
	}
	n := tb.Len()
	testSize, err := s.Validate(n)
	if err != nil {
		return nil, err
	}

	return func(yield func(Fold) bool) {
		for i := 0; i < s.NumFolds; i++ {
			testStart := n - (s.NumFolds-i)*testSize
			trainEnd := testStart - s.Gap
			trainStart := 0
			if s.MaxTrainSize > 0 && s.MaxTrainSize < trainEnd {
				trainStart = trainEnd - s.MaxTrainSize
			}

			f := Fold{
				ID:    i,
				Train: positions(trainStart, trainEnd),
				Valid: positions(testStart, testStart+testSize),
			}
			if !yield(f) {
				return
			}
		}
	}, nil
}

// FoldList is a fixed set of folds handed out as is, regardless of the table
type FoldList []Fold

func (fl FoldList) Split(tb *timedataset.Table) (iter.Seq[Fold], error) {
	return func(yield func(Fold) bool) {
		for _, f := range fl {
			if !yield(f) {
				return
			}
		}
	}, nil
}

// positions returns the row positions in [start, end)
func positions(start, end int) []int {
	if end <= start {
		return []int{}
	}
	p := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		p = append(p, i)
	}
	return p
}
