package timedataset

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-uncertainty/array"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrLabelLenMismatch   = errors.New("number of feature labels does not match number of feature columns")
	ErrRowOutOfRange      = errors.New("row index not present in table")
	ErrUnknownLabel       = errors.New("unknown feature label")
)

// Table represents a feature table indexed by time. Each row is a sample with its
// timestamp T[i], feature row i of X and target Y[i]. Y may be nil for feature only
// tables handed to a predictor.
type Table struct {
	T      []time.Time
	X      *array.Array
	Labels []string
	Y      []float64
}

// NewTable returns a Table after validating that the time index is strictly increasing
// and every column is aligned with it. The time and target slices are copied.
func NewTable(t []time.Time, x *array.Array, labels []string, y []float64) (*Table, error) {
	if len(t) == 0 {
		return nil, ErrNoTrainingData
	}
	m, n := x.Shape()
	if x != nil && m != len(t) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but features have %d rows, %w",
			len(t), m, ErrDatasetLenMismatch,
		)
	}
	if y != nil && len(y) != len(t) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}
	if labels != nil && len(labels) != n {
		return nil, fmt.Errorf("got %d labels for %d columns, %w", len(labels), n, ErrLabelLenMismatch)
	}

	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}

	tb := &Table{
		T:      make([]time.Time, len(t)),
		X:      x,
		Labels: labels,
	}
	copy(tb.T, t)
	if y != nil {
		tb.Y = make([]float64, len(y))
		copy(tb.Y, y)
	}
	return tb, nil
}

// NewUnivariateTable returns a table with no feature columns, only the time index and target
func NewUnivariateTable(t []time.Time, y []float64) (*Table, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	return NewTable(t, nil, nil, y)
}

// Len returns the number of rows in the table
func (tb *Table) Len() int {
	if tb == nil {
		return 0
	}
	return len(tb.T)
}

// Rows extracts the rows at the given positions preserving the order of idx. Any
// position outside of the table returns ErrRowOutOfRange.
func (tb *Table) Rows(idx []int) (*Table, error) {
	if tb == nil {
		return nil, ErrNoTrainingData
	}
	n := tb.Len()
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("row %d with %d rows, %w", i, n, ErrRowOutOfRange)
		}
	}

	res := &Table{
		T:      make([]time.Time, 0, len(idx)),
		Labels: tb.Labels,
	}
	for _, i := range idx {
		res.T = append(res.T, tb.T[i])
	}
	if tb.Y != nil {
		res.Y = make([]float64, 0, len(idx))
		for _, i := range idx {
			res.Y = append(res.Y, tb.Y[i])
		}
	}
	if tb.X != nil {
		x, err := tb.X.Rows(idx)
		if err != nil {
			return nil, fmt.Errorf("unable to select feature rows, %w", err)
		}
		res.X = x
	}
	return res, nil
}

// Features returns a copy of the table without the target column
func (tb *Table) Features() *Table {
	if tb == nil {
		return nil
	}
	res := tb.Copy()
	res.Y = nil
	return res
}

// Column returns the feature column with the given label
func (tb *Table) Column(label string) ([]float64, error) {
	for i, l := range tb.Labels {
		if l == label {
			return tb.X.GetCol(i)
		}
	}
	return nil, fmt.Errorf("%q, %w", label, ErrUnknownLabel)
}

func (tb *Table) Copy() *Table {
	if tb == nil {
		return nil
	}
	res := &Table{
		T: make([]time.Time, len(tb.T)),
		X: tb.X.Copy(),
	}
	copy(res.T, tb.T)
	if tb.Labels != nil {
		res.Labels = make([]string, len(tb.Labels))
		copy(res.Labels, tb.Labels)
	}
	if tb.Y != nil {
		res.Y = make([]float64, len(tb.Y))
		copy(res.Y, tb.Y)
	}
	return res
}
