package interval

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrLenMismatch       = errors.New("column has a different length than the frame")
	ErrInvalidDispersion = errors.New("dispersion must be a non-negative number")
)

// Frame holds the prediction interval of a forecast. Row i of every column refers to
// the same sample. Truth is only populated after InsertTruth and T after SetIndex.
type Frame struct {
	T        []time.Time `json:"time,omitempty"`
	Truth    []float64   `json:"truth,omitempty"`
	Forecast []float64   `json:"forecast"`
	Lower    []float64   `json:"lower"`
	Upper    []float64   `json:"upper"`
}

// Weights returns the per row width multiplier. When widening over time, row i is
// scaled by sqrt(i+1) so uncertainty grows like a random walk with the horizon.
func Weights(n int, widenOverTime bool) []float64 {
	w := make([]float64, n)
	for i := range w {
		if widenOverTime {
			w[i] = math.Sqrt(float64(i + 1))
			continue
		}
		w[i] = 1.0
	}
	return w
}

// Build creates a frame with lower and upper bounds at forecast -/+ dispersion times
// the row weight. The forecast slice is copied.
func Build(forecast []float64, dispersion float64, widenOverTime bool) (*Frame, error) {
	if dispersion < 0 || math.IsNaN(dispersion) || math.IsInf(dispersion, 0) {
		return nil, fmt.Errorf("got %.3f, %w", dispersion, ErrInvalidDispersion)
	}

	halfWidth := Weights(len(forecast), widenOverTime)
	floats.Scale(dispersion, halfWidth)

	f := &Frame{
		Forecast: make([]float64, len(forecast)),
		Lower:    make([]float64, len(forecast)),
		Upper:    make([]float64, len(forecast)),
	}
	copy(f.Forecast, forecast)
	floats.SubTo(f.Lower, forecast, halfWidth)
	floats.AddTo(f.Upper, forecast, halfWidth)
	return f, nil
}

// Len returns the number of rows in the frame
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Forecast)
}

// SetIndex labels each row with the time of the sample it was predicted for
func (f *Frame) SetIndex(t []time.Time) error {
	if len(t) != f.Len() {
		return fmt.Errorf("index has %d rows, but frame has %d, %w", len(t), f.Len(), ErrLenMismatch)
	}
	f.T = make([]time.Time, len(t))
	copy(f.T, t)
	return nil
}

// InsertTruth adds the observed values for each row
func (f *Frame) InsertTruth(actual []float64) error {
	if len(actual) != f.Len() {
		return fmt.Errorf("truth has %d rows, but frame has %d, %w", len(actual), f.Len(), ErrLenMismatch)
	}
	f.Truth = make([]float64, len(actual))
	copy(f.Truth, actual)
	return nil
}

// Widths returns upper - lower for each row
func (f *Frame) Widths() []float64 {
	w := make([]float64, f.Len())
	floats.SubTo(w, f.Upper, f.Lower)
	return w
}
