package score

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverage(t *testing.T) {
	testData := map[string]struct {
		actual   []float64
		lower    []float64
		upper    []float64
		expected float64
		err      error
	}{
		"all covered": {
			actual:   []float64{1, 2, 3},
			lower:    []float64{0, 1, 2},
			upper:    []float64{2, 3, 4},
			expected: 1.0,
		},
		"none covered": {
			actual:   []float64{5, -5, 10},
			lower:    []float64{0, 1, 2},
			upper:    []float64{2, 3, 4},
			expected: 0.0,
		},
		"inclusive bounds": {
			actual:   []float64{0, 2},
			lower:    []float64{0, 1},
			upper:    []float64{1, 2},
			expected: 1.0,
		},
		"half covered": {
			actual:   []float64{1, 2, 10, 20},
			lower:    []float64{0, 0, 0, 0},
			upper:    []float64{5, 5, 5, 5},
			expected: 0.5,
		},
		"nan is not covered": {
			actual:   []float64{math.NaN(), 1},
			lower:    []float64{0, 0},
			upper:    []float64{2, 2},
			expected: 0.5,
		},
		"lower length mismatch": {
			actual: []float64{1, 2},
			lower:  []float64{0},
			upper:  []float64{2, 3},
			err:    ErrLenMismatch,
		},
		"upper length mismatch": {
			actual: []float64{1, 2},
			lower:  []float64{0, 1},
			upper:  []float64{2},
			err:    ErrLenMismatch,
		},
		"empty": {
			actual: []float64{},
			lower:  []float64{},
			upper:  []float64{},
			err:    ErrEmptyInput,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Coverage(td.actual, td.lower, td.upper)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestCoverageShiftInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	n := 200
	actual := make([]float64, n)
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := 0; i < n; i++ {
		// integer valued so the shift is exact
		actual[i] = float64(rng.IntN(21) - 10)
		lower[i] = float64(rng.IntN(11) - 10)
		upper[i] = lower[i] + float64(rng.IntN(15))
	}
	base, err := Coverage(actual, lower, upper)
	require.Nil(t, err)

	for _, shift := range []float64{-1000, -3, 0, 7, 1e6} {
		sActual := make([]float64, n)
		sLower := make([]float64, n)
		sUpper := make([]float64, n)
		for i := 0; i < n; i++ {
			sActual[i] = actual[i] + shift
			sLower[i] = lower[i] + shift
			sUpper[i] = upper[i] + shift
		}
		res, err := Coverage(sActual, sLower, sUpper)
		require.Nil(t, err)
		assert.Equal(t, base, res, "shift %f", shift)
	}
}

func TestNormalizedBias(t *testing.T) {
	testData := map[string]struct {
		actual    []float64
		predicted []float64
		expected  float64
		err       error
	}{
		"unbiased": {
			actual:    []float64{1, 2, 3},
			predicted: []float64{1, 2, 3},
			expected:  0.0,
		},
		"over forecast": {
			actual:    []float64{1, 1},
			predicted: []float64{3, 1},
			expected:  0.5,
		},
		"under forecast": {
			actual:    []float64{3},
			predicted: []float64{1},
			expected:  -0.5,
		},
		"zero denominator": {
			actual:    []float64{0, 1, 0},
			predicted: []float64{0, 3, 0},
			expected:  0.5,
		},
		"opposite signs cancel": {
			actual:    []float64{-2, 1},
			predicted: []float64{2, 1},
			expected:  0.0,
		},
		"nan skipped": {
			actual:    []float64{math.NaN(), 3},
			predicted: []float64{1, 1},
			expected:  -0.5,
		},
		"length mismatch": {
			actual:    []float64{1},
			predicted: []float64{1, 2},
			err:       ErrLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := NormalizedBias(td.actual, td.predicted)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, res, 1e-12)
		})
	}
}

func TestNewScores(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	predicted := []float64{1, 2, 3, 5}
	lower := []float64{0, 1, 2, 4.5}
	upper := []float64{2, 3, 4, 5.5}

	scores, err := NewScores(actual, predicted, lower, upper)
	require.Nil(t, err)
	assert.Equal(t, 0.75, scores.Coverage)
	assert.InDelta(t, 1.0/9.0, scores.Bias, 1e-12)
	assert.InDelta(t, 0.25, scores.MSE, 1e-12)
	assert.InDelta(t, 0.0625, scores.MAPE, 1e-12)

	_, err = NewScores(actual, predicted[:3], lower, upper)
	assert.ErrorIs(t, err, ErrLenMismatch)

	_, err = NewScores(nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMSE(t *testing.T) {
	mse, err := MSE([]float64{1, math.NaN(), 3}, []float64{2, 2, 3})
	require.Nil(t, err)
	assert.InDelta(t, 1.0/3.0, mse, 1e-12)

	_, err = MSE([]float64{1}, []float64{})
	assert.ErrorIs(t, err, ErrLenMismatch)
}

func TestMAPE(t *testing.T) {
	mape, err := MAPE([]float64{1, 5}, []float64{2, 0})
	require.Nil(t, err)
	assert.InDelta(t, 0.25, mape, 1e-12)

	_, err = MAPE([]float64{1}, []float64{})
	assert.ErrorIs(t, err, ErrLenMismatch)
}

func TestRSquared(t *testing.T) {
	r2, err := RSquared([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, 1e-12)

	_, err = RSquared([]float64{1}, []float64{})
	assert.ErrorIs(t, err, ErrLenMismatch)
}
