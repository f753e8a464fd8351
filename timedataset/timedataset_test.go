package timedataset

import (
	"testing"
	"time"

	"github.com/aouyang1/go-uncertainty/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayT(n int) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, time.Date(1970, 1, 1+i, 0, 0, 0, 0, time.UTC))
	}
	return t
}

func TestNewTable(t *testing.T) {
	x, err := array.New2D([][]float64{{1, 10}, {2, 20}})
	require.Nil(t, err)

	testData := map[string]struct {
		t      []time.Time
		x      *array.Array
		labels []string
		y      []float64
		err    error
	}{
		"no training data": {
			err: ErrNoTrainingData,
		},
		"target length mismatch": {
			t:   dayT(2),
			y:   []float64{1},
			err: ErrDatasetLenMismatch,
		},
		"feature length mismatch": {
			t:   dayT(3),
			x:   x,
			y:   []float64{1, 2, 3},
			err: ErrDatasetLenMismatch,
		},
		"label mismatch": {
			t:      dayT(2),
			x:      x,
			labels: []string{"a"},
			y:      []float64{1, 2},
			err:    ErrLabelLenMismatch,
		},
		"non increasing time": {
			t: []time.Time{
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			y:   []float64{1, 2},
			err: ErrNonMontonic,
		},
		"duplicate time": {
			t: []time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			y:   []float64{1, 2},
			err: ErrNonMontonic,
		},
		"valid": {
			t:      dayT(2),
			x:      x,
			labels: []string{"a", "b"},
			y:      []float64{1, 2},
		},
		"valid without target": {
			t: dayT(2),
			x: x,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			tb, err := NewTable(td.t, td.x, td.labels, td.y)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.t, tb.T)
			assert.Equal(t, td.y, tb.Y)
			assert.Equal(t, len(td.t), tb.Len())
		})
	}
}

func TestTableRows(t *testing.T) {
	x, err := array.New2D([][]float64{{1}, {2}, {3}, {4}})
	require.Nil(t, err)
	tb, err := NewTable(dayT(4), x, []string{"f"}, []float64{10, 20, 30, 40})
	require.Nil(t, err)

	sub, err := tb.Rows([]int{3, 1})
	require.Nil(t, err)
	assert.Equal(t, []time.Time{tb.T[3], tb.T[1]}, sub.T)
	assert.Equal(t, []float64{40, 20}, sub.Y)

	col, err := sub.Column("f")
	require.Nil(t, err)
	assert.Equal(t, []float64{4, 2}, col)

	_, err = tb.Rows([]int{0, 4})
	assert.ErrorIs(t, err, ErrRowOutOfRange)

	_, err = tb.Rows([]int{-1})
	assert.ErrorIs(t, err, ErrRowOutOfRange)

	_, err = sub.Column("missing")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestTableFeatures(t *testing.T) {
	tb, err := NewUnivariateTable(dayT(3), []float64{1, 2, 3})
	require.Nil(t, err)

	feat := tb.Features()
	assert.Nil(t, feat.Y)
	assert.Equal(t, tb.T, feat.T)
	assert.Equal(t, []float64{1, 2, 3}, tb.Y)

	feat.T[0] = time.Time{}
	assert.NotEqual(t, feat.T[0], tb.T[0])
}

func TestCopy(t *testing.T) {
	y := []float64{0, 1}
	tb, err := NewUnivariateTable(dayT(2), y)
	require.Nil(t, err)

	next := tb.Copy()
	require.Equal(t, tb, next)

	tb.Y[0] = 5
	require.NotEqual(t, next, tb)

	// input slice is not aliased
	assert.Equal(t, 0.0, y[0])
}
