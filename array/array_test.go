package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew2D(t *testing.T) {
	testData := map[string]struct {
		x   [][]float64
		err error
		arr []float64
		m   int
		n   int
	}{
		"nil input": {
			nil,
			nil,
			[]float64{},
			0, 0,
		},
		"single element": {
			[][]float64{{1}},
			nil,
			[]float64{1},
			1, 1,
		},
		"one row multiple cols": {
			[][]float64{{1, 2, 3}},
			nil,
			[]float64{1, 2, 3},
			1, 3,
		},
		"multiple rows multiple cols": {
			[][]float64{{1, 2}, {3, 4}, {5, 6}},
			nil,
			[]float64{1, 3, 5, 2, 4, 6},
			3, 2,
		},
		"ragged rows": {
			[][]float64{{1, 2}, {3}},
			ErrColMismatch,
			nil,
			0, 0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			arr, err := New2D(td.x)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.arr, arr.arr)
			m, n := arr.Shape()
			assert.Equal(t, td.m, m, "m")
			assert.Equal(t, td.n, n, "n")
		})
	}
}

func TestNewFromCols(t *testing.T) {
	arr, err := NewFromCols([][]float64{{1, 3, 5}, {2, 4, 6}})
	require.Nil(t, err)

	expected, err := New2D([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.Nil(t, err)
	assert.Equal(t, expected, arr)

	_, err = NewFromCols([][]float64{{1, 2}, {1}})
	assert.ErrorIs(t, err, ErrRowMismatch)
}

func TestGet(t *testing.T) {
	arr, err := New2D([][]float64{{1, 2}, {3, 4}})
	require.Nil(t, err)

	val, err := arr.Get(1, 0)
	require.Nil(t, err)
	assert.Equal(t, 3.0, val)

	_, err = arr.Get(2, 0)
	assert.ErrorIs(t, err, ErrRowOutOfBounds)

	_, err = arr.Get(0, -1)
	assert.ErrorIs(t, err, ErrColOutOfBounds)
}

func TestGetColRow(t *testing.T) {
	arr, err := New2D([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.Nil(t, err)

	col, err := arr.GetCol(1)
	require.Nil(t, err)
	assert.Equal(t, []float64{2, 4, 6}, col)

	row, err := arr.GetRow(2)
	require.Nil(t, err)
	assert.Equal(t, []float64{5, 6}, row)

	_, err = arr.GetCol(2)
	assert.ErrorIs(t, err, ErrColOutOfBounds)

	_, err = arr.GetRow(3)
	assert.ErrorIs(t, err, ErrRowOutOfBounds)
}

func TestRows(t *testing.T) {
	arr, err := New2D([][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}})
	require.Nil(t, err)

	testData := map[string]struct {
		idx      []int
		expected [][]float64
		err      error
	}{
		"contiguous": {
			idx:      []int{1, 2},
			expected: [][]float64{{3, 4}, {5, 6}},
		},
		"reordered": {
			idx:      []int{3, 0},
			expected: [][]float64{{7, 8}, {1, 2}},
		},
		"repeated": {
			idx:      []int{1, 1},
			expected: [][]float64{{3, 4}, {3, 4}},
		},
		"out of range": {
			idx: []int{0, 4},
			err: ErrRowOutOfBounds,
		},
		"negative": {
			idx: []int{-1},
			err: ErrRowOutOfBounds,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := arr.Rows(td.idx)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)

			expected, err := New2D(td.expected)
			require.Nil(t, err)
			assert.Equal(t, expected, res)
		})
	}

	var nilArr *Array
	_, err = nilArr.Rows([]int{0})
	assert.ErrorIs(t, err, ErrUninitializedArray)
}

func TestFlatten(t *testing.T) {
	arr, err := New2D([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, arr.Flatten())
}

func TestExtend(t *testing.T) {
	ones, err := Ones(2, 1)
	require.Nil(t, err)

	x, err := New2D([][]float64{{3, 4}, {5, 6}})
	require.Nil(t, err)

	res, err := Extend(ones, x)
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 3, 4, 1, 5, 6}, res.Flatten())

	short, err := Ones(3, 1)
	require.Nil(t, err)
	_, err = Extend(short, x)
	assert.ErrorIs(t, err, ErrRowMismatch)

	_, err = Extend(nil, x)
	assert.ErrorIs(t, err, ErrUninitializedArray)

	_, err = Ones(-1, 1)
	assert.ErrorIs(t, err, ErrNegativeDim)
}

func TestCopy(t *testing.T) {
	arr, err := New2D([][]float64{{1, 2}})
	require.Nil(t, err)

	cp := arr.Copy()
	require.Equal(t, arr, cp)

	cp.arr[0] = 10
	assert.NotEqual(t, arr, cp)
}
