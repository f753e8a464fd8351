package array

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNegativeDim        = errors.New("negative dimensions not allowed")
	ErrColMismatch        = errors.New("column size mismatch")
	ErrRowMismatch        = errors.New("row size mismatch")
	ErrUninitializedArray = errors.New("uninitialized array")
	ErrRowOutOfBounds     = errors.New("row is out of bounds")
	ErrColOutOfBounds     = errors.New("column is out of bounds")
)

// Array contains a 2D slice of data stored in column major order where the
// first slice in the stored slice is the first column of the dataset. Rows are
// samples and columns are features.
// e.g. [][]float64{{1.0, 2.0}, {1.0, 3.0}, {1.0, 4.0}} would be stored like so,
// {1.0, 1.0, 1.0, 2.0, 3.0, 4.0}.
type Array struct {
	arr []float64
	m   int
	n   int
}

// New2D creates an array from row major input where each inner slice is a sample
func New2D(x [][]float64) (*Array, error) {
	m := len(x)
	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}

	arr := make([]float64, m*n)
	for i, row := range x {
		for j, val := range row {
			arr[j*m+i] = val
		}
	}
	return &Array{arr: arr, m: m, n: n}, nil
}

// NewFromCols creates an array where each input slice is a full feature column
func NewFromCols(cols [][]float64) (*Array, error) {
	m := -1
	for j, col := range cols {
		if m >= 0 && len(col) != m {
			return nil, fmt.Errorf("at column %d, %w", j, ErrRowMismatch)
		}
		if m < 0 {
			m = len(col)
		}
	}
	if m < 0 {
		m = 0
	}

	arr := make([]float64, 0, m*len(cols))
	for _, col := range cols {
		arr = append(arr, col...)
	}
	return &Array{arr: arr, m: m, n: len(cols)}, nil
}

// Ones returns an m x n array filled with 1.0
func Ones(m, n int) (*Array, error) {
	if m < 0 || n < 0 {
		return nil, ErrNegativeDim
	}
	arr := make([]float64, m*n)
	floats.AddConst(1.0, arr)
	return &Array{arr: arr, m: m, n: n}, nil
}

// Shape returns the number of rows and columns
func (a *Array) Shape() (int, int) {
	if a == nil {
		return 0, 0
	}
	return a.m, a.n
}

func (a *Array) Size() int {
	if a == nil {
		return 0
	}
	return len(a.arr)
}

// Get retrieves a single value in the array at a specific row and column
func (a *Array) Get(r, c int) (float64, error) {
	m, n := a.Shape()
	if r < 0 || r >= m {
		return 0.0, ErrRowOutOfBounds
	}
	if c < 0 || c >= n {
		return 0.0, ErrColOutOfBounds
	}
	return a.arr[r+c*m], nil
}

// GetCol returns a slice view of the specified column
func (a *Array) GetCol(c int) ([]float64, error) {
	m, n := a.Shape()
	if c < 0 || c >= n {
		return nil, ErrColOutOfBounds
	}
	return a.arr[c*m : (c+1)*m], nil
}

// GetRow returns a copy of the specified row
func (a *Array) GetRow(r int) ([]float64, error) {
	m, n := a.Shape()
	if r < 0 || r >= m {
		return nil, ErrRowOutOfBounds
	}

	res := make([]float64, 0, n)
	for c := 0; c < n; c++ {
		res = append(res, a.arr[c*m+r])
	}
	return res, nil
}

// Rows returns a new array made of the requested rows in the order they are given.
// Rows may repeat.
func (a *Array) Rows(idx []int) (*Array, error) {
	if a == nil {
		return nil, ErrUninitializedArray
	}
	m, n := a.Shape()
	for _, r := range idx {
		if r < 0 || r >= m {
			return nil, fmt.Errorf("row %d with %d rows, %w", r, m, ErrRowOutOfBounds)
		}
	}

	outM := len(idx)
	arr := make([]float64, outM*n)
	for c := 0; c < n; c++ {
		src := a.arr[c*m : (c+1)*m]
		dst := arr[c*outM : (c+1)*outM]
		for i, r := range idx {
			dst[i] = src[r]
		}
	}
	return &Array{arr: arr, m: outM, n: n}, nil
}

// Flatten returns the values in row major order
func (a *Array) Flatten() []float64 {
	m, n := a.Shape()
	res := make([]float64, a.Size())
	for i := 0; i < a.Size(); i++ {
		res[(i%m)*n+i/m] = a.arr[i]
	}
	return res
}

// Copy returns a deep copy of the array
func (a *Array) Copy() *Array {
	if a == nil {
		return nil
	}
	arr := make([]float64, len(a.arr))
	copy(arr, a.arr)
	return &Array{arr: arr, m: a.m, n: a.n}
}

// Extend expands the first array adding more columns with the second and return
// a new array
func Extend(a, b *Array) (*Array, error) {
	if a == nil {
		return nil, fmt.Errorf("first array argument, %w", ErrUninitializedArray)
	}
	if b == nil {
		return nil, fmt.Errorf("second array argument, %w", ErrUninitializedArray)
	}
	aM, aN := a.Shape()
	bM, bN := b.Shape()
	if aM != bM {
		return nil, fmt.Errorf("first array with %d rows, and second array with %d rows, %w", aM, bM, ErrRowMismatch)
	}

	arr := make([]float64, 0, a.Size()+b.Size())
	arr = append(arr, a.arr...)
	arr = append(arr, b.arr...)
	return &Array{arr: arr, m: aM, n: aN + bN}, nil
}
