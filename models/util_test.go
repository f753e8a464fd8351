package models

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aouyang1/go-uncertainty/array"
	"github.com/aouyang1/go-uncertainty/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t testing.TB, x [][]float64, y []float64) *timedataset.Table {
	t.Helper()
	arr, err := array.New2D(x)
	require.Nil(t, err)

	m, _ := arr.Shape()
	tSeries := timedataset.GenerateT(m, time.Hour, func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	})
	tb, err := timedataset.NewTable(tSeries, arr, nil, y)
	require.Nil(t, err)
	return tb
}

func testModel(t *testing.T, model Model, tb *timedataset.Table, intercept float64, coef []float64, tol float64) {
	err := model.Fit(tb)
	require.Nil(t, err)

	assert.InDelta(t, intercept, model.Intercept(), tol)

	c := model.Coef()
	assert.InDeltaSlice(t, coef, c, tol)

	r2, err := model.Score(tb)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, tol)

	pred, err := model.Predict(tb.Features())
	require.Nil(t, err)
	assert.InDeltaSlice(t, tb.Y, pred, tol*100)
}

func generateBenchData(b *testing.B, nObs, nFeat int) *timedataset.Table {
	rng := rand.New(rand.NewPCG(1, 2))
	data := make([][]float64, nObs)
	y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		data[i] = make([]float64, nFeat)
		for j := 0; j < nFeat; j++ {
			val := rng.Float64()
			if j == 0 {
				val = 1.0
			}
			data[i][j] = val
			y[i] += float64(j) * val
		}
	}
	return newTestTable(b, data, y)
}
