package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		lower    float64
		upper    float64
		tukey    float64
		expected []int
	}{
		"empty": {
			y:        nil,
			lower:    0.25,
			upper:    0.75,
			tukey:    1.5,
			expected: nil,
		},
		"no outliers": {
			y:        []float64{1, 2, 3, 4, 5, 6, 7, 8},
			lower:    0.25,
			upper:    0.75,
			tukey:    1.5,
			expected: nil,
		},
		"spike": {
			y:        []float64{1, 2, 1, 2, 1, 2, 1, 50},
			lower:    0.25,
			upper:    0.75,
			tukey:    1.5,
			expected: []int{7},
		},
		"constant": {
			y:        []float64{3, 3, 3, 3},
			lower:    0.1,
			upper:    0.9,
			tukey:    1.0,
			expected: nil,
		},
		"full percentile range": {
			y:        []float64{1, 2, 3},
			lower:    0.0,
			upper:    1.0,
			tukey:    0.0,
			expected: nil,
		},
		"ignores nans": {
			y:        []float64{1, math.NaN(), 2, 1, 2, 1, 2, -40},
			lower:    0.25,
			upper:    0.75,
			tukey:    1.5,
			expected: []int{7},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := DetectOutliers(td.y, td.lower, td.upper, td.tukey)
			assert.Equal(t, td.expected, res)
		})
	}
}
