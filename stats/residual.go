package stats

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrLenMismatch        = errors.New("actual and predicted have different lengths")
	ErrInsufficientData   = errors.New("too few residuals to form a bootstrap block")
	ErrInvalidSamples     = errors.New("number of bootstrap samples must be positive")
	ErrNegativeMultiplier = errors.New("confidence multiplier must be non-negative")
)

const (
	DefaultConfidenceMultiplier = 1.96
	DefaultBootstrapSamples     = 100

	// BlockSizeDivisor sets each bootstrap draw to a third of the residuals
	BlockSizeDivisor = 3
)

// DispersionOptions configures the bootstrap estimate of residual dispersion
type DispersionOptions struct {
	// Multiplier scales the standard error of the median into an interval half width.
	// 1.96 approximates a 95% normal interval.
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`

	// Samples is the number of bootstrap draws
	Samples int `yaml:"samples" json:"samples"`
}

func NewDefaultDispersionOptions() *DispersionOptions {
	return &DispersionOptions{
		Multiplier: DefaultConfidenceMultiplier,
		Samples:    DefaultBootstrapSamples,
	}
}

// Residuals returns actual - predicted for each point
func Residuals(actual, predicted []float64) ([]float64, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrLenMismatch)
	}
	res := make([]float64, len(actual))
	floats.SubTo(res, actual, predicted)
	return res, nil
}

// Median returns the middle value of x, averaging the two middle values for even
// lengths. The input is not modified. NaN is returned for an empty slice.
func Median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	return sortedMedian(sorted)
}

// sortedMedian sorts x in place before taking the median
func sortedMedian(x []float64) float64 {
	sort.Float64s(x)
	mid := len(x) / 2
	if len(x)%2 == 1 {
		return x[mid]
	}
	return (x[mid-1] + x[mid]) / 2.0
}

// BootstrapDispersion estimates the standard error of the median residual by
// resampling. Each of the opt.Samples draws takes a third of the residuals uniformly
// with replacement and records its median. The population standard deviation of those
// medians scaled by opt.Multiplier is returned.
//
// The draws come from rng so a seeded generator makes the estimate reproducible. A nil
// rng uses a randomly seeded generator.
func BootstrapDispersion(residuals []float64, opt *DispersionOptions, rng *rand.Rand) (float64, error) {
	if opt == nil {
		opt = NewDefaultDispersionOptions()
	}
	if opt.Samples < 1 {
		return 0, fmt.Errorf("got %d samples, %w", opt.Samples, ErrInvalidSamples)
	}
	if opt.Multiplier < 0 || math.IsNaN(opt.Multiplier) {
		return 0, fmt.Errorf("got multiplier of %.3f, %w", opt.Multiplier, ErrNegativeMultiplier)
	}

	blockSize := len(residuals) / BlockSizeDivisor
	if blockSize == 0 {
		return 0, fmt.Errorf(
			"need at least %d residuals, but got %d, %w",
			BlockSizeDivisor, len(residuals), ErrInsufficientData,
		)
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	n := len(residuals)
	medians := make([]float64, opt.Samples)
	draw := make([]float64, blockSize)
	for i := range medians {
		for j := range draw {
			draw[j] = residuals[rng.IntN(n)]
		}
		medians[i] = sortedMedian(draw)
	}

	return stat.PopStdDev(medians, nil) * opt.Multiplier, nil
}
