package timedataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aouyang1/go-uncertainty/array"
	"github.com/rickar/cal/v2"
)

var ErrInvalidLag = errors.New("lags must be positive")

// FeatureOptions configures the features derived from a univariate series
type FeatureOptions struct {
	// Lags adds one column per lag holding the target value that many rows earlier
	Lags []int

	// Holidays adds one indicator column per holiday set to 1.0 on its observed date
	Holidays []*cal.Holiday

	// Trend adds a column of hours elapsed since the first sample
	Trend bool
}

// NewDefaultFeatureOptions uses the previous sample and the same sample one day
// back for hourly data, plus a linear trend
func NewDefaultFeatureOptions() *FeatureOptions {
	return &FeatureOptions{
		Lags:  []int{1, 24},
		Trend: true,
	}
}

// LagLabel is the feature label used for a lag column
func LagLabel(lag int) string {
	return fmt.Sprintf("lag_%d", lag)
}

// HolidayLabel is the feature label used for a holiday indicator column
func HolidayLabel(hol *cal.Holiday) string {
	return "holiday_" + strings.ReplaceAll(hol.Name, " ", "_")
}

const TrendLabel = "trend"

// LagFeatures builds the lagged feature frame of a series. Rows where any lag reaches
// before the start of the series, or where the target or a lagged value is NaN, are
// dropped.
func LagFeatures(t []time.Time, y []float64, lags []int) (*Table, error) {
	return NewFeatureTable(t, y, &FeatureOptions{Lags: lags})
}

// NewFeatureTable derives a feature table from a univariate series using the
// provided options. If no options are provided a default is used.
func NewFeatureTable(t []time.Time, y []float64, opt *FeatureOptions) (*Table, error) {
	if opt == nil {
		opt = NewDefaultFeatureOptions()
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	maxLag := 0
	for _, lag := range opt.Lags {
		if lag <= 0 {
			return nil, fmt.Errorf("got lag of %d, %w", lag, ErrInvalidLag)
		}
		maxLag = max(maxLag, lag)
	}

	keep := make([]int, 0, len(y))
	for i := maxLag; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		valid := true
		for _, lag := range opt.Lags {
			if math.IsNaN(y[i-lag]) {
				valid = false
				break
			}
		}
		if valid {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("no rows left after applying %d lags, %w", maxLag, ErrNoTrainingData)
	}

	var labels []string
	var cols [][]float64
	for _, lag := range opt.Lags {
		col := make([]float64, 0, len(keep))
		for _, i := range keep {
			col = append(col, y[i-lag])
		}
		labels = append(labels, LagLabel(lag))
		cols = append(cols, col)
	}

	for _, hol := range opt.Holidays {
		col := holidayIndicator(hol, t, keep)
		labels = append(labels, HolidayLabel(hol))
		cols = append(cols, col)
	}

	if opt.Trend {
		col := make([]float64, 0, len(keep))
		for _, i := range keep {
			col = append(col, t[i].Sub(t[0]).Hours())
		}
		labels = append(labels, TrendLabel)
		cols = append(cols, col)
	}

	x, err := array.NewFromCols(cols)
	if err != nil {
		return nil, fmt.Errorf("unable to build feature array, %w", err)
	}

	outT := make([]time.Time, 0, len(keep))
	outY := make([]float64, 0, len(keep))
	for _, i := range keep {
		outT = append(outT, t[i])
		outY = append(outY, y[i])
	}
	if len(cols) == 0 {
		x = nil
		labels = nil
	}
	return NewTable(outT, x, labels, outY)
}

// holidayIndicator marks rows whose calendar date in their own location matches the
// observed date of the holiday for that year
func holidayIndicator(hol *cal.Holiday, t []time.Time, rows []int) []float64 {
	type date struct {
		y int
		m time.Month
		d int
	}
	observedByYear := make(map[int]date)

	col := make([]float64, 0, len(rows))
	for _, i := range rows {
		year, month, day := t[i].Date()
		obs, exists := observedByYear[year]
		if !exists {
			_, observed := hol.Calc(year)
			oy, om, od := observed.Date()
			obs = date{oy, om, od}
			observedByYear[year] = obs
		}
		if obs == (date{year, month, day}) {
			col = append(col, 1.0)
			continue
		}
		col = append(col, 0.0)
	}
	return col
}
