package uncertainty

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-uncertainty/interval"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// missingValue is rendered by echarts as a gap in the line
const missingValue = "-"

// LineIntervals generates an echart line chart of an interval frame plotting the actual values
// along with the forecasted, upper and lower values.
func LineIntervals(title string, frame *interval.Frame) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	n := frame.Len()
	lineDataActual := make([]opts.LineData, 0, n)
	lineDataForecast := make([]opts.LineData, 0, n)
	lineDataUpper := make([]opts.LineData, 0, n)
	lineDataLower := make([]opts.LineData, 0, n)

	for i := 0; i < n; i++ {
		actual := math.NaN()
		if frame.Truth != nil {
			actual = frame.Truth[i]
		}
		lineDataActual = append(lineDataActual, lineData(actual))
		lineDataForecast = append(lineDataForecast, lineData(frame.Forecast[i]))
		lineDataUpper = append(lineDataUpper, lineData(frame.Upper[i]))
		lineDataLower = append(lineDataLower, lineData(frame.Lower[i]))
	}

	line.SetXAxis(xAxis(frame)).
		AddSeries("Actual", lineDataActual).
		AddSeries("Forecast", lineDataForecast).
		AddSeries("Upper", lineDataUpper).
		AddSeries("Lower", lineDataLower)
	return line
}

func lineData(v float64) opts.LineData {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return opts.LineData{Value: missingValue}
	}
	return opts.LineData{Value: v}
}

// xAxis labels each row with its time, or with its position when the frame is not indexed
func xAxis(frame *interval.Frame) []string {
	x := make([]string, frame.Len())
	for i := range x {
		if frame.T != nil {
			x[i] = frame.T[i].Format(time.RFC3339)
			continue
		}
		x[i] = fmt.Sprintf("%d", i)
	}
	return x
}

// BarCoverage generates an echart bar chart of the coverage of each fold
func BarCoverage(coverage []float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Fold Coverage",
			},
		),
	)

	folds := make([]string, 0, len(coverage))
	barData := make([]opts.BarData, 0, len(coverage))
	for i, c := range coverage {
		folds = append(folds, fmt.Sprintf("fold %d", i))
		barData = append(barData, opts.BarData{Value: c})
	}
	bar.SetXAxis(folds).AddSeries("Coverage", barData)
	return bar
}

// Plot uses the Apache Echarts library to render an html page with the coverage of every
// fold followed by the prediction interval of each fold
func (r *Results) Plot(w io.Writer) error {
	page := components.NewPage()
	page.AddCharts(BarCoverage(r.Coverage))
	for _, f := range r.Folds {
		page.AddCharts(LineIntervals(fmt.Sprintf("Fold %d Interval", f.ID), f.Interval))
	}
	return page.Render(w)
}
