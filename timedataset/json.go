package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON       = errors.New("invalid json payload")
	ErrPathNotFound      = errors.New("json path not found")
	ErrUnknownTimeFormat = errors.New("unknown time format")
)

const (
	TimeFormatRFC3339   = "rfc3339"
	TimeFormatUnix      = "unix"
	TimeFormatUnixMilli = "unix_milli"
)

// JSONOptions describes where the timestamps and values live inside a json payload
// using gjson path syntax, e.g. "data.#.ts" and "data.#.value"
type JSONOptions struct {
	TimePath   string `yaml:"time_path" json:"time_path"`
	ValuePath  string `yaml:"value_path" json:"value_path"`
	TimeFormat string `yaml:"time_format" json:"time_format"`
}

func NewDefaultJSONOptions() *JSONOptions {
	return &JSONOptions{
		TimePath:   "time",
		ValuePath:  "value",
		TimeFormat: TimeFormatRFC3339,
	}
}

// LoadJSON extracts a univariate table from a json payload. Null values are loaded
// as NaN so they can be dropped by feature generation.
func LoadJSON(data []byte, opt *JSONOptions) (*Table, error) {
	if opt == nil {
		opt = NewDefaultJSONOptions()
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	timestamps := gjson.GetBytes(data, opt.TimePath)
	if !timestamps.Exists() {
		return nil, fmt.Errorf("time path %q, %w", opt.TimePath, ErrPathNotFound)
	}
	values := gjson.GetBytes(data, opt.ValuePath)
	if !values.Exists() {
		return nil, fmt.Errorf("value path %q, %w", opt.ValuePath, ErrPathNotFound)
	}

	tsArr := timestamps.Array()
	valArr := values.Array()
	if len(tsArr) != len(valArr) {
		return nil, fmt.Errorf(
			"got %d timestamps and %d values, %w",
			len(tsArr), len(valArr), ErrDatasetLenMismatch,
		)
	}

	t := make([]time.Time, 0, len(tsArr))
	y := make([]float64, 0, len(valArr))
	for i := range tsArr {
		ts, err := parseTime(tsArr[i], opt.TimeFormat)
		if err != nil {
			return nil, fmt.Errorf("unable to parse timestamp at %d, %w", i, err)
		}
		t = append(t, ts)

		if valArr[i].Type == gjson.Null {
			y = append(y, math.NaN())
			continue
		}
		y = append(y, valArr[i].Float())
	}
	return NewUnivariateTable(t, y)
}

func parseTime(val gjson.Result, format string) (time.Time, error) {
	switch format {
	case "", TimeFormatRFC3339:
		return time.Parse(time.RFC3339, val.String())
	case TimeFormatUnix:
		return time.Unix(val.Int(), 0).UTC(), nil
	case TimeFormatUnixMilli:
		return time.UnixMilli(val.Int()).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%q, %w", format, ErrUnknownTimeFormat)
	}
}
