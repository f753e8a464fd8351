package uncertainty

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/aouyang1/go-uncertainty/cv"
	"github.com/aouyang1/go-uncertainty/stats"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidMultiplier       = errors.New("confidence multiplier must be a non-negative number")
	ErrInvalidBootstrapSamples = errors.New("bootstrap samples must be positive")
	ErrInvalidPercentile       = errors.New("outlier percentiles must be within [0, 1] with lower below upper")
	ErrNegativeTukeyFactor     = errors.New("tukey factor must be non-negative")
)

// OutlierOptions configures the Tukey fences used to flag validation residuals
type OutlierOptions struct {
	LowerPercentile float64 `yaml:"lower_percentile" json:"lower_percentile"`
	UpperPercentile float64 `yaml:"upper_percentile" json:"upper_percentile"`
	TukeyFactor     float64 `yaml:"tukey_factor" json:"tukey_factor"`
}

func NewDefaultOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		LowerPercentile: 0.25,
		UpperPercentile: 0.75,
		TukeyFactor:     1.5,
	}
}

// Validate checks the percentile range and fence factor
func (o *OutlierOptions) Validate() error {
	if o == nil {
		return nil
	}
	if o.LowerPercentile < 0 || o.UpperPercentile > 1 || o.LowerPercentile >= o.UpperPercentile {
		return fmt.Errorf("got [%.3f, %.3f], %w", o.LowerPercentile, o.UpperPercentile, ErrInvalidPercentile)
	}
	if o.TukeyFactor < 0 {
		return fmt.Errorf("got %.3f, %w", o.TukeyFactor, ErrNegativeTukeyFactor)
	}
	return nil
}

// Options configures how an Evaluator turns fold residuals into prediction intervals
type Options struct {
	// ConfidenceMultiplier scales the bootstrap standard error into the interval half width
	ConfidenceMultiplier float64 `yaml:"confidence_multiplier" json:"confidence_multiplier"`

	// BootstrapSamples is the number of resamples per fold
	BootstrapSamples int `yaml:"bootstrap_samples" json:"bootstrap_samples"`

	// WidenOverTime grows the interval of row i by sqrt(i+1)
	WidenOverTime bool `yaml:"widen_over_time" json:"widen_over_time"`

	// Seed makes the bootstrap reproducible when set
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// OutlierOptions flags validation residuals outside the Tukey fences. Detection is
	// skipped when nil.
	OutlierOptions *OutlierOptions `yaml:"outlier_options" json:"outlier_options"`
}

// NewDefaultOptions returns a 95% normal interval widening with the horizon
func NewDefaultOptions() *Options {
	return &Options{
		ConfidenceMultiplier: stats.DefaultConfidenceMultiplier,
		BootstrapSamples:     stats.DefaultBootstrapSamples,
		WidenOverTime:        true,
		OutlierOptions:       NewDefaultOutlierOptions(),
	}
}

// ParseOptions decodes yaml on top of the default options. Fields absent from the
// document keep their default value.
func ParseOptions(data []byte) (*Options, error) {
	opt := NewDefaultOptions()
	if err := yaml.Unmarshal(data, opt); err != nil {
		return nil, fmt.Errorf("unable to parse options, %w", err)
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return opt, nil
}

// Validate reports the first invalid option
func (o *Options) Validate() error {
	if o.ConfidenceMultiplier < 0 || math.IsNaN(o.ConfidenceMultiplier) || math.IsInf(o.ConfidenceMultiplier, 0) {
		return fmt.Errorf("got %.3f, %w", o.ConfidenceMultiplier, ErrInvalidMultiplier)
	}
	if o.BootstrapSamples < 1 {
		return fmt.Errorf("got %d, %w", o.BootstrapSamples, ErrInvalidBootstrapSamples)
	}
	if err := o.OutlierOptions.Validate(); err != nil {
		return fmt.Errorf("invalid outlier options, %w", err)
	}
	return nil
}

func (o *Options) intervalOptions() *cv.IntervalOptions {
	return &cv.IntervalOptions{
		Dispersion: &stats.DispersionOptions{
			Multiplier: o.ConfidenceMultiplier,
			Samples:    o.BootstrapSamples,
		},
		WidenOverTime: o.WidenOverTime,
	}
}

// rng returns a generator seeded from Seed, or a randomly seeded one when unset
func (o *Options) rng() *rand.Rand {
	if o.Seed != nil {
		return rand.New(rand.NewPCG(*o.Seed, *o.Seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
