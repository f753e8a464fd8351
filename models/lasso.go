package models

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/aouyang1/go-uncertainty/array"
	"github.com/aouyang1/go-uncertainty/score"
	"github.com/aouyang1/go-uncertainty/timedataset"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultLambda     = 1.0
	DefaultIterations = 1000
	DefaultTolerance  = 1e-4
)

var (
	ErrNegativeLambda     = errors.New("negative lambda")
	ErrNegativeIterations = errors.New("negative iterations")
	ErrNegativeTolerance  = errors.New("negative tolerance")
	ErrWarmStartBetaSize  = errors.New("warm start beta does not have the same number of coefficients as training features")
	ErrNoLambdas          = errors.New("no lambdas provided to fit with")
	ErrLambdaCandidate    = errors.New("unable to fit lambda candidate")
)

// LassoOptions represents input options to run the Lasso Regression
type LassoOptions struct {
	// WarmStartBeta is used to prime the coordinate descent to reduce the training time if a previous
	// fit has been performed. Includes the intercept as the first value when FitIntercept is set.
	WarmStartBeta []float64 `yaml:"-" json:"-"`

	// Lambda represents the L1 multiplier, controlling the regularization. Must be a non-negative. 0.0 results in converging
	// to Ordinary Least Squares (OLS).
	Lambda float64 `yaml:"lambda" json:"lambda"`

	// Iterations is the maximum number of times the fit loops through training all coefficients.
	Iterations int `yaml:"iterations" json:"iterations"`

	// Tolerance is the smallest coefficient change on each iteration to determine when to stop iterating.
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`

	// FitIntercept adds a constant 1.0 feature as the first column if set to true. The intercept is
	// not penalized.
	FitIntercept bool `yaml:"fit_intercept" json:"fit_intercept"`
}

// Validate runs basic validation on Lasso options
func (l *LassoOptions) Validate() (*LassoOptions, error) {
	if l == nil {
		l = NewDefaultLassoOptions()
	}

	if l.Lambda < 0 {
		return nil, ErrNegativeLambda
	}
	if l.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if l.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	return l, nil
}

// NewDefaultLassoOptions returns a default set of Lasso Regression options
func NewDefaultLassoOptions() *LassoOptions {
	return &LassoOptions{
		Lambda:        DefaultLambda,
		Iterations:    DefaultIterations,
		Tolerance:     DefaultTolerance,
		WarmStartBeta: nil,
		FitIntercept:  true,
	}
}

// LassoRegression computes the lasso regression using coordinate descent. lambda = 0 converges to OLS
type LassoRegression struct {
	opt *LassoOptions

	// serve as precomputed data structures to reduce memory allocations
	xcols [][]float64
	xdot  []float64
	gamma []float64
	yArr  []float64

	coef      []float64
	intercept float64
	fit       bool
}

// NewLassoRegression initializes a Lasso model ready for fitting
func NewLassoRegression(opt *LassoOptions) (*LassoRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &LassoRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the target column of the training table
func (l *LassoRegression) Fit(tb *timedataset.Table) error {
	if l.opt == nil {
		return ErrNoOptions
	}
	y, err := target(tb)
	if err != nil {
		return err
	}
	x, err := designMatrix(tb, l.opt.FitIntercept)
	if err != nil {
		return err
	}
	// fresh table, fresh precomputation
	l.xcols, l.xdot, l.gamma, l.yArr = nil, nil, nil, nil
	return l.fitDesign(x, y)
}

func (l *LassoRegression) fitDesign(x *array.Array, y []float64) error {
	m, n := x.Shape()
	if m != len(y) {
		return fmt.Errorf("training data has %d rows and target has %d rows, %w", m, len(y), ErrFeatureLenMismatch)
	}
	if l.opt.WarmStartBeta != nil && len(l.opt.WarmStartBeta) != n {
		return fmt.Errorf("warm start beta has %d features instead of %d, %w", len(l.opt.WarmStartBeta), n, ErrWarmStartBetaSize)
	}

	// tracks current betas
	beta := make([]float64, n)
	if l.opt.WarmStartBeta != nil {
		copy(beta, l.opt.WarmStartBeta)
	}

	// precompute data structures if not previously populated. This is generally only done
	// by the auto lasso regression
	if err := l.precompute(x, y); err != nil {
		return err
	}

	// tracks the per coordinate residual
	residual := make([]float64, m)

	// tracks the current beta * x by adding the deltas on each beta iteration
	betaX := make([]float64, m)
	for j := 0; j < n; j++ {
		if beta[j] != 0 {
			floats.AddScaled(betaX, beta[j], l.xcols[j])
		}
	}

	// tracks the delta of the beta * x of each iteration by computing the next beta
	// multiplied by the feature observations of that beta. will be added to betaX on
	// the next beta iteration
	betaXDelta := make([]float64, m)

	for i := 0; i < l.opt.Iterations; i++ {
		maxCoef := 0.0
		maxUpdate := 0.0

		// loop through all features and minimize loss function
		for j := 0; j < n; j++ {
			betaCurr := beta[j]
			if (i != 0 && betaCurr == 0) || l.xdot[j] == 0 {
				continue
			}

			floats.Add(betaX, betaXDelta)
			floats.SubTo(residual, l.yArr, betaX)

			obsCol := l.xcols[j]
			num := floats.Dot(obsCol, residual)
			betaNext := SoftThreshold(num/l.xdot[j]+betaCurr, l.gamma[j])

			maxCoef = math.Max(maxCoef, math.Abs(betaNext))
			maxUpdate = math.Max(maxUpdate, math.Abs(betaNext-betaCurr))
			floats.ScaleTo(betaXDelta, betaNext-betaCurr, obsCol)
			beta[j] = betaNext
		}

		// break early if we've achieved the desired tolerance
		if maxUpdate <= l.opt.Tolerance*maxCoef {
			break
		}
	}

	if l.opt.FitIntercept {
		l.intercept = beta[0]
		l.coef = beta[1:]
	} else {
		l.intercept = 0.0
		l.coef = beta
	}
	l.fit = true
	return nil
}

func (l *LassoRegression) precompute(x *array.Array, y []float64) error {
	if len(l.xdot) != 0 || len(l.xcols) != 0 || len(l.gamma) != 0 || len(l.yArr) != 0 {
		return nil
	}
	_, n := x.Shape()
	xcols, xdot, err := columns(x)
	if err != nil {
		return err
	}
	l.xcols = xcols
	l.xdot = xdot
	l.gamma = make([]float64, n)
	for i := 0; i < n; i++ {
		if xdot[i] == 0 || (l.opt.FitIntercept && i == 0) {
			continue
		}
		l.gamma[i] = l.opt.Lambda / xdot[i]
	}
	l.yArr = y
	return nil
}

// columns returns views of each design column and their squared norms
func columns(x *array.Array) ([][]float64, []float64, error) {
	_, n := x.Shape()
	xcols := make([][]float64, n)
	xdot := make([]float64, n)
	for i := 0; i < n; i++ {
		xi, err := x.GetCol(i)
		if err != nil {
			return nil, nil, fmt.Errorf("attempting to access col index %d with %d columns during preprocessing, %w", i, n, err)
		}
		xcols[i] = xi
		xdot[i] = floats.Dot(xi, xi)
	}
	return xcols, xdot, nil
}

// Predict using the Lasso model. The target column of the table is ignored.
func (l *LassoRegression) Predict(tb *timedataset.Table) ([]float64, error) {
	if l.opt == nil {
		return nil, ErrNoOptions
	}
	if !l.fit {
		return nil, ErrNotFit
	}

	x, err := designMatrix(tb, l.opt.FitIntercept)
	if err != nil {
		return nil, err
	}
	return l.predictDesign(x)
}

func (l *LassoRegression) predictDesign(x *array.Array) ([]float64, error) {
	coef := l.coef
	if l.opt.FitIntercept {
		coef = append([]float64{l.intercept}, l.coef...)
	}
	return predict(x, coef)
}

// Score computes the coefficient of determination of the prediction
func (l *LassoRegression) Score(tb *timedataset.Table) (float64, error) {
	return r2(l, tb)
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (l *LassoRegression) Intercept() float64 {
	return l.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature columns.
func (l *LassoRegression) Coef() []float64 {
	c := make([]float64, len(l.coef))
	copy(c, l.coef)
	return c
}

// SoftThreshold returns 0.0 if the value is less than or equal to the gamma input
func SoftThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		return -res
	}
	return res
}

// LassoAutoOptions represents input options to run the Lasso Regression with optimal regularization parameter lambda
type LassoAutoOptions struct {
	// Lambdas are the candidate L1 multipliers. Each must be non-negative.
	Lambdas []float64 `yaml:"lambdas" json:"lambdas"`

	// Iterations is the maximum number of times the fit loops through training all coefficients.
	Iterations int `yaml:"iterations" json:"iterations"`

	// Tolerance is the smallest coefficient change on each iteration to determine when to stop iterating.
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`

	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool `yaml:"fit_intercept" json:"fit_intercept"`

	// Parallelization sets how many fits to run in parallel. More will increase memory and compute usage.
	Parallelization int `yaml:"parallelization" json:"parallelization"`
}

// Validate runs basic validation on Lasso Auto options
func (l *LassoAutoOptions) Validate() (*LassoAutoOptions, error) {
	if l == nil {
		l = NewDefaultLassoAutoOptions()
	}

	if len(l.Lambdas) == 0 {
		return nil, ErrNoLambdas
	}

	for _, lambda := range l.Lambdas {
		if lambda < 0.0 {
			return nil, ErrNegativeLambda
		}
	}

	if l.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if l.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	if l.Parallelization <= 0 || l.Parallelization > len(l.Lambdas) {
		l.Parallelization = len(l.Lambdas)
	}
	return l, nil
}

// NewDefaultLassoAutoOptions returns a default set of Lasso Auto Regression options
func NewDefaultLassoAutoOptions() *LassoAutoOptions {
	return &LassoAutoOptions{
		Lambdas:         []float64{DefaultLambda},
		Iterations:      DefaultIterations,
		Tolerance:       DefaultTolerance,
		FitIntercept:    true,
		Parallelization: 1,
	}
}

// LassoAutoRegression computes the lasso regression using coordinate descent. lambda is derived by finding the
// candidate with the best in sample coefficient of determination
type LassoAutoRegression struct {
	opt *LassoAutoOptions

	// serve as precomputed data structures to reduce memory allocations
	xcols [][]float64
	xdot  []float64
	yArr  []float64

	scoreMu   sync.Mutex
	bestScore float64
	bestModel *LassoRegression
	fitErr    error
}

// NewLassoAutoRegression initializes a Lasso model ready for fitting using automated lambda parameter selection
func NewLassoAutoRegression(opt *LassoAutoOptions) (*LassoAutoRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	return &LassoAutoRegression{
		opt:       opt,
		bestScore: math.Inf(-1),
	}, nil
}

// Fit the model according to the given training table. If any lambda candidate fails the
// first failure is returned wrapping ErrLambdaCandidate, though the best of the remaining
// candidates is still kept for prediction. ErrNotFit is returned when every candidate fails.
func (l *LassoAutoRegression) Fit(tb *timedataset.Table) error {
	if l.opt == nil {
		return ErrNoOptions
	}
	y, err := target(tb)
	if err != nil {
		return err
	}
	x, err := designMatrix(tb, l.opt.FitIntercept)
	if err != nil {
		return err
	}
	m, _ := x.Shape()
	if m != len(y) {
		return fmt.Errorf("training data has %d rows and target has %d rows, %w", m, len(y), ErrFeatureLenMismatch)
	}

	l.xcols, l.xdot, err = columns(x)
	if err != nil {
		return err
	}
	l.yArr = y
	l.bestScore = math.Inf(-1)
	l.bestModel = nil
	l.fitErr = nil

	sem := make(chan struct{}, l.opt.Parallelization)
	var wg sync.WaitGroup
	for _, lambda := range l.opt.Lambdas {
		sem <- struct{}{}
		wg.Add(1)

		go l.runLasso(lambda, x, &wg, sem)
	}
	wg.Wait()

	if l.bestModel == nil {
		if l.fitErr != nil {
			return fmt.Errorf("%w, %w", ErrNotFit, l.fitErr)
		}
		return ErrNotFit
	}
	if l.fitErr != nil {
		return l.fitErr
	}
	return nil
}

// recordErr keeps the first failed lambda candidate
func (l *LassoAutoRegression) recordErr(lambda float64, err error) {
	l.scoreMu.Lock()
	defer l.scoreMu.Unlock()
	if l.fitErr == nil {
		l.fitErr = fmt.Errorf("lambda %g, %w, %w", lambda, ErrLambdaCandidate, err)
	}
}

func (l *LassoAutoRegression) runLasso(lambda float64, x *array.Array, wg *sync.WaitGroup, sem chan struct{}) {
	defer func() {
		wg.Done()
		<-sem
	}()
	_, n := x.Shape()

	opt := &LassoOptions{
		Lambda:       lambda,
		Iterations:   l.opt.Iterations,
		Tolerance:    l.opt.Tolerance,
		FitIntercept: false, // taken care of ahead of time
	}

	gamma := make([]float64, n)
	for i := 0; i < n; i++ {
		if l.xdot[i] == 0 || (l.opt.FitIntercept && i == 0) {
			continue
		}
		gamma[i] = lambda / l.xdot[i]
	}
	reg, err := NewLassoRegression(opt)
	if err != nil {
		slog.Error("unable to initialize lasso regression", "error", err.Error())
		l.recordErr(lambda, err)
		return
	}
	reg.xcols = l.xcols
	reg.xdot = l.xdot
	reg.gamma = gamma
	reg.yArr = l.yArr

	if err := reg.fitDesign(x, l.yArr); err != nil {
		slog.Error("unable to fit lasso regression", "lambda", lambda, "error", err.Error())
		l.recordErr(lambda, err)
		return
	}

	pred, err := reg.predictDesign(x)
	if err != nil {
		slog.Error("unable to predict with lasso regression", "lambda", lambda, "error", err.Error())
		l.recordErr(lambda, err)
		return
	}
	fitScore, err := score.RSquared(pred, l.yArr)
	if err != nil {
		slog.Error("unable to compute fit score for lasso regression", "lambda", lambda, "error", err.Error())
		l.recordErr(lambda, err)
		return
	}

	l.scoreMu.Lock()
	defer l.scoreMu.Unlock()
	if fitScore > l.bestScore {
		l.bestScore = fitScore
		l.bestModel = reg
	}
}

// Predict using the best Lasso model
func (l *LassoAutoRegression) Predict(tb *timedataset.Table) ([]float64, error) {
	if l.bestModel == nil {
		return nil, ErrNotFit
	}
	x, err := designMatrix(tb, l.opt.FitIntercept)
	if err != nil {
		return nil, err
	}
	return l.bestModel.predictDesign(x)
}

// Score computes the coefficient of determination of the prediction
func (l *LassoAutoRegression) Score(tb *timedataset.Table) (float64, error) {
	return r2(l, tb)
}

// Lambda returns the selected regularization parameter
func (l *LassoAutoRegression) Lambda() float64 {
	if l == nil || l.bestModel == nil {
		return 0.0
	}
	return l.bestModel.opt.Lambda
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (l *LassoAutoRegression) Intercept() float64 {
	if l == nil || l.bestModel == nil {
		return 0.0
	}
	if l.opt.FitIntercept {
		return l.bestModel.Coef()[0]
	}
	return 0.0
}

// Coef returns a slice of the trained coefficients in the same order of the training feature columns.
func (l *LassoAutoRegression) Coef() []float64 {
	if l == nil || l.bestModel == nil {
		return nil
	}
	if l.opt.FitIntercept {
		return l.bestModel.Coef()[1:]
	}
	return l.bestModel.Coef()
}
