package models

import (
	"fmt"

	"github.com/aouyang1/go-uncertainty/array"
	"github.com/aouyang1/go-uncertainty/timedataset"
	"gonum.org/v1/gonum/mat"
)

type OLSOptions struct {
	FitIntercept bool `yaml:"fit_intercept" json:"fit_intercept"`
}

// Validate returns the default options when nil
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	return o, nil
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares using QR factorization
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	fit       bool
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

// Fit solves for the coefficients minimizing the squared error against the target column
func (o *OLSRegression) Fit(tb *timedataset.Table) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	y, err := target(tb)
	if err != nil {
		return err
	}
	x, err := designMatrix(tb, o.opt.FitIntercept)
	if err != nil {
		return err
	}

	m, n := x.Shape()
	if n == 0 {
		return ErrNoDesignMatrix
	}
	if m < n {
		return fmt.Errorf("got %d samples for %d coefficients, %w", m, n, ErrUnderdetermined)
	}

	qr := new(mat.QR)
	qr.Factorize(toDense(x))

	c := new(mat.Dense)
	if err := qr.SolveTo(c, false, mat.NewDense(m, 1, y)); err != nil {
		return fmt.Errorf("unable to solve least squares, %w", err)
	}
	coef := mat.Col(nil, 0, c)

	if o.opt.FitIntercept {
		o.intercept = coef[0]
		o.coef = coef[1:]
	} else {
		o.intercept = 0.0
		o.coef = coef
	}
	o.fit = true
	return nil
}

// Predict returns one forecast per row of the table. The target column is ignored.
func (o *OLSRegression) Predict(tb *timedataset.Table) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if !o.fit {
		return nil, ErrNotFit
	}

	coef := o.coef
	if o.opt.FitIntercept {
		coef = append([]float64{o.intercept}, o.coef...)
	}
	x, err := designMatrix(tb, o.opt.FitIntercept)
	if err != nil {
		return nil, err
	}
	return predict(x, coef)
}

// Score computes the coefficient of determination of the prediction
func (o *OLSRegression) Score(tb *timedataset.Table) (float64, error) {
	return r2(o, tb)
}

func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

// toDense converts the column major array into a row major gonum matrix
func toDense(x *array.Array) *mat.Dense {
	m, n := x.Shape()
	return mat.NewDense(m, n, x.Flatten())
}

// predict multiplies the design matrix by the coefficients
func predict(x *array.Array, coef []float64) ([]float64, error) {
	m, n := x.Shape()
	if n != len(coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(coef), ErrFeatureLenMismatch)
	}
	if m == 0 || n == 0 {
		return make([]float64, m), nil
	}

	var res mat.VecDense
	res.MulVec(toDense(x), mat.NewVecDense(n, coef))
	return res.RawVector().Data, nil
}
