// Package trajectory provides time-grid and resampling helpers for reference
// and predicted series.
package trajectory

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/r-mohan/quadnmpc/internal/vectors"
)

// akimaMinPoints is the series length below which resampling falls back to
// piecewise-linear interpolation.
const akimaMinPoints = 5

// TimeGrid returns n uniformly spaced sample times starting at zero.
func TimeGrid(dt float64, n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = dt * float64(i)
	}
	return t
}

// Columns transposes a vector list into per-channel series.
func Columns(l vectors.VectorList) [][]float64 {
	if len(l) == 0 {
		return nil
	}
	dim := len(l[0])
	cols := make([][]float64, dim)
	for i := range cols {
		cols[i] = make([]float64, len(l))
		for k, v := range l {
			cols[i][k] = v[i]
		}
	}
	return cols
}

// Resample interpolates every channel of series onto m evenly spaced points
// across [t[0], t[len-1]]. Long series use an Akima spline; short ones fall
// back to piecewise-linear interpolation.
func Resample(t []float64, series vectors.VectorList, m int) ([]float64, vectors.VectorList, error) {
	if len(t) != len(series) {
		return nil, nil, fmt.Errorf("time grid length %d != series length %d: %w",
			len(t), len(series), vectors.ErrDimensionMismatch)
	}
	if len(t) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 samples, got %d: %w",
			len(t), vectors.ErrDimensionMismatch)
	}
	if m < 2 {
		return nil, nil, fmt.Errorf("need at least 2 output samples, got %d: %w",
			m, vectors.ErrDimensionMismatch)
	}

	span := t[len(t)-1] - t[0]
	tOut := make([]float64, m)
	for i := range tOut {
		tOut[i] = t[0] + span*float64(i)/float64(m-1)
	}

	out := vectors.Zeros(len(series[0]), m)
	for i, col := range Columns(series) {
		var p interp.FittablePredictor
		if len(t) < akimaMinPoints {
			p = &interp.PiecewiseLinear{}
		} else {
			p = &interp.AkimaSpline{}
		}
		if err := p.Fit(t, col); err != nil {
			return nil, nil, fmt.Errorf("fit channel %d: %w", i, err)
		}
		for k, tk := range tOut {
			out[k][i] = p.Predict(tk)
		}
	}
	return tOut, out, nil
}
