// Package forecast projects per-drug annual spending forward with an
// ordinary least squares trend over the historical series. The point
// forecasts carry a 95% confidence band derived from the residual standard
// error of the fit.
package forecast

import "math"

// zScore95 is the two-sided normal quantile for a 95% band.
const zScore95 = 1.959964

// lineFit is a least squares line over equally spaced observations, with
// the residual standard error of the fit.
type lineFit struct {
	slope      float64
	intercept  float64
	residualSE float64
}

// fitLine fits y = intercept + slope*x to values observed at x = 0..n-1.
// The residual standard error uses n-2 degrees of freedom, floored at one
// so short series still produce a finite band.
func fitLine(values []float64) lineFit {
	n := float64(len(values))
	if len(values) == 0 {
		return lineFit{}
	}
	if len(values) == 1 {
		return lineFit{intercept: values[0]}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	var slope float64
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}
	intercept := (sumY - slope*sumX) / n

	var sse float64
	for i, y := range values {
		resid := y - (intercept + slope*float64(i))
		sse += resid * resid
	}
	dof := n - 2
	if dof < 1 {
		dof = 1
	}

	return lineFit{
		slope:      slope,
		intercept:  intercept,
		residualSE: math.Sqrt(sse / dof),
	}
}

// at evaluates the fitted line at x.
func (f lineFit) at(x float64) float64 {
	return f.intercept + f.slope*x
}

// project extends the fit steps observations past the end of a series of
// length n, returning point forecasts with their confidence band. Spending
// cannot go negative, so forecasts and lower bounds are clamped at zero.
func (f lineFit) project(n, steps int) (points, lower, upper []float64) {
	points = make([]float64, steps)
	lower = make([]float64, steps)
	upper = make([]float64, steps)

	margin := zScore95 * f.residualSE
	for i := 0; i < steps; i++ {
		p := f.at(float64(n + i))
		if p < 0 {
			p = 0
		}
		points[i] = p
		lo := p - margin
		if lo < 0 {
			lo = 0
		}
		lower[i] = lo
		upper[i] = p + margin
	}
	return points, lower, upper
}
