package plot

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultTrendFraction is the share of points in each local fit
const DefaultTrendFraction = 2.0 / 3.0

// RobustIterations is the number of bisquare reweighting passes after the
// initial fit.
const RobustIterations = 3

// Lowess fits a locally weighted linear regression at every distinct x using
// tricube weights over the nearest frac*n points, then refits
// RobustIterations times with bisquare weights on the residuals so isolated
// outliers do not drag the curve. The result is sorted by x.
func Lowess(points []Point, frac float64) []Point {
	n := len(points)
	if n < 2 {
		return nil
	}
	if frac <= 0 || frac > 1 {
		frac = DefaultTrendFraction
	}

	sorted := append([]Point(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range sorted {
		xs[i], ys[i] = p.X, p.Y
	}
	if xs[0] == xs[n-1] {
		return nil
	}

	k := int(frac*float64(n) + 1e-10)
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}

	robust := make([]float64, n)
	for i := range robust {
		robust[i] = 1
	}
	scale := 0.0
	for _, y := range ys {
		scale += math.Abs(y)
	}
	scale /= float64(n)

	fitted := make([]float64, n)
	for pass := 0; ; pass++ {
		smooth(xs, ys, robust, k, fitted)
		if pass == RobustIterations {
			break
		}
		mad, ok := reweight(ys, fitted, robust)
		if !ok || mad < 1e-7*scale {
			break
		}
	}

	var out []Point
	for i := range xs {
		if i > 0 && xs[i] == xs[i-1] {
			continue
		}
		out = append(out, Point{X: xs[i], Y: fitted[i]})
	}
	return out
}

// smooth evaluates one local fit per distinct x into fitted. Tied x values
// share the fit.
func smooth(xs, ys, robust []float64, k int, fitted []float64) {
	n := len(xs)
	dist := make([]float64, n)
	ordered := make([]float64, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		if i > 0 && xs[i] == xs[i-1] {
			fitted[i] = fitted[i-1]
			continue
		}
		for j := range xs {
			dist[j] = math.Abs(xs[j] - xs[i])
		}
		copy(ordered, dist)
		sort.Float64s(ordered)
		h := ordered[k-1]

		total := 0.0
		for j, d := range dist {
			weights[j] = tricube(d, h) * robust[j]
			total += weights[j]
		}
		if total == 0 {
			for j, d := range dist {
				weights[j] = tricube(d, h)
			}
		}
		fitted[i] = fitLocal(xs, ys, weights, xs[i])
	}
}

// reweight sets bisquare robustness weights from the residuals scaled by six
// median absolute residuals. It returns that median; ok is false when the fit
// produced non-finite values.
func reweight(ys, fitted, robust []float64) (mad float64, ok bool) {
	residuals := make([]float64, len(ys))
	for i := range ys {
		residuals[i] = math.Abs(ys[i] - fitted[i])
		if math.IsNaN(residuals[i]) || math.IsInf(residuals[i], 0) {
			return 0, false
		}
	}
	ordered := append([]float64(nil), residuals...)
	sort.Float64s(ordered)
	n := len(ordered)
	mad = (ordered[(n-1)/2] + ordered[n/2]) / 2
	if mad == 0 {
		return 0, true
	}
	for i, r := range residuals {
		robust[i] = bisquare(r / (6 * mad))
	}
	return mad, true
}

func bisquare(u float64) float64 {
	if math.Abs(u) >= 1 {
		return 0
	}
	c := 1 - u*u
	return c * c
}

func tricube(d, h float64) float64 {
	if h == 0 {
		if d == 0 {
			return 1
		}
		return 0
	}
	u := d / h
	if u >= 1 {
		return 0
	}
	c := 1 - u*u*u
	return c * c * c
}

// fitLocal evaluates the weighted regression line at x0, falling back to the
// weighted mean when the window has no spread in x.
func fitLocal(xs, ys, weights []float64, x0 float64) float64 {
	first := math.NaN()
	spread := false
	for j, w := range weights {
		if w <= 0 {
			continue
		}
		if math.IsNaN(first) {
			first = xs[j]
		} else if xs[j] != first {
			spread = true
			break
		}
	}
	if spread {
		alpha, beta := stat.LinearRegression(xs, ys, weights, false)
		if y := alpha + beta*x0; !math.IsNaN(y) && !math.IsInf(y, 0) {
			return y
		}
	}
	return stat.Mean(ys, weights)
}
