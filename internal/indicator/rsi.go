// Package indicator implements the RSI recurrence and its classification.
package indicator

import "math"

// Category labels a final RSI reading.
type Category string

const (
	CategoryNA         Category = "na"
	CategoryOverbought Category = "overbought"
	CategoryOversold   Category = "oversold"
	CategoryNeutral    Category = "neutral"
)

const (
	OverboughtLevel = 70.0
	OversoldLevel   = 30.0

	// lossEpsilon is the float64 machine epsilon.
	lossEpsilon = 2.220446049250313e-16
)

// Point is a single RSI reading. Valid is false inside the warm-up window.
type Point struct {
	Value float64
	Valid bool
}

// Compute returns one Point per price. The first period+1 points are invalid;
// with len(prices) <= period every point is invalid.
//
// Averages are seeded with the simple mean of the first period deltas and then
// updated as avg = (avg*(period-1) + x) * (1/period).
func Compute(prices []float64, period int) []Point {
	n := len(prices)
	out := make([]Point, n)
	if period < 1 || n <= period {
		return out
	}

	deltas := make([]float64, n)
	for i := 1; i < n; i++ {
		deltas[i] = prices[i] - prices[i-1]
	}

	var avgGain, avgLoss float64
	for _, d := range deltas[1 : period+1] {
		if d > 0 {
			avgGain += d
		} else if d < 0 {
			avgLoss -= d
		}
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p

	alpha := 1.0 / p
	for i := period + 1; i < n; i++ {
		var gain, loss float64
		if d := deltas[i]; d > 0 {
			gain = d
		} else if d < 0 {
			loss = -d
		}

		avgGain = (avgGain*(p-1) + gain) * alpha
		avgLoss = (avgLoss*(p-1) + loss) * alpha

		// a NaN average must stay NaN and classify as na
		var rs float64
		if math.Abs(avgLoss) < lossEpsilon {
			rs = math.Inf(1)
		} else {
			rs = avgGain / avgLoss
		}
		out[i] = Point{Value: 100 - 100/(1+rs), Valid: true}
	}
	return out
}

// Last returns the most recent point, or an invalid point for an empty series.
func Last(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	return points[len(points)-1]
}

// Classify maps a reading to its category. The 70 and 30 boundaries are neutral.
func Classify(p Point) Category {
	switch {
	case !p.Valid || math.IsNaN(p.Value):
		return CategoryNA
	case p.Value > OverboughtLevel:
		return CategoryOverbought
	case p.Value < OversoldLevel:
		return CategoryOversold
	default:
		return CategoryNeutral
	}
}
