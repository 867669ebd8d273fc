package indicators

import (
	"math"

	"github.com/wonny/valuator/internal/contracts"
)

// emaSeries computes a recursive EMA over values. The first period-1 slots
// are NaN; slot period-1 holds the SMA seed, later slots the recursion
// ema[i] = value[i]*k + ema[i-1]*(1-k) with k = 2/(period+1).
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) < period {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		out[i] = math.NaN()
		sum += values[i]
	}
	out[period-1] = sum / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// EMA returns the EMA of the last value in the series, undefined when the
// series is shorter than period.
func EMA(values []float64, period int) contracts.Value {
	if len(values) < period {
		return contracts.Undefined()
	}
	series := emaSeries(values, period)
	return contracts.Defined(series[len(series)-1])
}

// SMA returns the simple average of the trailing period values
func SMA(values []float64, period int) contracts.Value {
	if len(values) < period {
		return contracts.Undefined()
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return contracts.Defined(sum / float64(period))
}
