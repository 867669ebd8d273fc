package indicators

import (
	"math"

	"github.com/wonny/valuator/internal/contracts"
)

// RSI computes Wilder's Relative Strength Index. The first average gain and
// loss are simple averages of the first period changes; after that Wilder's
// smoothing avg = (prev*(period-1) + current) / period applies. The 30/70
// thresholds downstream are calibrated to this smoothing, not an SMA.
func RSI(closes []float64, period int) contracts.Value {
	if len(closes) < period+1 {
		return contracts.Undefined()
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain := 0.0
		loss := 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return contracts.Defined(100)
	}
	rs := avgGain / avgLoss
	return contracts.Defined(100 - 100/(1+rs))
}

// MACD returns the MACD line (EMA fast - EMA slow), its signal line (EMA of
// the line over signalPeriod) and the histogram (line - signal). The line
// needs slowPeriod closes; the signal needs slowPeriod+signalPeriod-1.
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) (line, signal, histogram contracts.Value) {
	if len(closes) < slowPeriod {
		return contracts.Undefined(), contracts.Undefined(), contracts.Undefined()
	}

	fast := emaSeries(closes, fastPeriod)
	slow := emaSeries(closes, slowPeriod)

	macd := make([]float64, 0, len(closes)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(closes); i++ {
		macd = append(macd, fast[i]-slow[i])
	}
	line = contracts.Defined(macd[len(macd)-1])

	if len(macd) < signalPeriod {
		return line, contracts.Undefined(), contracts.Undefined()
	}
	sig := emaSeries(macd, signalPeriod)
	last := sig[len(sig)-1]
	if math.IsNaN(last) {
		return line, contracts.Undefined(), contracts.Undefined()
	}
	signal = contracts.Defined(last)
	histogram = contracts.Defined(line.Val - last)
	return line, signal, histogram
}

// ROC is the percentage change of the last close versus the close n bars
// earlier. Undefined when the earlier close is missing or zero.
func ROC(closes []float64, n int) contracts.Value {
	if len(closes) < n+1 {
		return contracts.Undefined()
	}
	prev := closes[len(closes)-1-n]
	if prev == 0 {
		return contracts.Undefined()
	}
	return contracts.Defined((closes[len(closes)-1] - prev) / prev * 100)
}
