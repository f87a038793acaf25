// Package indicators computes the raw technical series the analyzers and the
// regime detector consume. All functions are pure over their input slices;
// insufficient history yields NaN (callers substitute their neutral default).
package indicators

import "math"

// SMA returns the simple moving average of the last window values.
func SMA(series []float64, window int) float64 {
	if window <= 0 || len(series) < window {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range series[len(series)-window:] {
		sum += v
	}
	return sum / float64(window)
}

// SMASeries returns the rolling SMA; positions before a full window are NaN.
func SMASeries(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	sum := 0.0
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// EMASeries returns the exponential moving average with alpha = 2/(window+1),
// seeded at the first value.
func EMASeries(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 || window <= 0 {
		return out
	}
	alpha := 2.0 / (float64(window) + 1)
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI computes the Wilder-smoothed relative strength index of the latest bar.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return math.NaN()
	}
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDHistSeries returns the MACD histogram (macd line minus signal line).
func MACDHistSeries(closes []float64, fast, slow, signal int) []float64 {
	emaFast := EMASeries(closes, fast)
	emaSlow := EMASeries(closes, slow)
	macd := make([]float64, len(closes))
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	sig := EMASeries(macd, signal)
	hist := make([]float64, len(closes))
	for i := range hist {
		hist[i] = macd[i] - sig[i]
	}
	return hist
}

// RollingMean returns the mean of the last window values.
func RollingMean(series []float64, window int) float64 {
	return SMA(series, window)
}

// RollingStd returns the population standard deviation of the last window values.
func RollingStd(series []float64, window int) float64 {
	if window <= 0 || len(series) < window {
		return math.NaN()
	}
	tail := series[len(series)-window:]
	mean := 0.0
	for _, v := range tail {
		mean += v
	}
	mean /= float64(window)
	ss := 0.0
	for _, v := range tail {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(window))
}

// ZScoreLast standardizes the latest value against the trailing window.
// A small epsilon keeps flat windows from dividing by zero.
func ZScoreLast(series []float64, window int) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	mean := RollingMean(series, window)
	std := RollingStd(series, window)
	if math.IsNaN(mean) || math.IsNaN(std) {
		return math.NaN()
	}
	return (series[len(series)-1] - mean) / (std + 1e-9)
}

// Bollinger returns the upper and lower bands (SMA +- dev*sigma) of the
// latest bar.
func Bollinger(closes []float64, window int, dev float64) (upper, lower float64) {
	mid := SMA(closes, window)
	sigma := RollingStd(closes, window)
	if math.IsNaN(mid) || math.IsNaN(sigma) {
		return math.NaN(), math.NaN()
	}
	return mid + dev*sigma, mid - dev*sigma
}

// PctChange returns simple returns r_t = C_t/C_{t-1} - 1, skipping
// non-positive prices.
func PctChange(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, cur/prev-1)
	}
	return out
}

// RealizedVolatility annualizes the trailing-window standard deviation of
// returns using the given number of bars per year. When fewer than window
// returns exist the whole series is used.
func RealizedVolatility(returns []float64, window int, barsPerYear float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	w := window
	if len(returns) < w {
		w = len(returns)
	}
	std := RollingStd(returns, w)
	if math.IsNaN(std) {
		return math.NaN()
	}
	return std * math.Sqrt(barsPerYear)
}
