// Package score holds the pure metric-to-signal mappings used by the
// analyzers. Every function maps one raw metric onto [-1, +1] through a
// piecewise-linear curve anchored at named breakpoints. Missing or
// non-finite input scores 0 (neutral), never an error.
package score

import "math"

// Clip bounds x to [-1, +1].
func Clip(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

// ClipTo bounds x to [low, high].
func ClipTo(x, low, high float64) float64 {
	return math.Max(low, math.Min(high, x))
}

func valid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// asPercent treats |x| < 1 as a fraction and scales it to percent. Upstream
// data sources report ROE, yields and growth inconsistently in both forms.
func asPercent(x float64) float64 {
	if math.Abs(x) < 1 {
		return x * 100
	}
	return x
}

// PE scores price/earnings: <=10 -> +1, >=40 -> -1.
// The 20-30 segment intentionally overshoots below -1 before the caller's
// final Clip; the clipped output is the authoritative value.
func PE(pe float64) float64 {
	if !valid(pe) {
		return 0
	}
	switch {
	case pe <= 10:
		return 1
	case pe >= 40:
		return -1
	case pe <= 20:
		return 1 - (pe-10)/10 // 10->1, 20->0
	case pe <= 30:
		return -0.25 * (pe - 20)
	default:
		return -0.5 - 0.5*(pe-30)/10 // 30->-0.5, 40->-1
	}
}

// PB scores price/book: <=1 -> +0.6 (cheap but possibly a value trap), >=6 -> -1.
func PB(pb float64) float64 {
	if !valid(pb) {
		return 0
	}
	switch {
	case pb <= 1:
		return 0.6
	case pb >= 6:
		return -1
	case pb <= 3:
		return 0.6 - 0.6*(pb-1)/2 // 1->0.6, 3->0
	default:
		return -0.1 - 0.9*(pb-3)/3 // 3->-0.1, 6->-1
	}
}

// ROE scores return on equity in percent: <=0 -> -1, >=20 -> +1, linear between.
func ROE(roe float64) float64 {
	if !valid(roe) {
		return 0
	}
	roe = asPercent(roe)
	switch {
	case roe <= 0:
		return -1
	case roe >= 20:
		return 1
	default:
		return -1 + roe/20*2
	}
}

// DebtEquity scores leverage: <=0.2 -> +1, >=2.0 -> -1, linear between.
func DebtEquity(de float64) float64 {
	if !valid(de) {
		return 0
	}
	switch {
	case de <= 0.2:
		return 1
	case de >= 2:
		return -1
	default:
		return 1 - (de-0.2)/(2-0.2)*2
	}
}

// FCFYield scores free-cash-flow yield in percent: <=-2 -> -1, >=8 -> +1.
func FCFYield(y float64) float64 {
	if !valid(y) {
		return 0
	}
	y = asPercent(y)
	switch {
	case y <= -2:
		return -1
	case y >= 8:
		return 1
	default:
		return -1 + (y+2)/10*2
	}
}

// Growth scores a YoY growth rate in percent against full-credit anchors:
// <=negFull -> -1, >=posFull -> +1, linear between.
func Growth(g, negFull, posFull float64) float64 {
	if !valid(g) {
		return 0
	}
	g = asPercent(g)
	switch {
	case g <= negFull:
		return -1
	case g >= posFull:
		return 1
	default:
		return -1 + (g-negFull)/(posFull-negFull)*2
	}
}

// Margin scores EBITDA margin in percent: <=0 -> -1, >=30 -> +1.
func Margin(m float64) float64 {
	if !valid(m) {
		return 0
	}
	m = asPercent(m)
	switch {
	case m <= 0:
		return -1
	case m >= 30:
		return 1
	default:
		return -1 + m/30*2
	}
}

// RSI remaps the 0-100 oscillator onto [-1, +1]: 30 -> -1, 50 -> 0, 70 -> +1.
func RSI(rsi float64) float64 {
	if !valid(rsi) {
		return 0
	}
	switch {
	case rsi <= 30:
		return -1
	case rsi >= 70:
		return 1
	case rsi < 50:
		return -1 + (rsi-30)/20
	default:
		return (rsi - 50) / 20
	}
}

// PercentB remaps Bollinger %B from [0,1] onto [-1, +1].
func PercentB(pctB float64) float64 {
	if !valid(pctB) {
		return 0
	}
	return Clip(2*pctB - 1)
}

// Sign returns -1, 0 or +1 matching the sign of x.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
