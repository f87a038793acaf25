package coordinator

import "EquitySignal/internal/domain/models"

// fallbackBaseWeight is handed to any agent name outside the known set so an
// unrecognized analyzer still participates instead of failing the lookup.
const fallbackBaseWeight = 0.1

// regimeDefaults returns the base weight distribution for a regime.
// High volatility leans on technicals (more responsive), bear markets lean
// on fundamentals (identify survivors), everything else is balanced.
func regimeDefaults(regime string) map[string]float64 {
	switch regime {
	case models.RegimeHighVolatility:
		return map[string]float64{
			"TechnicalAgent":   0.5,
			"FundamentalAgent": 0.3,
			"SentimentAgent":   0.2,
		}
	case models.RegimeBearish:
		return map[string]float64{
			"TechnicalAgent":   0.35,
			"FundamentalAgent": 0.45,
			"SentimentAgent":   0.2,
		}
	default:
		return map[string]float64{
			"TechnicalAgent":   0.4,
			"FundamentalAgent": 0.4,
			"SentimentAgent":   0.2,
		}
	}
}

// baseWeights resolves regime defaults for the present agent set and
// renormalizes them to sum to 1.
func baseWeights(regime string, agentNames []string) map[string]float64 {
	defaults := regimeDefaults(regime)
	base := make(map[string]float64, len(agentNames))
	sum := 0.0
	for _, name := range agentNames {
		w, ok := defaults[name]
		if !ok {
			w = fallbackBaseWeight
		}
		base[name] = w
		sum += w
	}
	if sum == 0 {
		sum = 1
	}
	for name := range base {
		base[name] /= sum
	}
	return base
}

// normalize scales weights in place so they sum to 1.
func normalize(weights map[string]float64) map[string]float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		sum = 1
	}
	for name := range weights {
		weights[name] /= sum
	}
	return weights
}
