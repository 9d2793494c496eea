package permtest

import "math"

// Statistic reduces a return sequence to the scalar under test.
type Statistic func(returns []float64) float64

// MeanReturn is the arithmetic mean of the sequence.
func MeanReturn(returns []float64) float64 {
	var sum float64
	for _, r := range returns {
		sum += r
	}
	return sum / float64(len(returns))
}

// SharpeRatio is the annualized mean/stddev ratio assuming daily
// observations (√252 scaling). Zero when the sequence has no dispersion.
func SharpeRatio(returns []float64) float64 {
	mean := MeanReturn(returns)
	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(252)
}

// ProfitFactor is gross gains over gross losses. All-gain sequences map
// to +Inf, flat sequences to 1.
func ProfitFactor(returns []float64) float64 {
	var gains, losses float64
	for _, r := range returns {
		if r > 0 {
			gains += r
		} else {
			losses -= r
		}
	}
	if losses == 0 {
		if gains == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return gains / losses
}

// ByName maps API statistic names onto implementations.
func ByName(name string) (Statistic, bool) {
	switch name {
	case "mean", "mean_return":
		return MeanReturn, true
	case "sharpe", "sharpe_ratio":
		return SharpeRatio, true
	case "profit_factor":
		return ProfitFactor, true
	default:
		return nil, false
	}
}
