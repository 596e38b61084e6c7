package calculator

import "math"

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// DailyReturns returns the day-over-day fractional changes of prices.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

// CalculateVolatility is the sample standard deviation of the last `period` daily returns,
// annualized by sqrt(252) and expressed in percent.
func CalculateVolatility(prices []float64, period int) (float64, error) {
	returns := DailyReturns(prices)
	if len(returns) > period {
		returns = returns[len(returns)-period:]
	}
	if len(returns) < 2 {
		return 0, ErrInsufficientData
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	ss := 0.0
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	std := math.Sqrt(ss / float64(len(returns)-1))
	return std * math.Sqrt(TradingDaysPerYear) * 100, nil
}
