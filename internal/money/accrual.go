package money

// DailyProfit360 returns the Actual/360 daily profit accrual for a
// principal balance at an annual rate expressed as a fraction (e.g. 0.18
// for 18%), per spec.md §4.1:
//
//	daily-profit = principal * annual-rate / 360
func DailyProfit360(principal, annualRate Amount) Amount {
	return principal.Mul(annualRate).Div(New(360))
}

// Accrued360 returns the Actual/360 profit accrued over a whole number of
// calendar days: accrued = daily-profit * days.
func Accrued360(dailyProfit Amount, days int) Amount {
	return dailyProfit.Mul(New(int64(days)))
}
