// Package rates centralizes percentage math for engagement KPIs
package rates

import "math"

// Rate returns num/den as a percentage, or 0 when den is zero.
// Every percentage the portal reports goes through here so a quiet
// campaign never produces a divide-by-zero.
func Rate(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// Round1 rounds to one decimal place for presentation
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundInt rounds to the nearest whole number
func RoundInt(v float64) float64 {
	return math.Round(v)
}

// Ratio returns num/den without the percent scaling, 0 when den is zero
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
