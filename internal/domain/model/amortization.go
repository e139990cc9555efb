package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyPayment computes the constant period payment for a principal at a
// monthly period rate over termMonths using the standard annuity formula:
//
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate degrades to an even split. Both the limit solver and the
// orchestrator must use this single definition so the affordability check
// and the final approved payment agree.
func MonthlyPayment(principal, monthlyRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		return principal / float64(termMonths)
	}
	factor := math.Pow(1+monthlyRate, float64(termMonths))
	return principal * monthlyRate * factor / (factor - 1)
}

// AmortizationEntry is an immutable value object representing one period in
// an amortization schedule.
type AmortizationEntry struct {
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
	Period           int
}

// GenerateAmortizationSchedule renders the full installment plan for an
// approved amount. Monetary values are decimal with 2-digit rounding; the
// last period absorbs rounding drift so the balance reaches exactly zero.
func GenerateAmortizationSchedule(
	principal float64,
	monthlyRate float64,
	termMonths int,
	startDate time.Time,
) []AmortizationEntry {
	if termMonths <= 0 || principal <= 0 {
		return nil
	}

	payment := decimal.NewFromFloat(MonthlyPayment(principal, monthlyRate, termMonths)).Round(2)
	remaining := decimal.NewFromFloat(principal).Round(2)
	rate := decimal.NewFromFloat(monthlyRate)

	schedule := make([]AmortizationEntry, 0, termMonths)
	for period := 1; period <= termMonths; period++ {
		dueDate := startDate.AddDate(0, period, 0)

		interest := remaining.Mul(rate).Round(2)
		principalPart := payment.Sub(interest)

		if period == termMonths {
			principalPart = remaining
			payment = principalPart.Add(interest)
		}

		remaining = remaining.Sub(principalPart)
		if remaining.LessThan(decimal.Zero) {
			remaining = decimal.Zero
		}

		schedule = append(schedule, AmortizationEntry{
			Period:           period,
			DueDate:          dueDate,
			Principal:        principalPart,
			Interest:         interest,
			Total:            principalPart.Add(interest),
			RemainingBalance: remaining,
		})
	}

	return schedule
}
