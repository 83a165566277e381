package amortization

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prestasys/loan-origination/internal/domain"
)

func testTerms(principal int64, months int, start time.Time) domain.LoanTerms {
	return domain.LoanTerms{
		Principal:         decimal.NewFromInt(principal),
		TermMonths:        months,
		AnnualRatePercent: decimal.NewFromInt(10),
		StartDate:         start,
	}
}

func TestMonthlyRate(t *testing.T) {
	// 10 / 10 / 12, not 10 / 100 / 12: the established calculator behavior.
	rate := MonthlyRate(decimal.NewFromInt(10))
	expected := decimal.NewFromInt(1).Div(decimal.NewFromInt(12))
	assert.True(t, rate.Equal(expected), "expected %s, got %s", expected, rate)
}

func TestComputeSchedule_ReferenceLoan(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	schedule := ComputeSchedule(testTerms(1000, 12, start))

	require.Len(t, schedule, 12)

	// First period interest is the full principal times the monthly rate.
	expectedInterest := decimal.NewFromInt(1000).Mul(MonthlyRate(decimal.NewFromInt(10)))
	assert.True(t, schedule[0].Interest.Equal(expectedInterest))
	assert.True(t, schedule[0].Interest.Round(2).Equal(decimal.NewFromFloat(83.33)))

	// Level payment matches the reference decimal computation to 2 decimals.
	assert.True(t, schedule[0].Payment.Round(2).Equal(decimal.NewFromFloat(135.00)),
		"payment was %s", schedule[0].Payment.Round(2))
}

func TestComputeSchedule_SequenceAndDates(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	schedule := ComputeSchedule(testTerms(5000, 24, start))

	require.Len(t, schedule, 24)
	for i, entry := range schedule {
		assert.Equal(t, i+1, entry.Sequence)
		assert.Equal(t, start.AddDate(0, i+1, 0), entry.DueDate)
		if i > 0 {
			assert.True(t, entry.DueDate.After(schedule[i-1].DueDate))
		}
	}
}

func TestComputeSchedule_PrincipalSumsAndFinalBalance(t *testing.T) {
	tests := []struct {
		name      string
		principal int64
		months    int
	}{
		{"one year", 1000, 12},
		{"max term", 20000, 60},
		{"small principal", 150, 6},
	}

	tolerance := decimal.NewFromFloat(0.01)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
			schedule := ComputeSchedule(testTerms(tt.principal, tt.months, start))

			require.Len(t, schedule, tt.months)

			principalSum := decimal.Zero
			for _, entry := range schedule {
				principalSum = principalSum.Add(entry.Principal)
				// Level payment is constant across the schedule.
				assert.True(t, entry.Payment.Equal(schedule[0].Payment))
			}

			drift := principalSum.Sub(decimal.NewFromInt(tt.principal)).Abs()
			assert.True(t, drift.LessThanOrEqual(tolerance),
				"principal drift %s exceeds tolerance", drift)

			assert.True(t, schedule[tt.months-1].Balance.IsZero(),
				"final balance must be exactly zero, got %s", schedule[tt.months-1].Balance)
		})
	}
}

func TestComputeSchedule_SingleInstallment(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	schedule := ComputeSchedule(testTerms(1200, 1, start))

	require.Len(t, schedule, 1)

	rate := MonthlyRate(decimal.NewFromInt(10))
	expected := decimal.NewFromInt(1200).Add(decimal.NewFromInt(1200).Mul(rate))
	assert.True(t, schedule[0].Payment.Round(2).Equal(expected.Round(2)))
	assert.True(t, schedule[0].Balance.IsZero())
}

func TestComputeSchedule_ZeroRate(t *testing.T) {
	terms := domain.LoanTerms{
		Principal:         decimal.NewFromInt(1200),
		TermMonths:        12,
		AnnualRatePercent: decimal.Zero,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	schedule := ComputeSchedule(terms)

	require.Len(t, schedule, 12)
	for _, entry := range schedule {
		assert.True(t, entry.Payment.Equal(decimal.NewFromInt(100)))
		assert.True(t, entry.Interest.IsZero())
	}
	assert.True(t, schedule[11].Balance.IsZero())
}

func TestComputeSchedule_DayOfMonthOverflow(t *testing.T) {
	// Jan 31 + 1 month lands on "Feb 31", which rolls into March, same as the
	// Date(year, month+i, day) rule.
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	schedule := ComputeSchedule(testTerms(1000, 3, start))

	require.Len(t, schedule, 3)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
}

func TestTotalPayment(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	schedule := ComputeSchedule(testTerms(1000, 12, start))

	total := TotalPayment(schedule)
	expected := schedule[0].Payment.Mul(decimal.NewFromInt(12))
	assert.True(t, total.Equal(expected))
}
