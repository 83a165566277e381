// Package limits tracks per-client daily and monthly lending ceilings.
//
// The daily counter is a persisted per-client state that rolls over to zero on
// a new calendar day. The monthly figure is derived by summing the principals
// of the client's loans created in the current month. Reads fail open: a
// missing or unreadable counter is treated as a fresh zero state, by policy,
// so a storage hiccup never blocks origination.
//
// The check-then-commit sequence is not protected against concurrent callers
// for the same client; the workflow runs it single-writer.
package limits

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prestasys/loan-origination/internal/domain"
	"github.com/prestasys/loan-origination/internal/repository"
)

// Tracker enforces the per-client lending ceilings.
type Tracker struct {
	states       repository.LimitStateRepository
	loans        repository.LoanRepository
	dailyLimit   decimal.Decimal
	monthlyLimit decimal.Decimal
	now          func() time.Time
}

func NewTracker(
	states repository.LimitStateRepository,
	loans repository.LoanRepository,
	dailyLimit decimal.Decimal,
	monthlyLimit decimal.Decimal,
) *Tracker {
	return &Tracker{
		states:       states,
		loans:        loans,
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		now:          time.Now,
	}
}

// WithClock overrides the tracker's clock, for tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// DailyLimit returns the configured daily ceiling.
func (t *Tracker) DailyLimit() decimal.Decimal {
	return t.dailyLimit
}

// MonthlyLimit returns the configured monthly ceiling.
func (t *Tracker) MonthlyLimit() decimal.Decimal {
	return t.monthlyLimit
}

// todayState loads the client's counter for the current day, rolling over or
// creating a fresh zero state as needed.
func (t *Tracker) todayState(ctx context.Context, clientDocument string) *domain.ClientLimitState {
	today := t.now()

	state, err := t.states.Get(ctx, clientDocument)
	if err != nil {
		log.Printf("limit state read failed for client %s, using fresh state: %v", clientDocument, err)
		return domain.NewLimitState(clientDocument, today)
	}

	if state == nil || !state.IsFor(today) {
		return domain.NewLimitState(clientDocument, today)
	}

	return state
}

// RemainingDailyLimit returns how much principal the client may still be
// extended today.
func (t *Tracker) RemainingDailyLimit(ctx context.Context, clientDocument string) decimal.Decimal {
	state := t.todayState(ctx, clientDocument)
	return t.dailyLimit.Sub(state.DailyCommitted)
}

// CommitDailyAmount adds amount to today's counter for the client, persists
// it, and returns the new remaining daily limit. Any prior day's state is
// discarded.
func (t *Tracker) CommitDailyAmount(ctx context.Context, clientDocument string, amount decimal.Decimal) decimal.Decimal {
	state := t.todayState(ctx, clientDocument)
	state.DailyCommitted = state.DailyCommitted.Add(amount)

	if err := t.states.Save(ctx, state); err != nil {
		log.Printf("limit state write failed for client %s: %v", clientDocument, err)
	}

	return t.dailyLimit.Sub(state.DailyCommitted)
}

// MonthlyCommitted sums the principals of the client's loans created in the
// current calendar month. Unreadable storage degrades to zero commitment.
func (t *Tracker) MonthlyCommitted(ctx context.Context, clientDocument string) decimal.Decimal {
	now := t.now()

	total, err := t.loans.SumPrincipalForMonth(ctx, clientDocument, now.Year(), now.Month())
	if err != nil {
		log.Printf("monthly commitment read failed for client %s, treating as zero: %v", clientDocument, err)
		return decimal.Zero
	}

	return total
}

// IsWithinMonthlyLimit reports whether committing amount would keep the
// client at or under the monthly ceiling.
func (t *Tracker) IsWithinMonthlyLimit(ctx context.Context, clientDocument string, amount decimal.Decimal) bool {
	committed := t.MonthlyCommitted(ctx, clientDocument)
	return committed.Add(amount).LessThanOrEqual(t.monthlyLimit)
}
