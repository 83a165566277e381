package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LimitDateLayout is the calendar-day key used by the daily limit tracker.
const LimitDateLayout = "2006-01-02"

// ClientLimitState is the per-client daily lending counter. One state exists
// per client per calendar day; a state from an earlier day is superseded by a
// fresh zero state, never purged.
type ClientLimitState struct {
	ClientDocument string          `json:"client_document"`
	TrackingDate   string          `json:"tracking_date"`
	DailyCommitted decimal.Decimal `json:"daily_committed"`
}

// NewLimitState returns a fresh zero state for the given day.
func NewLimitState(clientDocument string, day time.Time) *ClientLimitState {
	return &ClientLimitState{
		ClientDocument: clientDocument,
		TrackingDate:   day.Format(LimitDateLayout),
		DailyCommitted: decimal.Zero,
	}
}

// IsFor reports whether the state tracks the given calendar day.
func (s *ClientLimitState) IsFor(day time.Time) bool {
	return s.TrackingDate == day.Format(LimitDateLayout)
}
