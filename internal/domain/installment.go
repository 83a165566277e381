package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
	InstallmentStatusOverdue = "overdue"
)

// Installment is one scheduled payment of an amortizing loan. Payment is the
// level installment amount; Interest and Principal are its split for the
// period, and Balance is the remaining principal after the payment.
type Installment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	LoanID    uuid.UUID       `json:"loan_id" db:"loan_id"`
	Sequence  int             `json:"sequence" db:"sequence"`
	DueDate   time.Time       `json:"due_date" db:"due_date"`
	Payment   decimal.Decimal `json:"payment" db:"payment"`
	Interest  decimal.Decimal `json:"interest" db:"interest"`
	Principal decimal.Decimal `json:"principal" db:"principal"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	Status    string          `json:"status" db:"status"`
	PaidAt    *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
