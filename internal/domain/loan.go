package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusRejected  = "rejected"
	LoanStatusCompleted = "completed"
)

// MaxTermMonths is the hard ceiling on the loan term. The product offers a
// single fixed-rate loan of at most five years.
const MaxTermMonths = 60

// LoanTerms holds the agreed conditions of a loan at registration time.
type LoanTerms struct {
	Principal         decimal.Decimal `json:"principal" db:"principal"`
	TermMonths        int             `json:"term_months" db:"term_months"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" db:"annual_rate_percent"`
	StartDate         time.Time       `json:"start_date" db:"start_date"`
}

// Validate rejects terms before any schedule computation or state mutation.
// The amortization engine itself assumes valid terms.
func (t LoanTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return fmt.Errorf("principal must be greater than zero")
	}
	if t.TermMonths < 1 || t.TermMonths > MaxTermMonths {
		return fmt.Errorf("term must be between 1 and %d months", MaxTermMonths)
	}
	if t.AnnualRatePercent.IsNegative() {
		return fmt.Errorf("annual rate cannot be negative")
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	return nil
}

// Loan is a persisted loan record. Loans are auto-approved at registration.
type Loan struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ClientDocument string    `json:"client_document" db:"client_document"`
	ClientName     string    `json:"client_name" db:"client_name"`
	ClientEmail    string    `json:"client_email" db:"client_email"`
	Terms          LoanTerms `json:"terms" db:"-"`
	Status         string    `json:"status" db:"status"`
	Completed      bool      `json:"completed" db:"completed"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// PaidInstallments returns the sequence numbers of paid installments.
func PaidInstallments(schedule []*Installment) []int {
	var paid []int
	for _, inst := range schedule {
		if inst.Status == InstallmentStatusPaid {
			paid = append(paid, inst.Sequence)
		}
	}
	return paid
}

// DTOs for requests and responses

type RegisterLoanRequest struct {
	PersonType     string          `json:"person_type" validate:"required,oneof=natural legal"`
	DocumentNumber string          `json:"document_number" validate:"required,numeric"`
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	TermMonths     int             `json:"term_months" validate:"required,gte=1,lte=60"`
	StartDate      time.Time       `json:"start_date" validate:"required"`
}

type RegisterLoanResponse struct {
	Loan     *Loan          `json:"loan"`
	Client   *ClientRecord  `json:"client"`
	Schedule []*Installment `json:"schedule"`
}

type LoanDetailResponse struct {
	Loan             *Loan          `json:"loan"`
	Schedule         []*Installment `json:"schedule"`
	PaidInstallments []int          `json:"paid_installments"`
}

type RemainingLimitResponse struct {
	ClientDocument   string          `json:"client_document"`
	RemainingDaily   decimal.Decimal `json:"remaining_daily"`
	MonthlyCommitted decimal.Decimal `json:"monthly_committed"`
}
