package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prestasys/loan-origination/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan record
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List retrieves all loans, newest first
	List(ctx context.Context) ([]*domain.Loan, error)

	// ListByClient retrieves all loans for a client document number
	ListByClient(ctx context.Context, clientDocument string) ([]*domain.Loan, error)

	// Update updates a loan's status and completed flag
	Update(ctx context.Context, loan *domain.Loan) error

	// CreateSchedule creates installment entries for a loan
	CreateSchedule(ctx context.Context, installments []*domain.Installment) error

	// GetScheduleByLoanID retrieves the installments of a loan ordered by sequence
	GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error)

	// MarkInstallmentPaid marks a single installment paid
	MarkInstallmentPaid(ctx context.Context, loanID uuid.UUID, sequence int, paidAt time.Time) error

	// SumPrincipalForMonth sums loan principals created for a client in the
	// given calendar month
	SumPrincipalForMonth(ctx context.Context, clientDocument string, year int, month time.Month) (decimal.Decimal, error)

	// MarkOverdueInstallments flips pending installments past their due date
	// to overdue, returning how many rows changed
	MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error)
}

// UserRepository defines the interface for staff user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// LimitStateRepository persists the per-client daily lending counter. Get
// returns (nil, nil) when no state exists for the client; stale-day states
// are returned as-is and superseded by the tracker, never purged here.
type LimitStateRepository interface {
	Get(ctx context.Context, clientDocument string) (*domain.ClientLimitState, error)
	Save(ctx context.Context, state *domain.ClientLimitState) error
}
