package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/prestasys/loan-origination/internal/amortization"
	"github.com/prestasys/loan-origination/internal/config"
	"github.com/prestasys/loan-origination/internal/domain"
	"github.com/prestasys/loan-origination/internal/limits"
	"github.com/prestasys/loan-origination/internal/notification"
	"github.com/prestasys/loan-origination/internal/registry"
	"github.com/prestasys/loan-origination/internal/repository"
	customError "github.com/prestasys/loan-origination/pkg/errors"
)

var (
	dniPattern = regexp.MustCompile(`^\d{8}$`)
	rucPattern = regexp.MustCompile(`^\d{11}$`)
)

// OriginationService runs the loan-registration workflow: identity lookup,
// limit enforcement, schedule computation, persistence and notification, in
// that order. Limit bookkeeping is committed before the loan is persisted and
// the notification is attempted only after persistence succeeded.
type OriginationService struct {
	loans    repository.LoanRepository
	tracker  *limits.Tracker
	registry registry.ClientRegistry
	notifier notification.Sender
	config   *config.Config
	now      func() time.Time
}

func NewOriginationService(
	loans repository.LoanRepository,
	tracker *limits.Tracker,
	clientRegistry registry.ClientRegistry,
	notifier notification.Sender,
	cfg *config.Config,
) *OriginationService {
	return &OriginationService{
		loans:    loans,
		tracker:  tracker,
		registry: clientRegistry,
		notifier: notifier,
		config:   cfg,
		now:      time.Now,
	}
}

func validateDocumentNumber(personType, documentNumber string) error {
	switch personType {
	case domain.PersonTypeNatural:
		if !dniPattern.MatchString(documentNumber) {
			return customError.WrapValidation(fmt.Sprintf("DNI must have exactly %d digits", domain.DNILength))
		}
	case domain.PersonTypeLegal:
		if !rucPattern.MatchString(documentNumber) {
			return customError.WrapValidation(fmt.Sprintf("RUC must have exactly %d digits", domain.RUCLength))
		}
	default:
		return customError.WrapValidation("person type must be natural or legal")
	}
	return nil
}

// RegisterLoan runs the full workflow. The returned warning is non-nil only
// when the loan was registered but the notification email failed; it never
// accompanies an error.
func (s *OriginationService) RegisterLoan(ctx context.Context, req *domain.RegisterLoanRequest, createdBy string) (*domain.RegisterLoanResponse, error, error) {
	// 1. Validate before any lookup or state mutation.
	if err := validateDocumentNumber(req.PersonType, req.DocumentNumber); err != nil {
		return nil, nil, err
	}

	terms := domain.LoanTerms{
		Principal:         req.Amount,
		TermMonths:        req.TermMonths,
		AnnualRatePercent: s.config.GetAnnualRatePercent(),
		StartDate:         req.StartDate,
	}
	if err := terms.Validate(); err != nil {
		return nil, nil, customError.WrapValidation(err.Error())
	}

	// 2. Identity lookup.
	client, err := s.registry.Lookup(ctx, req.PersonType, req.DocumentNumber)
	if err != nil {
		return nil, nil, err
	}

	// 3. Daily ceiling.
	remainingDaily := s.tracker.RemainingDailyLimit(ctx, client.DocumentNumber)
	if req.Amount.GreaterThan(remainingDaily) {
		return nil, nil, customError.WrapDailyLimitExceeded(remainingDaily)
	}

	// 4. Monthly ceiling.
	if !s.tracker.IsWithinMonthlyLimit(ctx, client.DocumentNumber, req.Amount) {
		remaining := s.tracker.MonthlyLimit().Sub(s.tracker.MonthlyCommitted(ctx, client.DocumentNumber))
		return nil, nil, customError.WrapMonthlyLimitExceeded(remaining)
	}

	// 5. Compute the schedule.
	entries := amortization.ComputeSchedule(terms)

	// 6. Record the commitment.
	s.tracker.CommitDailyAmount(ctx, client.DocumentNumber, req.Amount)

	// 7. Persist loan and schedule. Loans are auto-approved.
	createdAt := s.now()
	loan := &domain.Loan{
		ID:             uuid.New(),
		ClientDocument: client.DocumentNumber,
		ClientName:     client.DisplayName(),
		ClientEmail:    client.Email,
		Terms:          terms,
		Status:         domain.LoanStatusApproved,
		Completed:      false,
		CreatedBy:      createdBy,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}

	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	installments := make([]*domain.Installment, 0, len(entries))
	for _, entry := range entries {
		installments = append(installments, &domain.Installment{
			ID:        uuid.New(),
			LoanID:    loan.ID,
			Sequence:  entry.Sequence,
			DueDate:   entry.DueDate,
			Payment:   entry.Payment,
			Interest:  entry.Interest,
			Principal: entry.Principal,
			Balance:   entry.Balance,
			Status:    domain.InstallmentStatusPending,
			CreatedAt: createdAt,
		})
	}

	if err := s.loans.CreateSchedule(ctx, installments); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	// 8. Notify. The loan is committed; a failure here is a warning only.
	var warning error
	if err := s.notifier.SendLoanRegistered(client, terms, entries); err != nil {
		warning = customError.WrapNotificationFailure(err)
		log.Printf("loan %s registered but notification failed: %v", loan.ID, err)
	}

	return &domain.RegisterLoanResponse{
		Loan:     loan,
		Client:   client,
		Schedule: installments,
	}, warning, nil
}

// GetLoan fetches a loan with its schedule and paid set.
func (s *OriginationService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailResponse, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	schedule, err := s.loans.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LoanDetailResponse{
		Loan:             loan,
		Schedule:         schedule,
		PaidInstallments: domain.PaidInstallments(schedule),
	}, nil
}

// ListLoans returns all registered loans.
func (s *OriginationService) ListLoans(ctx context.Context) ([]*domain.Loan, error) {
	loans, err := s.loans.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// MarkInstallmentPaid records a payment against one installment. When the
// last pending installment is paid the loan transitions to completed and the
// client is congratulated by email (non-fatal).
func (s *OriginationService) MarkInstallmentPaid(ctx context.Context, loanID uuid.UUID, sequence int) (error, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	schedule, err := s.loans.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	var target *domain.Installment
	for _, inst := range schedule {
		if inst.Sequence == sequence {
			target = inst
			break
		}
	}
	if target == nil {
		return nil, customError.WrapValidation(fmt.Sprintf("installment %d does not exist for this loan", sequence))
	}
	if target.Status == domain.InstallmentStatusPaid {
		return nil, customError.WrapInstallmentPaid(loanID.String(), sequence)
	}

	paidAt := s.now()
	if err := s.loans.MarkInstallmentPaid(ctx, loanID, sequence, paidAt); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	allPaid := true
	for _, inst := range schedule {
		if inst.Sequence != sequence && inst.Status != domain.InstallmentStatusPaid {
			allPaid = false
			break
		}
	}

	var warning error
	if allPaid {
		loan.Status = domain.LoanStatusCompleted
		loan.Completed = true
		if err := s.loans.Update(ctx, loan); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		if err := s.notifier.SendLoanCompleted(loan.ClientName, loan.ClientEmail, loan.ID.String()); err != nil {
			warning = customError.WrapNotificationFailure(err)
			log.Printf("loan %s completed but notification failed: %v", loan.ID, err)
		}
	}

	return warning, nil
}

// LookupClient validates the document-number format and queries the registry.
func (s *OriginationService) LookupClient(ctx context.Context, personType, documentNumber string) (*domain.ClientRecord, error) {
	if err := validateDocumentNumber(personType, documentNumber); err != nil {
		return nil, err
	}
	return s.registry.Lookup(ctx, personType, documentNumber)
}

// RemainingLimits reports the client's current daily headroom and monthly
// commitment, for display before registration.
func (s *OriginationService) RemainingLimits(ctx context.Context, personType, documentNumber string) (*domain.RemainingLimitResponse, error) {
	if err := validateDocumentNumber(personType, documentNumber); err != nil {
		return nil, err
	}

	return &domain.RemainingLimitResponse{
		ClientDocument:   documentNumber,
		RemainingDaily:   s.tracker.RemainingDailyLimit(ctx, documentNumber),
		MonthlyCommitted: s.tracker.MonthlyCommitted(ctx, documentNumber),
	}, nil
}

// MarkOverdue flips past-due pending installments to overdue. Used by the
// scheduler binary.
func (s *OriginationService) MarkOverdue(ctx context.Context) (int64, error) {
	updated, err := s.loans.MarkOverdueInstallments(ctx, s.now())
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	return updated, nil
}
