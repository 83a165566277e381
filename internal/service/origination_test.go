package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prestasys/loan-origination/internal/amortization"
	"github.com/prestasys/loan-origination/internal/config"
	"github.com/prestasys/loan-origination/internal/domain"
	"github.com/prestasys/loan-origination/internal/limits"
	customError "github.com/prestasys/loan-origination/pkg/errors"
)

type mockLoanRepo struct {
	mock.Mock
}

func (m *mockLoanRepo) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *mockLoanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *mockLoanRepo) List(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *mockLoanRepo) ListByClient(ctx context.Context, clientDocument string) ([]*domain.Loan, error) {
	args := m.Called(ctx, clientDocument)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *mockLoanRepo) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *mockLoanRepo) CreateSchedule(ctx context.Context, installments []*domain.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *mockLoanRepo) GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *mockLoanRepo) MarkInstallmentPaid(ctx context.Context, loanID uuid.UUID, sequence int, paidAt time.Time) error {
	args := m.Called(ctx, loanID, sequence, paidAt)
	return args.Error(0)
}

func (m *mockLoanRepo) SumPrincipalForMonth(ctx context.Context, clientDocument string, year int, month time.Month) (decimal.Decimal, error) {
	args := m.Called(ctx, clientDocument, year, month)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockLoanRepo) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

type mockLimitStateRepo struct {
	mock.Mock
}

func (m *mockLimitStateRepo) Get(ctx context.Context, clientDocument string) (*domain.ClientLimitState, error) {
	args := m.Called(ctx, clientDocument)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientLimitState), args.Error(1)
}

func (m *mockLimitStateRepo) Save(ctx context.Context, state *domain.ClientLimitState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Lookup(ctx context.Context, personType, documentNumber string) (*domain.ClientRecord, error) {
	args := m.Called(ctx, personType, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientRecord), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendLoanRegistered(client *domain.ClientRecord, terms domain.LoanTerms, schedule []amortization.Entry) error {
	args := m.Called(client, terms, schedule)
	return args.Error(0)
}

func (m *mockSender) SendLoanCompleted(clientName, email, loanID string) error {
	args := m.Called(clientName, email, loanID)
	return args.Error(0)
}

type testEnv struct {
	loans    *mockLoanRepo
	states   *mockLimitStateRepo
	registry *mockRegistry
	notifier *mockSender
	service  *OriginationService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		loans:    &mockLoanRepo{},
		states:   &mockLimitStateRepo{},
		registry: &mockRegistry{},
		notifier: &mockSender{},
	}

	cfg := &config.Config{
		Business: config.BusinessConfig{
			AnnualRatePercent: "10",
			MaxTermMonths:     60,
			DailyLimit:        "5000",
			MonthlyLimit:      "20000",
		},
	}

	tracker := limits.NewTracker(env.states, env.loans, cfg.GetDailyLimit(), cfg.GetMonthlyLimit())
	env.service = NewOriginationService(env.loans, tracker, env.registry, env.notifier, cfg)
	return env
}

func testClientRecord() *domain.ClientRecord {
	return &domain.ClientRecord{
		PersonType:     domain.PersonTypeNatural,
		Name:           "Juan Carlos Pérez García",
		DocumentType:   domain.DocumentTypeDNI,
		DocumentNumber: "12345678",
		Email:          "juan.perez@ejemplo.com",
	}
}

func registerRequest(amount int64, months int) *domain.RegisterLoanRequest {
	return &domain.RegisterLoanRequest{
		PersonType:     domain.PersonTypeNatural,
		DocumentNumber: "12345678",
		Amount:         decimal.NewFromInt(amount),
		TermMonths:     months,
		StartDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegisterLoan_Success(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.registry.On("Lookup", mock.Anything, domain.PersonTypeNatural, "12345678").
		Return(testClientRecord(), nil)
	env.states.On("Get", mock.Anything, "12345678").Return(nil, nil)
	env.states.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.ClientLimitState) bool {
		return s.DailyCommitted.Equal(decimal.NewFromInt(1000))
	})).Return(nil)
	env.loans.On("SumPrincipalForMonth", mock.Anything, "12345678", mock.Anything, mock.Anything).
		Return(decimal.Zero, nil)
	env.loans.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.Status == domain.LoanStatusApproved && !l.Completed && l.CreatedBy == "agent"
	})).Return(nil)
	env.loans.On("CreateSchedule", mock.Anything, mock.MatchedBy(func(insts []*domain.Installment) bool {
		return len(insts) == 12
	})).Return(nil)
	env.notifier.On("SendLoanRegistered", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, warning, err := env.service.RegisterLoan(ctx, registerRequest(1000, 12), "agent")

	require.NoError(t, err)
	assert.Nil(t, warning)
	require.Len(t, resp.Schedule, 12)
	assert.Equal(t, "Juan Carlos Pérez García", resp.Loan.ClientName)
	assert.True(t, resp.Schedule[11].Balance.IsZero())

	env.loans.AssertExpectations(t)
	env.states.AssertExpectations(t)
	env.notifier.AssertExpectations(t)
}

func TestRegisterLoan_InvalidDocumentNumber(t *testing.T) {
	env := newTestEnv()

	req := registerRequest(1000, 12)
	req.DocumentNumber = "1234"

	_, _, err := env.service.RegisterLoan(context.Background(), req, "agent")

	assert.ErrorIs(t, err, customError.ErrValidation)
	env.registry.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterLoan_TermOutOfRange(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.service.RegisterLoan(context.Background(), registerRequest(1000, 61), "agent")

	assert.ErrorIs(t, err, customError.ErrValidation)
}

func TestRegisterLoan_ClientNotFound(t *testing.T) {
	env := newTestEnv()

	env.registry.On("Lookup", mock.Anything, domain.PersonTypeNatural, "12345678").
		Return(nil, customError.WrapClientNotFound("12345678"))

	_, _, err := env.service.RegisterLoan(context.Background(), registerRequest(1000, 12), "agent")

	assert.ErrorIs(t, err, customError.ErrClientNotFound)
	env.loans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterLoan_DailyLimitExceeded(t *testing.T) {
	env := newTestEnv()

	env.registry.On("Lookup", mock.Anything, domain.PersonTypeNatural, "12345678").
		Return(testClientRecord(), nil)
	env.states.On("Get", mock.Anything, "12345678").Return(&domain.ClientLimitState{
		ClientDocument: "12345678",
		TrackingDate:   time.Now().Format(domain.LimitDateLayout),
		DailyCommitted: decimal.NewFromInt(4500),
	}, nil)

	_, _, err := env.service.RegisterLoan(context.Background(), registerRequest(1000, 12), "agent")

	require.ErrorIs(t, err, customError.ErrDailyLimitExceeded)
	// The message names the remaining ceiling for display.
	assert.Contains(t, err.Error(), "500.00")
	env.loans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.states.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegisterLoan_MonthlyLimitExceeded(t *testing.T) {
	env := newTestEnv()

	env.registry.On("Lookup", mock.Anything, domain.PersonTypeNatural, "12345678").
		Return(testClientRecord(), nil)
	env.states.On("Get", mock.Anything, "12345678").Return(nil, nil)
	env.loans.On("SumPrincipalForMonth", mock.Anything, "12345678", mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(19500), nil)

	_, _, err := env.service.RegisterLoan(context.Background(), registerRequest(1000, 12), "agent")

	require.ErrorIs(t, err, customError.ErrMonthlyLimitExceeded)
	assert.Contains(t, err.Error(), "500.00")
	env.loans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterLoan_NotificationFailureIsWarning(t *testing.T) {
	env := newTestEnv()

	env.registry.On("Lookup", mock.Anything, domain.PersonTypeNatural, "12345678").
		Return(testClientRecord(), nil)
	env.states.On("Get", mock.Anything, "12345678").Return(nil, nil)
	env.states.On("Save", mock.Anything, mock.Anything).Return(nil)
	env.loans.On("SumPrincipalForMonth", mock.Anything, "12345678", mock.Anything, mock.Anything).
		Return(decimal.Zero, nil)
	env.loans.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.loans.On("CreateSchedule", mock.Anything, mock.Anything).Return(nil)
	env.notifier.On("SendLoanRegistered", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp unreachable"))

	resp, warning, err := env.service.RegisterLoan(context.Background(), registerRequest(1000, 12), "agent")

	require.NoError(t, err, "notification failure must not fail registration")
	require.NotNil(t, resp)

	var bizErr *customError.BusinessError
	require.ErrorAs(t, warning, &bizErr)
	assert.Equal(t, customError.ErrCodeNotificationFailed, bizErr.Code)
}

func TestMarkInstallmentPaid_CompletesLoan(t *testing.T) {
	env := newTestEnv()
	loanID := uuid.New()

	loan := &domain.Loan{
		ID:             loanID,
		ClientDocument: "12345678",
		ClientName:     "Juan Carlos Pérez García",
		ClientEmail:    "juan.perez@ejemplo.com",
		Status:         domain.LoanStatusApproved,
	}
	schedule := []*domain.Installment{
		{LoanID: loanID, Sequence: 1, Status: domain.InstallmentStatusPaid},
		{LoanID: loanID, Sequence: 2, Status: domain.InstallmentStatusPending},
	}

	env.loans.On("GetByID", mock.Anything, loanID).Return(loan, nil)
	env.loans.On("GetScheduleByLoanID", mock.Anything, loanID).Return(schedule, nil)
	env.loans.On("MarkInstallmentPaid", mock.Anything, loanID, 2, mock.Anything).Return(nil)
	env.loans.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.Completed && l.Status == domain.LoanStatusCompleted
	})).Return(nil)
	env.notifier.On("SendLoanCompleted", loan.ClientName, loan.ClientEmail, loanID.String()).Return(nil)

	warning, err := env.service.MarkInstallmentPaid(context.Background(), loanID, 2)

	require.NoError(t, err)
	assert.Nil(t, warning)
	env.loans.AssertExpectations(t)
	env.notifier.AssertExpectations(t)
}

func TestMarkInstallmentPaid_AlreadyPaid(t *testing.T) {
	env := newTestEnv()
	loanID := uuid.New()

	env.loans.On("GetByID", mock.Anything, loanID).Return(&domain.Loan{ID: loanID}, nil)
	env.loans.On("GetScheduleByLoanID", mock.Anything, loanID).Return([]*domain.Installment{
		{LoanID: loanID, Sequence: 1, Status: domain.InstallmentStatusPaid},
	}, nil)

	_, err := env.service.MarkInstallmentPaid(context.Background(), loanID, 1)

	assert.ErrorIs(t, err, customError.ErrInstallmentPaid)
	env.loans.AssertNotCalled(t, "MarkInstallmentPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRemainingLimits(t *testing.T) {
	env := newTestEnv()

	env.states.On("Get", mock.Anything, "12345678").Return(nil, nil)
	env.loans.On("SumPrincipalForMonth", mock.Anything, "12345678", mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(3000), nil)

	resp, err := env.service.RemainingLimits(context.Background(), domain.PersonTypeNatural, "12345678")

	require.NoError(t, err)
	assert.True(t, resp.RemainingDaily.Equal(decimal.NewFromInt(5000)))
	assert.True(t, resp.MonthlyCommitted.Equal(decimal.NewFromInt(3000)))
}

func TestMarkOverdue(t *testing.T) {
	env := newTestEnv()

	env.loans.On("MarkOverdueInstallments", mock.Anything, mock.Anything).Return(int64(3), nil)

	updated, err := env.service.MarkOverdue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)
}
