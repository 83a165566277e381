package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/prestasys/loan-origination/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

// loanRow flattens the nested terms for sqlx scanning.
type loanRow struct {
	ID                uuid.UUID       `db:"id"`
	ClientDocument    string          `db:"client_document"`
	ClientName        string          `db:"client_name"`
	ClientEmail       string          `db:"client_email"`
	Principal         decimal.Decimal `db:"principal"`
	TermMonths        int             `db:"term_months"`
	AnnualRatePercent decimal.Decimal `db:"annual_rate_percent"`
	StartDate         time.Time       `db:"start_date"`
	Status            string          `db:"status"`
	Completed         bool            `db:"completed"`
	CreatedBy         string          `db:"created_by"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r loanRow) toDomain() *domain.Loan {
	return &domain.Loan{
		ID:             r.ID,
		ClientDocument: r.ClientDocument,
		ClientName:     r.ClientName,
		ClientEmail:    r.ClientEmail,
		Terms: domain.LoanTerms{
			Principal:         r.Principal,
			TermMonths:        r.TermMonths,
			AnnualRatePercent: r.AnnualRatePercent,
			StartDate:         r.StartDate,
		},
		Status:    r.Status,
		Completed: r.Completed,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, client_document, client_name, client_email, principal, term_months,
			annual_rate_percent, start_date, status, completed, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.ClientDocument,
		loan.ClientName,
		loan.ClientEmail,
		loan.Terms.Principal,
		loan.Terms.TermMonths,
		loan.Terms.AnnualRatePercent,
		loan.Terms.StartDate,
		loan.Status,
		loan.Completed,
		loan.CreatedBy,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

const loanColumns = `
	SELECT id, client_document, client_name, client_email, principal, term_months,
		annual_rate_percent, start_date, status, completed, created_by, created_at, updated_at
	FROM loans
`

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	var row loanRow
	err := r.db.GetContext(ctx, &row, loanColumns+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	var rows []loanRow
	err := r.db.SelectContext(ctx, &rows, loanColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, row.toDomain())
	}

	return loans, nil
}

func (r *loanRepository) ListByClient(ctx context.Context, clientDocument string) ([]*domain.Loan, error) {
	var rows []loanRow
	err := r.db.SelectContext(ctx, &rows, loanColumns+` WHERE client_document = $1 ORDER BY created_at DESC`, clientDocument)
	if err != nil {
		return nil, err
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, row.toDomain())
	}

	return loans, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET status = $2, completed = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, loan.ID, loan.Status, loan.Completed, time.Now())
	return err
}

func (r *loanRepository) CreateSchedule(ctx context.Context, installments []*domain.Installment) error {
	query := `
		INSERT INTO loan_schedule (id, loan_id, sequence, due_date, payment, interest, principal, balance, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, inst := range installments {
		_, err = tx.ExecContext(ctx, query,
			inst.ID,
			inst.LoanID,
			inst.Sequence,
			inst.DueDate,
			inst.Payment,
			inst.Interest,
			inst.Principal,
			inst.Balance,
			inst.Status,
			inst.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT id, loan_id, sequence, due_date, payment, interest, principal, balance, status, paid_at, created_at
		FROM loan_schedule
		WHERE loan_id = $1
		ORDER BY sequence
	`

	var installments []*domain.Installment
	err := r.db.SelectContext(ctx, &installments, query, loanID)
	if err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *loanRepository) MarkInstallmentPaid(ctx context.Context, loanID uuid.UUID, sequence int, paidAt time.Time) error {
	query := `
		UPDATE loan_schedule
		SET status = $3, paid_at = $4
		WHERE loan_id = $1 AND sequence = $2
	`

	_, err := r.db.ExecContext(ctx, query, loanID, sequence, domain.InstallmentStatusPaid, paidAt)
	return err
}

func (r *loanRepository) SumPrincipalForMonth(ctx context.Context, clientDocument string, year int, month time.Month) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(principal), 0)
		FROM loans
		WHERE client_document = $1
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND EXTRACT(MONTH FROM created_at) = $3
	`

	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, query, clientDocument, year, int(month))
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *loanRepository) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE loan_schedule
		SET status = $1
		WHERE status = $2 AND due_date < $3
	`

	result, err := r.db.ExecContext(ctx, query, domain.InstallmentStatusOverdue, domain.InstallmentStatusPending, asOf)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
