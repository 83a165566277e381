package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrClientNotFound       = errors.New("client not found in registry")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrUserInactive         = errors.New("user is inactive")
	ErrDailyLimitExceeded   = errors.New("daily lending limit exceeded")
	ErrMonthlyLimitExceeded = errors.New("monthly lending limit exceeded")
	ErrInstallmentPaid      = errors.New("installment is already paid")
	ErrValidation           = errors.New("validation failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeClientNotFound       = "CLIENT_NOT_FOUND"
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeUsernameTaken        = "USERNAME_TAKEN"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeUserInactive         = "USER_INACTIVE"
	ErrCodeDailyLimitExceeded   = "DAILY_LIMIT_EXCEEDED"
	ErrCodeMonthlyLimitExceeded = "MONTHLY_LIMIT_EXCEEDED"
	ErrCodeInstallmentPaid      = "INSTALLMENT_ALREADY_PAID"
	ErrCodeNotificationFailed   = "NOTIFICATION_FAILED"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapValidation(reason string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, reason, ErrValidation)
}

func WrapClientNotFound(documentNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeClientNotFound,
		fmt.Sprintf("No client found for document number %s", documentNumber),
		ErrClientNotFound,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapUserNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User %s not found", id),
		ErrUserNotFound,
	)
}

func WrapUsernameTaken(username string) *BusinessError {
	return NewBusinessError(
		ErrCodeUsernameTaken,
		fmt.Sprintf("Username %s already exists", username),
		ErrUsernameTaken,
	)
}

// WrapDailyLimitExceeded reports how much daily headroom the client still has,
// so callers can display the remaining ceiling.
func WrapDailyLimitExceeded(remaining decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeDailyLimitExceeded,
		fmt.Sprintf("Requested amount exceeds the client's daily limit; remaining today: %s", remaining.StringFixed(2)),
		ErrDailyLimitExceeded,
	)
}

// WrapMonthlyLimitExceeded reports the remaining monthly headroom.
func WrapMonthlyLimitExceeded(remaining decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeMonthlyLimitExceeded,
		fmt.Sprintf("Requested amount exceeds the client's monthly limit; remaining this month: %s", remaining.StringFixed(2)),
		ErrMonthlyLimitExceeded,
	)
}

func WrapInstallmentPaid(loanID string, sequence int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentPaid,
		fmt.Sprintf("Installment %d of loan %s is already paid", sequence, loanID),
		ErrInstallmentPaid,
	)
}

// WrapNotificationFailure marks a non-fatal notification error. The loan is
// already persisted when this is produced; it must never roll anything back.
func WrapNotificationFailure(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeNotificationFailed,
		"Loan registered, but the notification email could not be sent",
		err,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
