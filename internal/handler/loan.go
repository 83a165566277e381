package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/prestasys/loan-origination/internal/auth"
	"github.com/prestasys/loan-origination/internal/domain"
	"github.com/prestasys/loan-origination/internal/service"
	customError "github.com/prestasys/loan-origination/pkg/errors"
	"github.com/prestasys/loan-origination/pkg/response"
)

type LoanHandler struct {
	service   *service.OriginationService
	validator *validator.Validate
}

func NewLoanHandler(originationService *service.OriginationService) *LoanHandler {
	return &LoanHandler{
		service:   originationService,
		validator: validator.New(),
	}
}

// Register handles POST /loans
func (h *LoanHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	createdBy := auth.UsernameFromContext(r.Context())

	resp, warning, err := h.service.RegisterLoan(r.Context(), &req, createdBy)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	if warning != nil {
		response.CreatedWithWarning(w, resp, warning.Error())
		return
	}

	response.Created(w, resp)
}

// List handles GET /loans
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

// Get handles GET /loans/{loanId}
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "Invalid loan ID", err)
		return
	}

	detail, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, detail)
}

// PayInstallment handles POST /loans/{loanId}/installments/{sequence}/payment
func (h *LoanHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	loanID, err := uuid.Parse(vars["loanId"])
	if err != nil {
		response.BadRequest(w, "Invalid loan ID", err)
		return
	}

	sequence, err := strconv.Atoi(vars["sequence"])
	if err != nil {
		response.BadRequest(w, "Invalid installment sequence", err)
		return
	}

	warning, err := h.service.MarkInstallmentPaid(r.Context(), loanID, sequence)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	if warning != nil {
		response.CreatedWithWarning(w, map[string]interface{}{"loan_id": loanID, "sequence": sequence}, warning.Error())
		return
	}

	response.Success(w, map[string]interface{}{"loan_id": loanID, "sequence": sequence})
}

// LookupClient handles GET /clients/{personType}/{documentNumber}
func (h *LoanHandler) LookupClient(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	record, err := h.service.LookupClient(r.Context(), vars["personType"], vars["documentNumber"])
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, record)
}

// RemainingLimits handles GET /clients/{personType}/{documentNumber}/limits
func (h *LoanHandler) RemainingLimits(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	limits, err := h.service.RemainingLimits(r.Context(), vars["personType"], vars["documentNumber"])
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, limits)
}

// writeBusinessError maps business error codes to HTTP statuses.
func writeBusinessError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if !errors.As(err, &bizErr) {
		response.InternalServerError(w, "Unexpected error", err)
		return
	}

	status := http.StatusInternalServerError
	switch bizErr.Code {
	case customError.ErrCodeValidation:
		status = http.StatusBadRequest
	case customError.ErrCodeClientNotFound, customError.ErrCodeLoanNotFound, customError.ErrCodeUserNotFound:
		status = http.StatusNotFound
	case customError.ErrCodeDailyLimitExceeded, customError.ErrCodeMonthlyLimitExceeded,
		customError.ErrCodeUsernameTaken, customError.ErrCodeInstallmentPaid:
		status = http.StatusConflict
	case customError.ErrCodeInvalidCredentials:
		status = http.StatusUnauthorized
	case customError.ErrCodeUserInactive:
		status = http.StatusForbidden
	}

	response.ErrorWithCode(w, status, bizErr.Code, bizErr.Message)
}
