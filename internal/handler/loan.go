package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/emi-tracker/internal/domain"
	"github.com/segyhp/emi-tracker/internal/service"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
	"github.com/segyhp/emi-tracker/pkg/response"
	"github.com/segyhp/emi-tracker/pkg/validation"
)

type LoanHandler struct {
	service   *service.TrackerService
	validator *validator.Validate
}

func NewLoanHandler(service *service.TrackerService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validation.New(),
	}
}

// RegisterRoutes mounts the loan API on r.
func (h *LoanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/calculator", h.Calculate).Methods(http.MethodPost)
	r.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	r.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost)
	r.HandleFunc("/loans/{id}", h.GetLoan).Methods(http.MethodGet)
	r.HandleFunc("/loans/{id}", h.DeleteLoan).Methods(http.MethodDelete)
	r.HandleFunc("/loans/{id}/schedule", h.GetSchedule).Methods(http.MethodGet)
	r.HandleFunc("/loans/{id}/summary", h.GetSummary).Methods(http.MethodGet)
	r.HandleFunc("/loans/{id}/payments", h.MarkInstallmentPaid).Methods(http.MethodPost)
	r.HandleFunc("/loans/{id}/default", h.MarkDefaulted).Methods(http.MethodPost)
	r.HandleFunc("/payments", h.ListPayments).Methods(http.MethodGet)
	r.HandleFunc("/portfolio", h.GetPortfolio).Methods(http.MethodGet)
}

func (h *LoanHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.CalculateRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Calculate(req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, view)
}

func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListLoans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, views)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := loanID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, view)
}

func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := loanID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteLoan(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := loanID(w, r)
	if !ok {
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, schedule)
}

func (h *LoanHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := loanID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetLoanSummary(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, summary)
}

func (h *LoanHandler) MarkInstallmentPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := loanID(w, r)
	if !ok {
		return
	}

	result, err := h.service.MarkInstallmentPaid(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, result)
}

func (h *LoanHandler) MarkDefaulted(w http.ResponseWriter, r *http.Request) {
	id, ok := loanID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.MarkDefaulted(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loan)
}

func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var filter *uuid.UUID
	if raw := r.URL.Query().Get("loan_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "loan_id must be a UUID", err)
			return
		}
		filter = &id
	}

	payments, err := h.service.ListPayments(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, payments)
}

func (h *LoanHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(w, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	summary, err := h.service.GetPortfolio(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, summary)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *LoanHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.ErrorWithCode(w, http.StatusBadRequest, customError.ErrCodeInvalidInput, "Invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		response.ErrorWithCode(w, http.StatusBadRequest, customError.ErrCodeInvalidInput, validation.Describe(err), nil)
		return false
	}
	return true
}

func loanID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.ErrorWithCode(w, http.StatusBadRequest, customError.ErrCodeInvalidInput, "Loan id must be a UUID", err)
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	code := customError.CodeOf(err)
	response.ErrorWithCode(w, statusFor(code), code, messageFor(err), nil)
}

func statusFor(code string) int {
	switch code {
	case customError.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case customError.ErrCodeLoanNotFound:
		return http.StatusNotFound
	case customError.ErrCodeLoanNotActive, customError.ErrCodeInvalidStatusTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// messageFor hides store and invariant details from clients.
func messageFor(err error) string {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		return "Internal server error"
	}
	switch be.Code {
	case customError.ErrCodeStoreError, customError.ErrCodeInvariantViolation:
		return "Internal server error"
	default:
		return be.Message
	}
}
