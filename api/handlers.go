/*
handlers.go - HTTP API handlers for the credit engine

PURPOSE:
  Exposes the billing engine and the two credit products via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Loans:
    GET    /api/credits?customer_id=X       List a customer's loans
    POST   /api/credits                     Open a loan
    GET    /api/credits/{id}                Get loan details
    DELETE /api/credits/{id}                Delete (blocked with balance)
    GET    /api/credits/{id}/schedule       Full installment schedule
    GET    /api/credits/{id}/bill           Current aggregated bill
    POST   /api/credits/{id}/payments       Pay the current bill
    GET    /api/credits/{id}/debts          Overdue-debt check
    GET    /api/credits/{id}/balances       Daily balance history

  Cards:
    GET    /api/cards?customer_id=X         List a customer's cards
    POST   /api/cards                       Issue a card
    GET    /api/cards/{id}                  Get card details
    DELETE /api/cards/{id}                  Delete (blocked with consumed credit)
    POST   /api/cards/{id}/charges          Apply a purchase
    GET    /api/cards/{id}/installments     Installments, ?status= filter
    GET    /api/cards/{id}/bill             Current aggregated bill
    POST   /api/cards/{id}/payments        Pay the current bill
    GET    /api/cards/{id}/debts            Overdue-debt check
    GET    /api/cards/{id}/balances         Daily balance history

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Account not found, nothing due
  - 409: Business conflicts (mismatch, insufficient credit, debt on delete)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/credit-engine/billing"
	"github.com/warp/credit-engine/card"
	"github.com/warp/credit-engine/customer"
	"github.com/warp/credit-engine/loan"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Loans     *loan.Service
	Cards     *card.Service
	Snapshots billing.SnapshotStore
}

// NewHandler creates a new handler over the two product services.
func NewHandler(loans *loan.Service, cards *card.Service, snapshots billing.SnapshotStore) *Handler {
	return &Handler{Loans: loans, Cards: cards, Snapshots: snapshots}
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// CreateLoan opens a term loan and materializes its schedule.
// POST /api/credits
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	rate, err := decimal.NewFromString(req.InterestRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid interest rate", err)
		return
	}

	account, err := h.Loans.Create(r.Context(), loan.CreateRequest{
		CustomerID:   req.CustomerID,
		Amount:       amount,
		InterestRate: rate,
		Term:         req.Term,
		PaymentDay:   req.PaymentDay,
	})
	if err != nil {
		writeDomainError(w, "Failed to create loan", err)
		return
	}

	writeJSON(w, http.StatusCreated, toLoanDTO(account))
}

// ListLoans returns a customer's loans.
// GET /api/credits?customer_id=X
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "customer_id query parameter is required", nil)
		return
	}

	loans, err := h.Loans.ListByCustomer(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, "Failed to list loans", err)
		return
	}

	dtos := make([]LoanDTO, len(loans))
	for i := range loans {
		dtos[i] = toLoanDTO(&loans[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLoan returns a single loan account.
// GET /api/credits/{id}
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	account, err := h.Loans.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(account))
}

// DeleteLoan removes a loan without outstanding balance.
// DELETE /api/credits/{id}
func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	if err := h.Loans.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete loan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLoanSchedule returns the loan's full installment schedule.
// GET /api/credits/{id}/schedule
func (h *Handler) GetLoanSchedule(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	obs, err := h.Loans.Schedule(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load schedule", err)
		return
	}

	dtos := make([]ObligationDTO, len(obs))
	for i, o := range obs {
		dtos[i] = toObligationDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLoanBill returns everything currently due on the loan.
// GET /api/credits/{id}/bill?date=YYYY-MM-DD
func (h *Handler) GetLoanBill(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))
	asOf, ok := parseAsOf(w, r)
	if !ok {
		return
	}

	bill, err := h.Loans.CurrentBill(r.Context(), id, asOf)
	if err != nil {
		writeDomainError(w, "Failed to compute bill", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// PayLoan reconciles a payment against the loan's current bill.
// POST /api/credits/{id}/payments
func (h *Handler) PayLoan(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	amount, asOf, ok := parsePayment(w, r)
	if !ok {
		return
	}

	bill, err := h.Loans.Pay(r.Context(), id, amount, asOf)
	if err != nil {
		writeDomainError(w, "Payment failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// GetLoanDebts reports whether the loan has overdue installments.
// GET /api/credits/{id}/debts
func (h *Handler) GetLoanDebts(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	overdue, err := h.Loans.HasOverdueDebt(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to check debts", err)
		return
	}
	writeJSON(w, http.StatusOK, DebtDTO{AccountID: string(id), HasOverdue: overdue})
}

// GetLoanBalances returns the loan's daily balance history.
// GET /api/credits/{id}/balances?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetLoanBalances(w http.ResponseWriter, r *http.Request) {
	h.balanceHistory(w, r)
}

// =============================================================================
// CARD HANDLERS
// =============================================================================

// CreateCard issues a credit card with the full limit available.
// POST /api/cards
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	limit, err := decimal.NewFromString(req.CreditLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credit limit", err)
		return
	}
	rate, err := decimal.NewFromString(req.InterestRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid interest rate", err)
		return
	}

	account, err := h.Cards.Create(r.Context(), card.CreateRequest{
		CustomerID:   req.CustomerID,
		CreditLimit:  limit,
		InterestRate: rate,
		PaymentDay:   req.PaymentDay,
	})
	if err != nil {
		writeDomainError(w, "Failed to issue card", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCardDTO(account))
}

// ListCards returns a customer's cards.
// GET /api/cards?customer_id=X
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "customer_id query parameter is required", nil)
		return
	}

	cards, err := h.Cards.ListByCustomer(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, "Failed to list cards", err)
		return
	}

	dtos := make([]CardDTO, len(cards))
	for i := range cards {
		dtos[i] = toCardDTO(&cards[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCard returns a single card account.
// GET /api/cards/{id}
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	account, err := h.Cards.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get card", err)
		return
	}
	writeJSON(w, http.StatusOK, toCardDTO(account))
}

// DeleteCard removes a card with no consumed credit.
// DELETE /api/cards/{id}
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	if err := h.Cards.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete card", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChargeCard applies a purchase, single or multi-installment.
// POST /api/cards/{id}/charges
func (h *Handler) ChargeCard(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	var req ChargeCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	installments := req.Installments
	if installments == 0 {
		installments = 1
	}

	account, err := h.Cards.Charge(r.Context(), id, card.ChargeRequest{
		Amount:       amount,
		Installments: installments,
	}, billing.Today())
	if err != nil {
		writeDomainError(w, "Charge failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toCardDTO(account))
}

// GetCardInstallments lists the card's installments, optionally
// filtered by status.
// GET /api/cards/{id}/installments?status=PENDING
func (h *Handler) GetCardInstallments(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	status := billing.ObligationStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = billing.StatusPending
	}

	obs, err := h.Cards.InstallmentsByStatus(r.Context(), id, status)
	if err != nil {
		writeDomainError(w, "Failed to list installments", err)
		return
	}

	dtos := make([]ObligationDTO, len(obs))
	for i, o := range obs {
		dtos[i] = toObligationDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCardBill returns everything currently due on the card.
// GET /api/cards/{id}/bill?date=YYYY-MM-DD
func (h *Handler) GetCardBill(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))
	asOf, ok := parseAsOf(w, r)
	if !ok {
		return
	}

	bill, err := h.Cards.CurrentBill(r.Context(), id, asOf)
	if err != nil {
		writeDomainError(w, "Failed to compute bill", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// PayCard reconciles a payment against the card's current bill.
// POST /api/cards/{id}/payments
func (h *Handler) PayCard(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	amount, asOf, ok := parsePayment(w, r)
	if !ok {
		return
	}

	bill, err := h.Cards.Pay(r.Context(), id, amount, asOf)
	if err != nil {
		writeDomainError(w, "Payment failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// GetCardDebts reports whether the card has overdue installments.
// GET /api/cards/{id}/debts
func (h *Handler) GetCardDebts(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	overdue, err := h.Cards.HasOverdueDebt(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to check debts", err)
		return
	}
	writeJSON(w, http.StatusOK, DebtDTO{AccountID: string(id), HasOverdue: overdue})
}

// GetCardBalances returns the card's daily balance history.
// GET /api/cards/{id}/balances?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetCardBalances(w http.ResponseWriter, r *http.Request) {
	h.balanceHistory(w, r)
}

// balanceHistory serves the shared history endpoint for both products.
func (h *Handler) balanceHistory(w http.ResponseWriter, r *http.Request) {
	id := billing.AccountID(chi.URLParam(r, "id"))

	to := billing.Today()
	from := to.AddMonths(-1)
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = billing.ParseDate(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = billing.ParseDate(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
	}

	history, err := h.Snapshots.BalanceHistory(r.Context(), id, from, to)
	if err != nil {
		writeDomainError(w, "Failed to load balance history", err)
		return
	}

	dtos := make([]DailyBalanceDTO, len(history))
	for i, s := range history {
		dtos[i] = DailyBalanceDTO{Date: s.Date.String(), Balance: s.Balance.StringFixed(2)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// parseAsOf reads the optional ?date= parameter, defaulting to today.
func parseAsOf(w http.ResponseWriter, r *http.Request) (billing.Date, bool) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return billing.Today(), true
	}
	d, err := billing.ParseDate(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return billing.Date{}, false
	}
	return d, true
}

// parsePayment decodes a PaymentRequest body into amount and value date.
func parsePayment(w http.ResponseWriter, r *http.Request) (decimal.Decimal, billing.Date, bool) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return decimal.Decimal{}, billing.Date{}, false
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return decimal.Decimal{}, billing.Date{}, false
	}

	asOf := billing.Today()
	if req.Date != "" {
		if asOf, err = billing.ParseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return decimal.Decimal{}, billing.Date{}, false
		}
	}
	return amount, asOf, true
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case billing.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, customer.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case billing.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
