/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  All amounts cross the wire as strings with two decimal places. JSON
  numbers are float64 on the client side; money never becomes a float.

VALIDATION:
  Validation is done in the services, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/credit-engine/billing"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// LoanDTO represents a term loan account in API responses.
type LoanDTO struct {
	ID                string `json:"id"`
	CustomerID        string `json:"customer_id"`
	ProductType       string `json:"product_type"`
	Amount            string `json:"amount"`
	Balance           string `json:"balance"`
	InterestRate      string `json:"interest_rate"`
	Term              int    `json:"term"`
	Status            string `json:"status"`
	PaymentDay        int    `json:"payment_day"`
	NextPaymentDate   string `json:"next_payment_date"`
	NextPaymentAmount string `json:"next_payment_amount"`
	NextInstallment   int    `json:"next_installment"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// CreateLoanRequest is the request to open a term loan.
type CreateLoanRequest struct {
	CustomerID   string `json:"customer_id"`
	Amount       string `json:"amount"`
	InterestRate string `json:"interest_rate"`
	Term         int    `json:"term"`
	PaymentDay   int    `json:"payment_day"`
}

// CardDTO represents a credit card account in API responses.
type CardDTO struct {
	ID              string `json:"id"`
	CustomerID      string `json:"customer_id"`
	CardNumber      string `json:"card_number"`
	ProductType     string `json:"product_type"`
	CreditLimit     string `json:"credit_limit"`
	AvailableCredit string `json:"available_credit"`
	InterestRate    string `json:"interest_rate"`
	Status          string `json:"status"`
	PaymentDay      int    `json:"payment_day"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// CreateCardRequest is the request to issue a credit card.
type CreateCardRequest struct {
	CustomerID   string `json:"customer_id"`
	CreditLimit  string `json:"credit_limit"`
	InterestRate string `json:"interest_rate"`
	PaymentDay   int    `json:"payment_day"`
}

// ChargeCardRequest is the request to apply a purchase to a card.
type ChargeCardRequest struct {
	Amount       string `json:"amount"`
	Installments int    `json:"installments"`
}

// PaymentRequest is the request to pay an account's current bill.
// Date is optional (YYYY-MM-DD); defaults to today.
type PaymentRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date,omitempty"`
}

// ObligationDTO represents one installment in API responses.
type ObligationDTO struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Number      int    `json:"number"`
	Amount      string `json:"amount"`
	Interest    string `json:"interest"`
	DueDate     string `json:"due_date"`
	DaysOverdue int64  `json:"days_overdue"`
	Status      string `json:"status"`
}

// BillDTO represents the aggregation of everything currently due.
type BillDTO struct {
	AccountID   string          `json:"account_id"`
	Principal   string          `json:"principal"`
	Interest    string          `json:"interest"`
	Total       string          `json:"total"`
	Cutoff      string          `json:"cutoff"`
	Obligations []ObligationDTO `json:"obligations"`
}

// DebtDTO reports whether the account carries overdue debt.
type DebtDTO struct {
	AccountID  string `json:"account_id"`
	HasOverdue bool   `json:"has_overdue"`
}

// DailyBalanceDTO is one point of balance history.
type DailyBalanceDTO struct {
	Date    string `json:"date"`
	Balance string `json:"balance"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// DOMAIN -> DTO CONVERSION
// =============================================================================

func toLoanDTO(l *billing.LoanAccount) LoanDTO {
	return LoanDTO{
		ID:                string(l.ID),
		CustomerID:        l.CustomerID,
		ProductType:       string(l.Type),
		Amount:            l.Amount.StringFixed(2),
		Balance:           l.Balance.StringFixed(2),
		InterestRate:      l.InterestRate.String(),
		Term:              l.Term,
		Status:            string(l.Status),
		PaymentDay:        l.PaymentDay,
		NextPaymentDate:   l.NextPaymentDate.String(),
		NextPaymentAmount: l.NextPaymentAmount.StringFixed(2),
		NextInstallment:   l.NextInstallment,
		CreatedAt:         l.CreatedAt.Format(time.RFC3339),
	}
}

func toCardDTO(c *billing.CardAccount) CardDTO {
	return CardDTO{
		ID:              string(c.ID),
		CustomerID:      c.CustomerID,
		CardNumber:      c.CardNumber,
		ProductType:     string(c.Type),
		CreditLimit:     c.CreditLimit.StringFixed(2),
		AvailableCredit: c.AvailableCredit.StringFixed(2),
		InterestRate:    c.InterestRate.String(),
		Status:          string(c.Status),
		PaymentDay:      c.PaymentDay,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
}

func toObligationDTO(o billing.Obligation) ObligationDTO {
	return ObligationDTO{
		ID:          string(o.ID),
		AccountID:   string(o.AccountID),
		Number:      o.Number,
		Amount:      o.Amount.StringFixed(2),
		Interest:    o.Interest.StringFixed(2),
		DueDate:     o.DueDate.String(),
		DaysOverdue: o.DaysOverdue,
		Status:      string(o.Status),
	}
}

func toBillDTO(b *billing.Bill) BillDTO {
	obs := make([]ObligationDTO, len(b.Obligations))
	for i, o := range b.Obligations {
		obs[i] = toObligationDTO(o)
	}
	return BillDTO{
		AccountID:   string(b.AccountID),
		Principal:   b.Principal.StringFixed(2),
		Interest:    b.Interest.StringFixed(2),
		Total:       b.Total.StringFixed(2),
		Cutoff:      b.Cutoff.String(),
		Obligations: obs,
	}
}
