package payment

import (
	"time"
)

// Method is how a payment reached Clowee.
type Method string

const (
	MethodCash         Method = "Cash"
	MethodBankTransfer Method = "Bank Transfer"
	MethodMobile       Method = "Mobile Banking"
	MethodCheque       Method = "Cheque"
)

// MachinePayment is one payment recorded against a sale invoice. Every
// payment writes a matching bank money-log entry in the same transaction so
// the derived bank balance always agrees with the payment ledger.
type MachinePayment struct {
	ID              int64     `json:"id" db:"id"`
	SaleID          int64     `json:"sale_id" db:"sale_id"`
	FranchiseID     int64     `json:"franchise_id" db:"franchise_id"`
	BankID          int64     `json:"bank_id" db:"bank_id"`
	InvoiceNumber   string    `json:"invoice_number" db:"invoice_number"`
	Amount          float64   `json:"amount" db:"amount"`
	PaymentDate     time.Time `json:"payment_date" db:"payment_date"`
	Method          Method    `json:"method" db:"method"`
	ReferenceNumber *string   `json:"reference_number,omitempty" db:"reference_number"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedBy       int64     `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// CreatePaymentRequest records a payment against a sale.
type CreatePaymentRequest struct {
	SaleID          int64   `json:"sale_id" validate:"required,gt=0"`
	BankID          int64   `json:"bank_id" validate:"required,gt=0"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	PaymentDate     string  `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Method          Method  `json:"method" validate:"required,oneof=Cash 'Bank Transfer' 'Mobile Banking' Cheque"`
	ReferenceNumber *string `json:"reference_number,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	IdempotencyKey  string  `json:"idempotency_key,omitempty" validate:"omitempty,max=100"`
}

// ListPaymentsRequest filters the payment listing.
type ListPaymentsRequest struct {
	SaleID      int64
	FranchiseID int64
	BankID      int64
	FromDate    *time.Time
	ToDate      *time.Time
	Page        int
	PerPage     int
}
