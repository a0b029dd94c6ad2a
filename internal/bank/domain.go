package bank

import (
	"time"
)

// EntryType classifies a money-log row. Deposits add, withdrawals subtract,
// adjustments carry their own sign.
type EntryType string

const (
	EntryDeposit  EntryType = "deposit"
	EntryWithdraw EntryType = "withdraw"
	EntryAdjust   EntryType = "adjust"
)

// Bank is one account Clowee receives money into. The balance is never
// stored; it is derived from the money log and the expense ledger on demand.
type Bank struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	AccountName   string    `json:"account_name" db:"account_name"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	Branch        *string   `json:"branch,omitempty" db:"branch"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// BankView decorates a bank with its derived balance.
type BankView struct {
	Bank
	Balance float64 `json:"balance"`
}

// MoneyLog is one entry of a bank's money log. PaymentID links entries
// written by the payment ledger; those rows are owned by the payment and
// reversed with it.
type MoneyLog struct {
	ID          int64     `json:"id" db:"id"`
	BankID      int64     `json:"bank_id" db:"bank_id"`
	EntryType   EntryType `json:"entry_type" db:"entry_type"`
	Amount      float64   `json:"amount" db:"amount"`
	Description string    `json:"description" db:"description"`
	PaymentID   *int64    `json:"payment_id,omitempty" db:"payment_id"`
	EntryDate   time.Time `json:"entry_date" db:"entry_date"`
	CreatedBy   int64     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Signed returns the entry's contribution to the balance.
func (l MoneyLog) Signed() float64 {
	if l.EntryType == EntryWithdraw {
		return -l.Amount
	}
	return l.Amount
}

// CreateBankRequest registers a bank account.
type CreateBankRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	AccountName   string  `json:"account_name" validate:"required,max=200"`
	AccountNumber string  `json:"account_number" validate:"required,max=50"`
	Branch        *string `json:"branch,omitempty"`
}

// UpdateBankRequest carries partial updates.
type UpdateBankRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=200"`
	AccountName   *string `json:"account_name,omitempty" validate:"omitempty,max=200"`
	AccountNumber *string `json:"account_number,omitempty" validate:"omitempty,max=50"`
	Branch        *string `json:"branch,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// AddMoneyLogRequest appends a manual money-log entry.
type AddMoneyLogRequest struct {
	EntryType   EntryType `json:"entry_type" validate:"required,oneof=deposit withdraw adjust"`
	Amount      float64   `json:"amount" validate:"required"`
	Description string    `json:"description" validate:"required,max=500"`
	EntryDate   string    `json:"entry_date" validate:"required,datetime=2006-01-02"`
}
