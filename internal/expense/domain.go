package expense

import (
	"time"
)

// Category groups expenses for reporting.
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// MachineExpense is one cost booked against a machine (or the franchise as a
// whole when MachineID is nil). Expenses reduce the paying bank's derived
// balance and feed the franchise profit report.
type MachineExpense struct {
	ID          int64     `json:"id" db:"id"`
	CategoryID  int64     `json:"category_id" db:"category_id"`
	FranchiseID int64     `json:"franchise_id" db:"franchise_id"`
	MachineID   *int64    `json:"machine_id,omitempty" db:"machine_id"`
	BankID      int64     `json:"bank_id" db:"bank_id"`
	Amount      float64   `json:"amount" db:"amount"`
	ExpenseDate time.Time `json:"expense_date" db:"expense_date"`
	Description string    `json:"description" db:"description"`
	CreatedBy   int64     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateCategoryRequest registers an expense category.
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty"`
}

// CreateExpenseRequest books an expense.
type CreateExpenseRequest struct {
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	FranchiseID int64   `json:"franchise_id" validate:"required,gt=0"`
	MachineID   *int64  `json:"machine_id,omitempty" validate:"omitempty,gt=0"`
	BankID      int64   `json:"bank_id" validate:"required,gt=0"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	ExpenseDate string  `json:"expense_date" validate:"required,datetime=2006-01-02"`
	Description string  `json:"description" validate:"required,max=500"`
}

// ListExpensesRequest filters the expense listing.
type ListExpensesRequest struct {
	CategoryID  int64
	FranchiseID int64
	MachineID   int64
	FromDate    *time.Time
	ToDate      *time.Time
	Page        int
	PerPage     int
}
