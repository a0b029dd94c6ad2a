package sales

import (
	"time"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// Sale is one settled reading delta for a machine. The settlement figures are
// stored alongside the raw inputs as a cache of the calculation under the
// terms in effect at the sales date; consolidation prefers them and the
// integrity job recomputes them to flag drift.
type Sale struct {
	ID               int64     `json:"id" db:"id"`
	MachineID        int64     `json:"machine_id" db:"machine_id"`
	FranchiseID      int64     `json:"franchise_id" db:"franchise_id"`
	InvoiceNumber    string    `json:"invoice_number" db:"invoice_number"`
	SalesDate        time.Time `json:"sales_date" db:"sales_date"`
	CoinSales        float64   `json:"coin_sales" db:"coin_sales"`
	PrizeOutQuantity float64   `json:"prize_out_quantity" db:"prize_out_quantity"`
	CoinAdjustment   float64   `json:"coin_adjustment" db:"coin_adjustment"`
	PrizeAdjustment  float64   `json:"prize_adjustment" db:"prize_adjustment"`
	AdjustmentNotes  *string   `json:"adjustment_notes,omitempty" db:"adjustment_notes"`

	Settlement settlement.Settlement `json:"settlement"`

	CreatedBy int64     `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Reading returns the settlement input after adjustments.
func (s Sale) Reading() settlement.Reading {
	return settlement.Reading{
		CoinSales:        s.CoinSales + s.CoinAdjustment,
		PrizeOutQuantity: s.PrizeOutQuantity + s.PrizeAdjustment,
	}
}

// SaleView is a sale decorated with its reconciled payment state.
type SaleView struct {
	Sale
	Payment settlement.Reconciliation `json:"payment"`
}

// CreateSaleRequest records a sale from a reading delta. Adjustments shift
// the raw delta before the settlement is computed.
type CreateSaleRequest struct {
	MachineID        int64   `json:"machine_id" validate:"required,gt=0"`
	SalesDate        string  `json:"sales_date" validate:"required,datetime=2006-01-02"`
	CoinSales        float64 `json:"coin_sales" validate:"gte=0"`
	PrizeOutQuantity float64 `json:"prize_out_quantity" validate:"gte=0"`
	CoinAdjustment   float64 `json:"coin_adjustment"`
	PrizeAdjustment  float64 `json:"prize_adjustment"`
	AdjustmentNotes  *string `json:"adjustment_notes,omitempty"`
}

// UpdateSaleRequest corrects an unpaid sale. Any change reruns the
// settlement under the terms in effect at the (possibly new) sales date.
type UpdateSaleRequest struct {
	SalesDate        *string  `json:"sales_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CoinSales        *float64 `json:"coin_sales,omitempty" validate:"omitempty,gte=0"`
	PrizeOutQuantity *float64 `json:"prize_out_quantity,omitempty" validate:"omitempty,gte=0"`
	CoinAdjustment   *float64 `json:"coin_adjustment,omitempty"`
	PrizeAdjustment  *float64 `json:"prize_adjustment,omitempty"`
	AdjustmentNotes  *string  `json:"adjustment_notes,omitempty"`
}

// ListSalesRequest filters the sale listing.
type ListSalesRequest struct {
	FranchiseID int64
	MachineID   int64
	FromDate    *time.Time
	ToDate      *time.Time
	Page        int
	PerPage     int
}
