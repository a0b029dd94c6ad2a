package invoice

import (
	"time"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// LineItem is one labelled, formatted figure on an invoice.
type LineItem struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Pretty string  `json:"pretty"`
}

// SaleInvoice is the render-ready view of one sale invoice. All monetary
// strings are produced by the currency formatter; the raw values stay
// unrounded.
type SaleInvoice struct {
	InvoiceNumber string    `json:"invoice_number"`
	IssuedAt      time.Time `json:"issued_at"`
	SalesDate     string    `json:"sales_date"`

	FranchiseName string `json:"franchise_name"`
	MachineName   string `json:"machine_name"`
	MachineNumber string `json:"machine_number"`

	CoinSales        float64 `json:"coin_sales"`
	PrizeOutQuantity float64 `json:"prize_out_quantity"`

	Lines       []LineItem                `json:"lines"`
	PayToClowee LineItem                  `json:"pay_to_clowee"`
	Payment     settlement.Reconciliation `json:"payment"`
	BalanceDue  string                    `json:"balance_due"`
}

// MachineRow is one machine line of the consolidated invoice.
type MachineRow struct {
	MachineName string `json:"machine_name"`

	SaleCount        int     `json:"sale_count"`
	CoinSales        float64 `json:"coin_sales"`
	PrizeOutQuantity float64 `json:"prize_out_quantity"`

	SalesAmount     string `json:"sales_amount"`
	PrizeCost       string `json:"prize_cost"`
	VATAmount       string `json:"vat_amount"`
	NetProfit       string `json:"net_profit"`
	FranchiseProfit string `json:"franchise_profit"`
	CloweeProfit    string `json:"clowee_profit"`
	PayToClowee     string `json:"pay_to_clowee"`
}

// ConsolidatedInvoice is the render-ready franchise invoice over a date
// range: one row per machine plus formatted totals.
type ConsolidatedInvoice struct {
	FranchiseName string    `json:"franchise_name"`
	FromDate      string    `json:"from_date"`
	ToDate        string    `json:"to_date"`
	IssuedAt      time.Time `json:"issued_at"`

	Rows   []MachineRow `json:"rows"`
	Totals []LineItem   `json:"totals"`

	TotalPayToClowee LineItem `json:"total_pay_to_clowee"`

	// Raw keeps the unformatted aggregation for API consumers.
	Raw settlement.ConsolidatedSettlement `json:"raw"`
}
