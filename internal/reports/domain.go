package reports

// MonthlyTrendRow is one month of the sales trend.
type MonthlyTrendRow struct {
	Month       string  `json:"month"`
	SaleCount   int     `json:"sale_count"`
	CoinSales   float64 `json:"coin_sales"`
	SalesAmount float64 `json:"sales_amount"`
	PayToClowee float64 `json:"pay_to_clowee"`
}

// FranchiseProfitRow summarises one franchise over a range.
type FranchiseProfitRow struct {
	FranchiseID     int64   `json:"franchise_id"`
	FranchiseName   string  `json:"franchise_name"`
	SalesAmount     float64 `json:"sales_amount"`
	CloweeProfit    float64 `json:"clowee_profit"`
	FranchiseProfit float64 `json:"franchise_profit"`
	PayToClowee     float64 `json:"pay_to_clowee"`
	TotalPaid       float64 `json:"total_paid"`
	Expenses        float64 `json:"expenses"`
	NetPosition     float64 `json:"net_position"`
}

// MachineRankRow ranks one machine by sales over a range.
type MachineRankRow struct {
	MachineID     int64   `json:"machine_id"`
	MachineName   string  `json:"machine_name"`
	FranchiseName string  `json:"franchise_name"`
	SaleCount     int     `json:"sale_count"`
	CoinSales     float64 `json:"coin_sales"`
	SalesAmount   float64 `json:"sales_amount"`
}

// StatusBreakdownRow counts sales per reconciled payment status.
type StatusBreakdownRow struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Balance float64 `json:"balance"`
}
