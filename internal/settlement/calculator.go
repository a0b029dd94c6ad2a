package settlement

// Reading is the sales delta a settlement is computed from: coins inserted
// and prizes vended since the previous counter reading, after any manual
// adjustment has been applied.
type Reading struct {
	CoinSales        float64 `json:"coin_sales"`
	PrizeOutQuantity float64 `json:"prize_out_quantity"`
}

// Settlement is the full profit-sharing breakdown for one reading. Values
// are not rounded here; rounding happens once, at the render boundary.
type Settlement struct {
	SalesAmount       float64 `json:"sales_amount"`
	VATAmount         float64 `json:"vat_amount"`
	NetSalesAmount    float64 `json:"net_sales_amount"`
	PrizeCost         float64 `json:"prize_cost"`
	NetProfit         float64 `json:"net_profit"`
	MaintenanceAmount float64 `json:"maintenance_amount"`
	FranchiseProfit   float64 `json:"franchise_profit"`
	CloweeProfit      float64 `json:"clowee_profit"`
	PayToClowee       float64 `json:"pay_to_clowee"`
}

// Calculate derives the profit-sharing breakdown from a reading and the
// resolved agreement terms.
//
// The electricity cost participates only when strictly positive: a zero or
// unset cost must not introduce a line item. PayToClowee may go negative
// when the prize cost exceeds the Clowee profit plus the electricity offset;
// the figure is reported as-is, never clamped.
func Calculate(reading Reading, terms AgreementTerms) Settlement {
	terms = terms.withDefaults()

	coinSales := num(reading.CoinSales)
	prizeOut := num(reading.PrizeOutQuantity)

	salesAmount := coinSales * num(terms.CoinPrice)
	prizeCost := prizeOut * num(terms.DollPrice)
	vatAmount := salesAmount * num(terms.VATPercentage) / 100
	netSales := salesAmount - vatAmount

	electricity := num(terms.ElectricityCost)
	if electricity <= 0 {
		electricity = 0
	}

	netProfit := salesAmount - vatAmount - prizeCost - electricity

	maintenance := 0.0
	if p := num(terms.MaintenancePercentage); p != 0 {
		maintenance = netProfit * p / 100
	}

	franchiseProfit := netProfit * num(terms.FranchiseShare) / 100
	cloweeProfit := netProfit * num(terms.CloweeShare) / 100
	payToClowee := cloweeProfit + prizeCost - electricity

	return Settlement{
		SalesAmount:       salesAmount,
		VATAmount:         vatAmount,
		NetSalesAmount:    netSales,
		PrizeCost:         prizeCost,
		NetProfit:         netProfit,
		MaintenanceAmount: maintenance,
		FranchiseProfit:   franchiseProfit,
		CloweeProfit:      cloweeProfit,
		PayToClowee:       payToClowee,
	}
}
