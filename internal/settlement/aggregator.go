package settlement

import (
	"time"
)

// DateLayout is the wire format sale dates arrive in.
const DateLayout = "2006-01-02"

// MachineRef identifies one machine of the franchise for breakdown rows.
type MachineRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SaleInput is one sale row as consumed by the aggregator. Stored carries
// the settlement figures cached on the row at creation time; when nil the
// aggregator recomputes from the agreement in effect at the sale date.
//
// SalesDate is kept in its transport form: rows whose date does not parse
// are excluded from the aggregation rather than failing it.
type SaleInput struct {
	MachineID        int64       `json:"machine_id"`
	SalesDate        string      `json:"sales_date"`
	CoinSales        float64     `json:"coin_sales"`
	PrizeOutQuantity float64     `json:"prize_out_quantity"`
	Stored           *Settlement `json:"stored,omitempty"`
}

// MachineBreakdown is the per-machine line of the consolidated invoice.
type MachineBreakdown struct {
	Machine           MachineRef `json:"machine"`
	SaleCount         int        `json:"sale_count"`
	CoinSales         float64    `json:"coin_sales"`
	SalesAmount       float64    `json:"sales_amount"`
	PrizeOutQuantity  float64    `json:"prize_out_quantity"`
	PrizeCost         float64    `json:"prize_cost"`
	VATAmount         float64    `json:"vat_amount"`
	NetProfit         float64    `json:"net_profit"`
	FranchiseProfit   float64    `json:"franchise_profit"`
	CloweeProfit      float64    `json:"clowee_profit"`
	MaintenanceAmount float64    `json:"maintenance_amount"`
	PayToClowee       float64    `json:"pay_to_clowee"`
}

// ConsolidatedSettlement is the franchise-level fold over a date range.
type ConsolidatedSettlement struct {
	FranchiseID            int64              `json:"franchise_id"`
	FromDate               time.Time          `json:"from_date"`
	ToDate                 time.Time          `json:"to_date"`
	TotalCoinSales         float64            `json:"total_coin_sales"`
	TotalSalesAmount       float64            `json:"total_sales_amount"`
	TotalPrizeOut          float64            `json:"total_prize_out"`
	TotalPrizeCost         float64            `json:"total_prize_cost"`
	TotalVATAmount         float64            `json:"total_vat_amount"`
	TotalNetProfit         float64            `json:"total_net_profit"`
	TotalFranchiseProfit   float64            `json:"total_franchise_profit"`
	TotalCloweeProfit      float64            `json:"total_clowee_profit"`
	TotalMaintenanceAmount float64            `json:"total_maintenance_amount"`
	TotalPayToClowee       float64            `json:"total_pay_to_clowee"`
	Machines               []MachineBreakdown `json:"machines"`
}

// Aggregate folds per-machine settlements for a franchise over
// [fromDate, toDate] inclusive. Sales outside the range, on machines not in
// the list, or with unparsable dates are skipped. Terms are resolved per
// sale date against the one agreement snapshot passed in, so every row of a
// run observes the same agreement history.
//
// Machines with no qualifying sales still get a zero breakdown row; the
// consolidated invoice lists every machine of the franchise.
func Aggregate(franchiseID int64, machines []MachineRef, sales []SaleInput, base AgreementTerms, agreements []Agreement, fromDate, toDate time.Time) ConsolidatedSettlement {
	out := ConsolidatedSettlement{
		FranchiseID: franchiseID,
		FromDate:    fromDate,
		ToDate:      toDate,
		Machines:    make([]MachineBreakdown, 0, len(machines)),
	}

	byMachine := make(map[int64]*MachineBreakdown, len(machines))
	for _, m := range machines {
		out.Machines = append(out.Machines, MachineBreakdown{Machine: m})
		byMachine[m.ID] = &out.Machines[len(out.Machines)-1]
	}

	for _, sale := range sales {
		row, ok := byMachine[sale.MachineID]
		if !ok {
			continue
		}
		saleDate, err := time.Parse(DateLayout, sale.SalesDate)
		if err != nil {
			continue
		}
		if saleDate.Before(fromDate) || saleDate.After(toDate) {
			continue
		}

		stl := sale.Stored
		if stl == nil {
			terms := ResolveTerms(base, agreements, saleDate)
			computed := Calculate(Reading{CoinSales: sale.CoinSales, PrizeOutQuantity: sale.PrizeOutQuantity}, terms)
			stl = &computed
		}

		row.SaleCount++
		row.CoinSales += num(sale.CoinSales)
		row.PrizeOutQuantity += num(sale.PrizeOutQuantity)
		row.SalesAmount += num(stl.SalesAmount)
		row.PrizeCost += num(stl.PrizeCost)
		row.VATAmount += num(stl.VATAmount)
		row.NetProfit += num(stl.NetProfit)
		row.FranchiseProfit += num(stl.FranchiseProfit)
		row.CloweeProfit += num(stl.CloweeProfit)
		row.MaintenanceAmount += num(stl.MaintenanceAmount)
		row.PayToClowee += num(stl.PayToClowee)
	}

	for i := range out.Machines {
		row := &out.Machines[i]
		out.TotalCoinSales += row.CoinSales
		out.TotalSalesAmount += row.SalesAmount
		out.TotalPrizeOut += row.PrizeOutQuantity
		out.TotalPrizeCost += row.PrizeCost
		out.TotalVATAmount += row.VATAmount
		out.TotalNetProfit += row.NetProfit
		out.TotalFranchiseProfit += row.FranchiseProfit
		out.TotalCloweeProfit += row.CloweeProfit
		out.TotalMaintenanceAmount += row.MaintenanceAmount
		out.TotalPayToClowee += row.PayToClowee
	}

	return out
}
