package invoice

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"strconv"
)

var saleTmpl = template.Must(template.New("sale").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.InvoiceNumber}}</title>
<style>
body { font-family: sans-serif; margin: 40px; color: #222; }
h1 { font-size: 20px; }
table { border-collapse: collapse; width: 100%; margin-top: 16px; }
td, th { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
tr.total td { font-weight: bold; background: #f5f5f5; }
.meta { color: #555; font-size: 13px; }
</style>
</head>
<body>
<h1>Clowee Invoice {{.InvoiceNumber}}</h1>
<p class="meta">
Franchise: {{.FranchiseName}}<br>
Machine: {{.MachineName}} ({{.MachineNumber}})<br>
Sales date: {{.SalesDate}}<br>
Coins: {{.CoinSales}} &middot; Prizes out: {{.PrizeOutQuantity}}
</p>
<table>
{{range .Lines}}<tr><td>{{.Label}}</td><td>{{.Pretty}}</td></tr>
{{end}}<tr class="total"><td>{{.PayToClowee.Label}}</td><td>{{.PayToClowee.Pretty}}</td></tr>
<tr><td>Status</td><td>{{.Payment.Status}}</td></tr>
<tr><td>Balance due</td><td>{{.BalanceDue}}</td></tr>
</table>
</body>
</html>
`))

var consolidatedTmpl = template.Must(template.New("consolidated").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Consolidated Invoice {{.FranchiseName}}</title>
<style>
body { font-family: sans-serif; margin: 40px; color: #222; }
h1 { font-size: 20px; }
table { border-collapse: collapse; width: 100%; margin-top: 16px; font-size: 13px; }
td, th { border: 1px solid #ccc; padding: 5px 8px; text-align: right; }
td:first-child, th:first-child { text-align: left; }
tr.total td { font-weight: bold; background: #f5f5f5; }
.meta { color: #555; font-size: 13px; }
</style>
</head>
<body>
<h1>Clowee Consolidated Invoice</h1>
<p class="meta">Franchise: {{.FranchiseName}}<br>Period: {{.FromDate}} to {{.ToDate}}</p>
<table>
<tr><th>Machine</th><th>Sales</th><th>Coins</th><th>Prizes</th><th>Sales Amt</th><th>VAT</th><th>Prize Cost</th><th>Net Profit</th><th>Franchise</th><th>Clowee</th><th>Pay to Clowee</th></tr>
{{range .Rows}}<tr><td>{{.MachineName}}</td><td>{{.SaleCount}}</td><td>{{.CoinSales}}</td><td>{{.PrizeOutQuantity}}</td><td>{{.SalesAmount}}</td><td>{{.VATAmount}}</td><td>{{.PrizeCost}}</td><td>{{.NetProfit}}</td><td>{{.FranchiseProfit}}</td><td>{{.CloweeProfit}}</td><td>{{.PayToClowee}}</td></tr>
{{end}}</table>
<table>
{{range .Totals}}<tr><td>{{.Label}}</td><td>{{.Pretty}}</td></tr>
{{end}}<tr class="total"><td>{{.TotalPayToClowee.Label}}</td><td>{{.TotalPayToClowee.Pretty}}</td></tr>
</table>
</body>
</html>
`))

// RenderSaleHTML renders the single-sale invoice page.
func RenderSaleHTML(inv *SaleInvoice) (string, error) {
	var buf bytes.Buffer
	if err := saleTmpl.Execute(&buf, inv); err != nil {
		return "", fmt.Errorf("render sale invoice: %w", err)
	}
	return buf.String(), nil
}

// RenderConsolidatedHTML renders the consolidated invoice page.
func RenderConsolidatedHTML(inv *ConsolidatedInvoice) (string, error) {
	var buf bytes.Buffer
	if err := consolidatedTmpl.Execute(&buf, inv); err != nil {
		return "", fmt.Errorf("render consolidated invoice: %w", err)
	}
	return buf.String(), nil
}

// RenderConsolidatedCSV writes the per-machine breakdown as CSV with a
// totals row at the bottom.
func RenderConsolidatedCSV(inv *ConsolidatedInvoice) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"machine", "sale_count", "coin_sales", "prize_out", "sales_amount",
		"vat_amount", "prize_cost", "net_profit", "franchise_profit", "clowee_profit", "pay_to_clowee"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, b := range inv.Raw.Machines {
		row := []string{
			b.Machine.Name,
			strconv.Itoa(b.SaleCount),
			f(b.CoinSales), f(b.PrizeOutQuantity), f(b.SalesAmount), f(b.VATAmount),
			f(b.PrizeCost), f(b.NetProfit), f(b.FranchiseProfit), f(b.CloweeProfit), f(b.PayToClowee),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	totals := []string{
		"TOTAL", "",
		f(inv.Raw.TotalCoinSales), f(inv.Raw.TotalPrizeOut), f(inv.Raw.TotalSalesAmount),
		f(inv.Raw.TotalVATAmount), f(inv.Raw.TotalPrizeCost), f(inv.Raw.TotalNetProfit),
		f(inv.Raw.TotalFranchiseProfit), f(inv.Raw.TotalCloweeProfit), f(inv.Raw.TotalPayToClowee),
	}
	if err := w.Write(totals); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
