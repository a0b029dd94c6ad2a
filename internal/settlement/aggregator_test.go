package settlement

import "testing"

func TestAggregateAdditivity(t *testing.T) {
	machines := []MachineRef{{ID: 1, Name: "CW-01"}, {ID: 2, Name: "CW-02"}, {ID: 3, Name: "CW-03"}}
	sales := []SaleInput{
		{MachineID: 1, SalesDate: "2024-04-03", CoinSales: 1000, PrizeOutQuantity: 50},
		{MachineID: 1, SalesDate: "2024-04-18", CoinSales: 400, PrizeOutQuantity: 10},
		{MachineID: 2, SalesDate: "2024-04-10", CoinSales: 900, PrizeOutQuantity: 40},
	}
	terms := baseTerms()

	got := Aggregate(7, machines, sales, terms, nil, date("2024-04-01"), date("2024-04-30"))

	var wantTotal float64
	for _, s := range sales {
		stl := Calculate(Reading{CoinSales: s.CoinSales, PrizeOutQuantity: s.PrizeOutQuantity}, terms)
		wantTotal += stl.PayToClowee
	}
	if got.TotalPayToClowee != wantTotal {
		t.Fatalf("total_pay_to_clowee = %v, want sum of independent settlements %v", got.TotalPayToClowee, wantTotal)
	}

	if len(got.Machines) != 3 {
		t.Fatalf("expected 3 breakdown rows, got %d", len(got.Machines))
	}
	if got.Machines[2].SaleCount != 0 || got.Machines[2].PayToClowee != 0 {
		t.Fatalf("idle machine should carry a zero row, got %+v", got.Machines[2])
	}
	if got.Machines[0].SaleCount != 2 {
		t.Fatalf("machine 1 sale_count = %d, want 2", got.Machines[0].SaleCount)
	}
}

func TestAggregateFiltersRangeAndMachines(t *testing.T) {
	machines := []MachineRef{{ID: 1, Name: "CW-01"}}
	sales := []SaleInput{
		{MachineID: 1, SalesDate: "2024-03-31", CoinSales: 100}, // before range
		{MachineID: 1, SalesDate: "2024-04-01", CoinSales: 200}, // from boundary, inclusive
		{MachineID: 1, SalesDate: "2024-04-30", CoinSales: 300}, // to boundary, inclusive
		{MachineID: 1, SalesDate: "2024-05-01", CoinSales: 400}, // after range
		{MachineID: 2, SalesDate: "2024-04-15", CoinSales: 500}, // foreign machine
	}
	got := Aggregate(7, machines, sales, baseTerms(), nil, date("2024-04-01"), date("2024-04-30"))
	if got.TotalCoinSales != 500 {
		t.Fatalf("total_coin_sales = %v, want 500", got.TotalCoinSales)
	}
}

func TestAggregateDropsMalformedDates(t *testing.T) {
	machines := []MachineRef{{ID: 1, Name: "CW-01"}}
	sales := []SaleInput{
		{MachineID: 1, SalesDate: "not-a-date", CoinSales: 100},
		{MachineID: 1, SalesDate: "", CoinSales: 100},
		{MachineID: 1, SalesDate: "2024-04-10", CoinSales: 100},
	}
	got := Aggregate(7, machines, sales, baseTerms(), nil, date("2024-04-01"), date("2024-04-30"))
	if got.Machines[0].SaleCount != 1 {
		t.Fatalf("sale_count = %d, want malformed rows silently dropped", got.Machines[0].SaleCount)
	}
}

func TestAggregatePrefersStoredSettlement(t *testing.T) {
	machines := []MachineRef{{ID: 1, Name: "CW-01"}}
	stored := Settlement{SalesAmount: 123, PayToClowee: 99}
	sales := []SaleInput{
		{MachineID: 1, SalesDate: "2024-04-10", CoinSales: 1000, PrizeOutQuantity: 50, Stored: &stored},
	}
	got := Aggregate(7, machines, sales, baseTerms(), nil, date("2024-04-01"), date("2024-04-30"))
	if got.TotalPayToClowee != 99 || got.TotalSalesAmount != 123 {
		t.Fatalf("stored settlement not preferred: %+v", got)
	}
}

func TestAggregateResolvesTermsPerSaleDate(t *testing.T) {
	machines := []MachineRef{{ID: 1, Name: "CW-01"}}
	agreements := []Agreement{
		{ID: 1, EffectiveDate: date("2024-04-15"), Terms: AgreementTerms{CoinPrice: 10}},
	}
	base := AgreementTerms{CoinPrice: 5}
	sales := []SaleInput{
		{MachineID: 1, SalesDate: "2024-04-10", CoinSales: 100}, // base price 5
		{MachineID: 1, SalesDate: "2024-04-20", CoinSales: 100}, // agreement price 10
	}
	got := Aggregate(7, machines, sales, base, agreements, date("2024-04-01"), date("2024-04-30"))
	if got.TotalSalesAmount != 1500 {
		t.Fatalf("total_sales_amount = %v, want 1500 (500 at base + 1000 under agreement)", got.TotalSalesAmount)
	}
}
