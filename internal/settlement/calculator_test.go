package settlement

import (
	"math"
	"testing"
)

func baseTerms() AgreementTerms {
	return AgreementTerms{
		CoinPrice:       5,
		DollPrice:       20,
		VATPercentage:   10,
		FranchiseShare:  60,
		CloweeShare:     40,
		ElectricityCost: 500,
	}
}

func TestCalculateReferenceBreakdown(t *testing.T) {
	got := Calculate(Reading{CoinSales: 1000, PrizeOutQuantity: 50}, baseTerms())

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"sales_amount", got.SalesAmount, 5000},
		{"vat_amount", got.VATAmount, 500},
		{"net_sales_amount", got.NetSalesAmount, 4500},
		{"prize_cost", got.PrizeCost, 1000},
		{"net_profit", got.NetProfit, 3000},
		{"franchise_profit", got.FranchiseProfit, 1800},
		{"clowee_profit", got.CloweeProfit, 1200},
		{"maintenance_amount", got.MaintenanceAmount, 0},
		{"pay_to_clowee", got.PayToClowee, 1700},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestCalculateZeroElectricityExcluded(t *testing.T) {
	terms := baseTerms()
	terms.ElectricityCost = 0
	got := Calculate(Reading{CoinSales: 1000, PrizeOutQuantity: 50}, terms)

	if got.NetProfit != 3500 {
		t.Fatalf("net_profit = %v, want 3500", got.NetProfit)
	}
	if got.PayToClowee != 2400 {
		t.Fatalf("pay_to_clowee = %v, want 2400", got.PayToClowee)
	}

	// A negative cost must behave exactly like zero, never add back in.
	terms.ElectricityCost = -250
	if neg := Calculate(Reading{CoinSales: 1000, PrizeOutQuantity: 50}, terms); neg != got {
		t.Fatalf("negative electricity cost altered the breakdown: %+v vs %+v", neg, got)
	}
}

func TestCalculateZeroVATKeepsIdentity(t *testing.T) {
	terms := baseTerms()
	terms.VATPercentage = 0
	got := Calculate(Reading{CoinSales: 200, PrizeOutQuantity: 0}, terms)
	if got.VATAmount != 0 {
		t.Fatalf("vat_amount = %v, want 0", got.VATAmount)
	}
	if got.NetSalesAmount != got.SalesAmount {
		t.Fatalf("net_sales_amount = %v, want sales_amount %v", got.NetSalesAmount, got.SalesAmount)
	}
}

func TestCalculateMaintenancePercentage(t *testing.T) {
	terms := baseTerms()
	terms.MaintenancePercentage = 10
	got := Calculate(Reading{CoinSales: 1000, PrizeOutQuantity: 50}, terms)
	if got.MaintenanceAmount != 300 {
		t.Fatalf("maintenance_amount = %v, want 300", got.MaintenanceAmount)
	}
}

func TestCalculateNegativeSettlementAllowed(t *testing.T) {
	// Heavy prize-out: prize cost dwarfs the clowee profit.
	got := Calculate(Reading{CoinSales: 10, PrizeOutQuantity: 50}, baseTerms())
	if got.PayToClowee >= 0 {
		t.Fatalf("expected negative pay_to_clowee, got %v", got.PayToClowee)
	}
}

func TestCalculateDefaultsShareSplit(t *testing.T) {
	terms := AgreementTerms{CoinPrice: 5, DollPrice: 20}
	got := Calculate(Reading{CoinSales: 100, PrizeOutQuantity: 0}, terms)
	if got.FranchiseProfit != 300 || got.CloweeProfit != 200 {
		t.Fatalf("default split not applied: franchise=%v clowee=%v", got.FranchiseProfit, got.CloweeProfit)
	}
}

func TestCalculateCoercesNonFiniteToZero(t *testing.T) {
	terms := baseTerms()
	terms.VATPercentage = math.NaN()
	got := Calculate(Reading{CoinSales: 100, PrizeOutQuantity: math.Inf(1)}, terms)
	if math.IsNaN(got.PayToClowee) || math.IsInf(got.PayToClowee, 0) {
		t.Fatalf("non-finite inputs leaked into pay_to_clowee: %v", got.PayToClowee)
	}
	if got.PrizeCost != 0 {
		t.Fatalf("prize_cost = %v, want 0 for non-finite quantity", got.PrizeCost)
	}
}

func TestCalculateIdempotent(t *testing.T) {
	reading := Reading{CoinSales: 777, PrizeOutQuantity: 13}
	terms := baseTerms()
	terms.MaintenancePercentage = 7.5
	first := Calculate(reading, terms)
	second := Calculate(reading, terms)
	if first != second {
		t.Fatalf("calculation not idempotent: %+v vs %+v", first, second)
	}
}
