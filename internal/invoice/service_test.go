package invoice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clowee-erp/clowee-erp/internal/currency"
	"github.com/clowee-erp/clowee-erp/internal/franchise"
	"github.com/clowee-erp/clowee-erp/internal/machine"
	"github.com/clowee-erp/clowee-erp/internal/payment"
	"github.com/clowee-erp/clowee-erp/internal/sales"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

type fakeSales struct {
	sale   *sales.Sale
	inputs []settlement.SaleInput
}

func (f fakeSales) Get(ctx context.Context, id int64) (*sales.Sale, error) {
	if f.sale == nil || f.sale.ID != id {
		return nil, sales.ErrNotFound
	}
	cp := *f.sale
	return &cp, nil
}

func (f fakeSales) InputsForRange(ctx context.Context, franchiseID int64, fromDate, toDate time.Time) ([]settlement.SaleInput, error) {
	return f.inputs, nil
}

type fakeFranchises struct {
	fr *franchise.Franchise
}

func (f fakeFranchises) Get(ctx context.Context, id int64) (*franchise.Franchise, error) {
	if f.fr == nil || f.fr.ID != id {
		return nil, franchise.ErrNotFound
	}
	return f.fr, nil
}

func (f fakeFranchises) FranchiseBaseTerms(ctx context.Context, franchiseID int64) (settlement.AgreementTerms, error) {
	return f.fr.BaseTerms(), nil
}

func (f fakeFranchises) AgreementsByFranchise(ctx context.Context, franchiseID int64) ([]settlement.Agreement, error) {
	return nil, nil
}

type fakeMachines struct {
	machines []machine.Machine
}

func (f fakeMachines) Get(ctx context.Context, id int64) (*machine.Machine, error) {
	for i := range f.machines {
		if f.machines[i].ID == id {
			return &f.machines[i], nil
		}
	}
	return nil, machine.ErrNotFound
}

func (f fakeMachines) ListByFranchise(ctx context.Context, franchiseID int64, activeOnly bool) ([]machine.Machine, error) {
	return f.machines, nil
}

type fakePayments struct {
	payments []payment.MachinePayment
}

func (f fakePayments) ListBySale(ctx context.Context, saleID int64) ([]payment.MachinePayment, error) {
	return f.payments, nil
}

func testFranchise() *franchise.Franchise {
	return &franchise.Franchise{
		ID:             10,
		Name:           "Dhaka Mall",
		CoinPrice:      5,
		DollPrice:      20,
		VATPercentage:  10,
		FranchiseShare: 60,
		CloweeShare:    40,
	}
}

func newTestService(s fakeSales, m fakeMachines, p fakePayments) *Service {
	return NewService(s, fakeFranchises{fr: testFranchise()}, m, p, currency.NewFormatter("en", "Tk "))
}

func TestBuildSaleInvoice(t *testing.T) {
	sale := &sales.Sale{
		ID:            1,
		MachineID:     4,
		FranchiseID:   10,
		InvoiceNumber: "INV-202406-0001",
		SalesDate:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		CoinSales:     1000,
		Settlement: settlement.Settlement{
			SalesAmount: 5000, VATAmount: 500, NetSalesAmount: 4500, PrizeCost: 1000,
			NetProfit: 3500, FranchiseProfit: 2100, CloweeProfit: 1400, PayToClowee: 2400,
		},
	}
	svc := newTestService(
		fakeSales{sale: sale},
		fakeMachines{machines: []machine.Machine{{ID: 4, Name: "Claw A", Number: "M-001"}}},
		fakePayments{payments: []payment.MachinePayment{{Amount: 1000}}},
	)

	inv, err := svc.BuildSale(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "INV-202406-0001", inv.InvoiceNumber)
	require.Equal(t, "Dhaka Mall", inv.FranchiseName)
	require.Equal(t, settlement.StatusPartial, inv.Payment.Status)
	require.Equal(t, "Tk 1,400.00", inv.BalanceDue)
	require.Equal(t, "Tk 2,400.00", inv.PayToClowee.Pretty)

	labels := make([]string, len(inv.Lines))
	for i, line := range inv.Lines {
		labels[i] = line.Label
	}
	require.Contains(t, labels, "Net Sales")
}

func TestBuildSaleInvoiceOmitsNetSalesWithoutVAT(t *testing.T) {
	sale := &sales.Sale{
		ID: 1, MachineID: 4, FranchiseID: 10,
		InvoiceNumber: "INV-202406-0002",
		SalesDate:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Settlement: settlement.Settlement{
			SalesAmount: 5000, VATAmount: 0, NetSalesAmount: 5000, PrizeCost: 1000,
			NetProfit: 4000, FranchiseProfit: 2400, CloweeProfit: 1600, PayToClowee: 2600,
		},
	}
	svc := newTestService(
		fakeSales{sale: sale},
		fakeMachines{machines: []machine.Machine{{ID: 4, Name: "Claw A", Number: "M-001"}}},
		fakePayments{},
	)

	inv, err := svc.BuildSale(context.Background(), 1)
	require.NoError(t, err)

	labels := make([]string, len(inv.Lines))
	for i, line := range inv.Lines {
		labels[i] = line.Label
	}
	require.NotContains(t, labels, "Net Sales")
	require.Contains(t, labels, "Sales Amount")
}

func TestBuildConsolidatedListsIdleMachines(t *testing.T) {
	svc := newTestService(
		fakeSales{inputs: []settlement.SaleInput{
			{MachineID: 4, SalesDate: "2024-06-15", CoinSales: 1000, PrizeOutQuantity: 50,
				Stored: &settlement.Settlement{SalesAmount: 5000, PayToClowee: 2400}},
		}},
		fakeMachines{machines: []machine.Machine{
			{ID: 4, Name: "Claw A", Number: "M-001"},
			{ID: 5, Name: "Claw B", Number: "M-002"},
		}},
		fakePayments{},
	)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	inv, err := svc.BuildConsolidated(context.Background(), 10, from, to)
	require.NoError(t, err)

	require.Len(t, inv.Rows, 2, "idle machines still get a zero row")
	require.Equal(t, "Claw A (M-001)", inv.Rows[0].MachineName)
	require.Equal(t, 1, inv.Rows[0].SaleCount)
	require.Equal(t, 0, inv.Rows[1].SaleCount)
	require.Equal(t, "Tk 2,400.00", inv.TotalPayToClowee.Pretty)
}

func TestRenderConsolidatedCSV(t *testing.T) {
	svc := newTestService(
		fakeSales{inputs: []settlement.SaleInput{
			{MachineID: 4, SalesDate: "2024-06-15", CoinSales: 1000, PrizeOutQuantity: 50,
				Stored: &settlement.Settlement{SalesAmount: 5000, PayToClowee: 2400}},
		}},
		fakeMachines{machines: []machine.Machine{{ID: 4, Name: "Claw A", Number: "M-001"}}},
		fakePayments{},
	)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	inv, err := svc.BuildConsolidated(context.Background(), 10, from, to)
	require.NoError(t, err)

	data, err := RenderConsolidatedCSV(inv)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header, one machine, totals")
	require.True(t, strings.HasPrefix(lines[1], "Claw A,1,1000.00,50.00,5000.00"))
	require.True(t, strings.HasPrefix(lines[2], "TOTAL"))
}

func TestRenderSaleHTML(t *testing.T) {
	sale := &sales.Sale{
		ID: 1, MachineID: 4, FranchiseID: 10,
		InvoiceNumber: "INV-202406-0001",
		SalesDate:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Settlement:    settlement.Settlement{PayToClowee: 2400},
	}
	svc := newTestService(
		fakeSales{sale: sale},
		fakeMachines{machines: []machine.Machine{{ID: 4, Name: "Claw A", Number: "M-001"}}},
		fakePayments{},
	)

	inv, err := svc.BuildSale(context.Background(), 1)
	require.NoError(t, err)

	html, err := RenderSaleHTML(inv)
	require.NoError(t, err)
	require.Contains(t, html, "INV-202406-0001")
	require.Contains(t, html, "Claw A")
	require.Contains(t, html, "Due")
}
