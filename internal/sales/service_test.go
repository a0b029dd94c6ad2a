package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clowee-erp/clowee-erp/internal/machine"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

type fakeStore struct {
	sales  map[int64]*Sale
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{sales: make(map[int64]*Sale), nextID: 1}
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*Sale, error) {
	s, ok := f.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) GetByInvoice(ctx context.Context, invoiceNumber string) (*Sale, error) {
	for _, s := range f.sales {
		if s.InvoiceNumber == invoiceNumber {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	var out []Sale
	for _, s := range f.sales {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeStore) Create(ctx context.Context, s Sale) (*Sale, error) {
	id := f.nextID
	f.nextID++
	s.ID = id
	s.InvoiceNumber = fmt.Sprintf("INV-%s-%04d", s.SalesDate.Format("200601"), id)
	f.sales[id] = &s
	cp := s
	return &cp, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, updates map[string]any) error {
	s, ok := f.sales[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["coin_sales"]; ok {
		s.CoinSales = v.(float64)
	}
	if v, ok := updates["coin_adjustment"]; ok {
		s.CoinAdjustment = v.(float64)
	}
	if v, ok := updates["pay_to_clowee"]; ok {
		s.Settlement.PayToClowee = v.(float64)
	}
	if v, ok := updates["sales_amount"]; ok {
		s.Settlement.SalesAmount = v.(float64)
	}
	return nil
}

type fakeMachines struct {
	machines map[int64]*machine.Machine
}

func (f fakeMachines) Get(ctx context.Context, id int64) (*machine.Machine, error) {
	m, ok := f.machines[id]
	if !ok {
		return nil, machine.ErrNotFound
	}
	return m, nil
}

type fixedTerms struct {
	terms settlement.AgreementTerms
}

func (f fixedTerms) ResolveTerms(ctx context.Context, franchiseID int64, asOf time.Time) (settlement.AgreementTerms, error) {
	return f.terms, nil
}

type fakePayments struct {
	totals map[int64]float64
}

func (f fakePayments) TotalPaidBySale(ctx context.Context, saleIDs []int64) (map[int64]float64, error) {
	return f.totals, nil
}

func newTestService(store *fakeStore, payments fakePayments) *Service {
	machines := fakeMachines{machines: map[int64]*machine.Machine{
		1: {ID: 1, FranchiseID: 10, Name: "Claw A", Number: "M-001"},
	}}
	terms := fixedTerms{terms: settlement.AgreementTerms{
		CoinPrice:      5,
		DollPrice:      20,
		VATPercentage:  10,
		FranchiseShare: 60,
		CloweeShare:    40,
	}}
	return NewService(store, machines, terms, payments, nil, nil, nil, nil)
}

func TestCreateStoresSettlementFromAdjustedReading(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, fakePayments{totals: map[int64]float64{}})

	sale, err := svc.Create(context.Background(), CreateSaleRequest{
		MachineID:        1,
		SalesDate:        "2024-06-15",
		CoinSales:        1100,
		PrizeOutQuantity: 60,
		CoinAdjustment:   -100,
		PrizeAdjustment:  -10,
	}, 7)
	require.NoError(t, err)

	require.Equal(t, int64(10), sale.FranchiseID)
	require.Contains(t, sale.InvoiceNumber, "INV-202406-")
	// 1000 coins x 5, 50 prizes x 20, 10% VAT
	require.Equal(t, 5000.0, sale.Settlement.SalesAmount)
	require.Equal(t, 1000.0, sale.Settlement.PrizeCost)
	require.Equal(t, 500.0, sale.Settlement.VATAmount)
	require.Equal(t, 3500.0, sale.Settlement.NetProfit)
	require.Equal(t, 2400.0, sale.Settlement.PayToClowee)
}

func TestUpdateRejectedWhenSaleHasPayments(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, fakePayments{totals: map[int64]float64{}})

	sale, err := svc.Create(context.Background(), CreateSaleRequest{
		MachineID: 1, SalesDate: "2024-06-15", CoinSales: 1000, PrizeOutQuantity: 50,
	}, 7)
	require.NoError(t, err)

	paidSvc := newTestService(store, fakePayments{totals: map[int64]float64{sale.ID: 500}})
	coins := 900.0
	_, err = paidSvc.Update(context.Background(), sale.ID, UpdateSaleRequest{CoinSales: &coins}, 7)
	require.ErrorIs(t, err, ErrSalePaid)
}

func TestUpdateRecomputesSettlement(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, fakePayments{totals: map[int64]float64{}})

	sale, err := svc.Create(context.Background(), CreateSaleRequest{
		MachineID: 1, SalesDate: "2024-06-15", CoinSales: 1000, PrizeOutQuantity: 50,
	}, 7)
	require.NoError(t, err)

	coins := 2000.0
	updated, err := svc.Update(context.Background(), sale.ID, UpdateSaleRequest{CoinSales: &coins}, 7)
	require.NoError(t, err)
	require.Equal(t, 10000.0, updated.Settlement.SalesAmount)
}

func TestListDecoratesPaymentStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, fakePayments{totals: map[int64]float64{}})

	sale, err := svc.Create(context.Background(), CreateSaleRequest{
		MachineID: 1, SalesDate: "2024-06-15", CoinSales: 1000, PrizeOutQuantity: 50,
	}, 7)
	require.NoError(t, err)

	cases := []struct {
		name    string
		paid    float64
		status  settlement.PaymentStatus
		balance float64
	}{
		{"unpaid is due", 0, settlement.StatusDue, 2400},
		{"partial payment", 1000, settlement.StatusPartial, 1400},
		{"exact payment", 2400, settlement.StatusPaid, 0},
		{"over payment", 2500, settlement.StatusOverpaid, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(store, fakePayments{totals: map[int64]float64{sale.ID: tc.paid}})
			views, _, err := svc.List(context.Background(), ListSalesRequest{Page: 1, PerPage: 20})
			require.NoError(t, err)
			require.Len(t, views, 1)
			require.Equal(t, tc.status, views[0].Payment.Status)
			require.Equal(t, tc.balance, views[0].Payment.Balance)
		})
	}
}
