package payment

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/clowee-erp/clowee-erp/internal/sales"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

type fakeStore struct {
	payments map[int64]*MachinePayment
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{payments: make(map[int64]*MachinePayment), nextID: 1}
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*MachinePayment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Create(ctx context.Context, p MachinePayment) (*MachinePayment, error) {
	id := f.nextID
	f.nextID++
	p.ID = id
	f.payments[id] = &p
	cp := p
	return &cp, nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.payments[id]; !ok {
		return ErrNotFound
	}
	delete(f.payments, id)
	return nil
}

func (f *fakeStore) List(ctx context.Context, req ListPaymentsRequest) ([]MachinePayment, int, error) {
	var out []MachinePayment
	for _, p := range f.payments {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeStore) ListBySale(ctx context.Context, saleID int64) ([]MachinePayment, error) {
	var out []MachinePayment
	for _, p := range f.payments {
		if p.SaleID == saleID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeQueue struct {
	saleIDs []int64
}

func (f *fakeQueue) EnqueueInvoicePrerender(ctx context.Context, saleID int64) (*asynq.TaskInfo, error) {
	f.saleIDs = append(f.saleIDs, saleID)
	return nil, nil
}

type fakeSales struct {
	sale *sales.Sale
}

func (f fakeSales) Get(ctx context.Context, id int64) (*sales.Sale, error) {
	if f.sale == nil || f.sale.ID != id {
		return nil, sales.ErrNotFound
	}
	cp := *f.sale
	return &cp, nil
}

func testSale() *sales.Sale {
	return &sales.Sale{
		ID:            1,
		MachineID:     1,
		FranchiseID:   10,
		InvoiceNumber: "INV-202406-0001",
		SalesDate:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Settlement:    settlement.Settlement{PayToClowee: 2400},
	}
}

func TestCreateFillsInvoiceFromSale(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fakeSales{sale: testSale()}, nil, nil, nil, nil, nil)

	p, err := svc.Create(context.Background(), CreatePaymentRequest{
		SaleID:      1,
		BankID:      3,
		Amount:      1000,
		PaymentDate: "2024-06-20",
		Method:      MethodBankTransfer,
	}, 7)
	require.NoError(t, err)
	require.Equal(t, "INV-202406-0001", p.InvoiceNumber)
	require.Equal(t, int64(10), p.FranchiseID)
}

func TestCreateUnknownSale(t *testing.T) {
	svc := NewService(newFakeStore(), fakeSales{}, nil, nil, nil, nil, nil)
	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		SaleID: 99, BankID: 3, Amount: 100, PaymentDate: "2024-06-20", Method: MethodCash,
	}, 7)
	require.ErrorIs(t, err, sales.ErrNotFound)
}

func TestReconcileAccumulatesPayments(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fakeSales{sale: testSale()}, nil, nil, nil, nil, nil)

	rec, err := svc.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, settlement.StatusDue, rec.Result.Status)
	require.Equal(t, 2400.0, rec.Result.Balance)

	_, err = svc.Create(context.Background(), CreatePaymentRequest{
		SaleID: 1, BankID: 3, Amount: 1000, PaymentDate: "2024-06-20", Method: MethodCash,
	}, 7)
	require.NoError(t, err)

	rec, err = svc.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, settlement.StatusPartial, rec.Result.Status)
	require.Equal(t, 1400.0, rec.Result.Balance)
	require.Len(t, rec.Payments, 1)

	_, err = svc.Create(context.Background(), CreatePaymentRequest{
		SaleID: 1, BankID: 3, Amount: 1400, PaymentDate: "2024-06-25", Method: MethodCash,
	}, 7)
	require.NoError(t, err)

	rec, err = svc.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, settlement.StatusPaid, rec.Result.Status)
	require.Equal(t, 0.0, rec.Result.Balance)
}

func TestPaymentMutationsRefreshInvoiceRender(t *testing.T) {
	store := newFakeStore()
	queue := &fakeQueue{}
	svc := NewService(store, fakeSales{sale: testSale()}, nil, queue, nil, nil, nil)

	p, err := svc.Create(context.Background(), CreatePaymentRequest{
		SaleID: 1, BankID: 3, Amount: 2400, PaymentDate: "2024-06-20", Method: MethodCash,
	}, 7)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, queue.saleIDs, "recording a payment re-renders the invoice")

	require.NoError(t, svc.Delete(context.Background(), p.ID, 7))
	require.Equal(t, []int64{1, 1}, queue.saleIDs, "deleting a payment re-renders the invoice")
}

func TestDeleteReversesPayment(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fakeSales{sale: testSale()}, nil, nil, nil, nil, nil)

	p, err := svc.Create(context.Background(), CreatePaymentRequest{
		SaleID: 1, BankID: 3, Amount: 2400, PaymentDate: "2024-06-20", Method: MethodCash,
	}, 7)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID, 7))

	rec, err := svc.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, settlement.StatusDue, rec.Result.Status)
}
