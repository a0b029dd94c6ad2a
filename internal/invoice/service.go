package invoice

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clowee-erp/clowee-erp/internal/currency"
	"github.com/clowee-erp/clowee-erp/internal/franchise"
	"github.com/clowee-erp/clowee-erp/internal/machine"
	"github.com/clowee-erp/clowee-erp/internal/payment"
	"github.com/clowee-erp/clowee-erp/internal/sales"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// SaleSource provides the sale rows invoices are built from.
type SaleSource interface {
	Get(ctx context.Context, id int64) (*sales.Sale, error)
	InputsForRange(ctx context.Context, franchiseID int64, fromDate, toDate time.Time) ([]settlement.SaleInput, error)
}

// FranchiseSource provides franchise identity and agreement history.
type FranchiseSource interface {
	Get(ctx context.Context, id int64) (*franchise.Franchise, error)
	FranchiseBaseTerms(ctx context.Context, franchiseID int64) (settlement.AgreementTerms, error)
	AgreementsByFranchise(ctx context.Context, franchiseID int64) ([]settlement.Agreement, error)
}

// MachineSource provides machine identity for breakdown rows.
type MachineSource interface {
	Get(ctx context.Context, id int64) (*machine.Machine, error)
	ListByFranchise(ctx context.Context, franchiseID int64, activeOnly bool) ([]machine.Machine, error)
}

// PaymentSource provides recorded payments for reconciliation lines.
type PaymentSource interface {
	ListBySale(ctx context.Context, saleID int64) ([]payment.MachinePayment, error)
}

// Service builds render-ready invoice view models.
type Service struct {
	sales      SaleSource
	franchises FranchiseSource
	machines   MachineSource
	payments   PaymentSource
	money      *currency.Formatter
}

// NewService constructs an invoice service.
func NewService(saleSource SaleSource, franchiseSource FranchiseSource, machineSource MachineSource, paymentSource PaymentSource, formatter *currency.Formatter) *Service {
	return &Service{
		sales:      saleSource,
		franchises: franchiseSource,
		machines:   machineSource,
		payments:   paymentSource,
		money:      formatter,
	}
}

// BuildSale assembles the invoice for one sale.
func (s *Service) BuildSale(ctx context.Context, saleID int64) (*SaleInvoice, error) {
	sale, err := s.sales.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}

	var (
		fr       *franchise.Franchise
		m        *machine.Machine
		payments []payment.MachinePayment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fr, err = s.franchises.Get(gctx, sale.FranchiseID)
		return err
	})
	g.Go(func() error {
		var err error
		m, err = s.machines.Get(gctx, sale.MachineID)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.payments.ListBySale(gctx, saleID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load invoice context: %w", err)
	}

	inputs := make([]settlement.Payment, len(payments))
	for i, p := range payments {
		inputs[i] = settlement.Payment{Amount: p.Amount}
	}
	rec := settlement.Reconcile(sale.Settlement.PayToClowee, inputs)

	stl := sale.Settlement
	lines := []LineItem{
		s.line("Sales Amount", stl.SalesAmount),
		s.line("VAT", stl.VATAmount),
	}
	// Net Sales just repeats Sales Amount when no VAT applies.
	if stl.VATAmount != 0 {
		lines = append(lines, s.line("Net Sales", stl.NetSalesAmount))
	}
	lines = append(lines,
		s.line("Prize Cost", stl.PrizeCost),
		s.line("Net Profit", stl.NetProfit),
		s.line("Maintenance", stl.MaintenanceAmount),
		s.line("Franchise Profit", stl.FranchiseProfit),
		s.line("Clowee Profit", stl.CloweeProfit),
	)
	return &SaleInvoice{
		InvoiceNumber:    sale.InvoiceNumber,
		IssuedAt:         time.Now(),
		SalesDate:        sale.SalesDate.Format(settlement.DateLayout),
		FranchiseName:    fr.Name,
		MachineName:      m.Name,
		MachineNumber:    m.Number,
		CoinSales:        sale.CoinSales + sale.CoinAdjustment,
		PrizeOutQuantity: sale.PrizeOutQuantity + sale.PrizeAdjustment,
		Lines:            lines,
		PayToClowee:      s.line("Pay to Clowee", stl.PayToClowee),
		Payment:          rec,
		BalanceDue:       s.money.WithSymbol(rec.Balance),
	}, nil
}

// BuildConsolidated assembles the franchise invoice over [fromDate, toDate].
// The franchise record, its machines, its sale rows and its agreement
// history are fetched concurrently; the fold itself is pure.
func (s *Service) BuildConsolidated(ctx context.Context, franchiseID int64, fromDate, toDate time.Time) (*ConsolidatedInvoice, error) {
	var (
		fr         *franchise.Franchise
		machines   []machine.Machine
		inputs     []settlement.SaleInput
		base       settlement.AgreementTerms
		agreements []settlement.Agreement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fr, err = s.franchises.Get(gctx, franchiseID)
		return err
	})
	g.Go(func() error {
		var err error
		machines, err = s.machines.ListByFranchise(gctx, franchiseID, false)
		return err
	})
	g.Go(func() error {
		var err error
		inputs, err = s.sales.InputsForRange(gctx, franchiseID, fromDate, toDate)
		return err
	})
	g.Go(func() error {
		var err error
		base, err = s.franchises.FranchiseBaseTerms(gctx, franchiseID)
		return err
	})
	g.Go(func() error {
		var err error
		agreements, err = s.franchises.AgreementsByFranchise(gctx, franchiseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load consolidation context: %w", err)
	}

	refs := make([]settlement.MachineRef, len(machines))
	names := make(map[int64]string, len(machines))
	for i, m := range machines {
		refs[i] = settlement.MachineRef{ID: m.ID, Name: m.Name}
		names[m.ID] = m.Name + " (" + m.Number + ")"
	}

	agg := settlement.Aggregate(franchiseID, refs, inputs, base, agreements, fromDate, toDate)

	rows := make([]MachineRow, len(agg.Machines))
	for i, b := range agg.Machines {
		rows[i] = MachineRow{
			MachineName:      names[b.Machine.ID],
			SaleCount:        b.SaleCount,
			CoinSales:        b.CoinSales,
			PrizeOutQuantity: b.PrizeOutQuantity,
			SalesAmount:      s.money.Amount(b.SalesAmount),
			PrizeCost:        s.money.Amount(b.PrizeCost),
			VATAmount:        s.money.Amount(b.VATAmount),
			NetProfit:        s.money.Amount(b.NetProfit),
			FranchiseProfit:  s.money.Amount(b.FranchiseProfit),
			CloweeProfit:     s.money.Amount(b.CloweeProfit),
			PayToClowee:      s.money.Amount(b.PayToClowee),
		}
	}

	return &ConsolidatedInvoice{
		FranchiseName: fr.Name,
		FromDate:      fromDate.Format(settlement.DateLayout),
		ToDate:        toDate.Format(settlement.DateLayout),
		IssuedAt:      time.Now(),
		Rows:          rows,
		Totals: []LineItem{
			s.line("Total Sales", agg.TotalSalesAmount),
			s.line("Total VAT", agg.TotalVATAmount),
			s.line("Total Prize Cost", agg.TotalPrizeCost),
			s.line("Total Net Profit", agg.TotalNetProfit),
			s.line("Total Maintenance", agg.TotalMaintenanceAmount),
			s.line("Total Franchise Profit", agg.TotalFranchiseProfit),
			s.line("Total Clowee Profit", agg.TotalCloweeProfit),
		},
		TotalPayToClowee: s.line("Total Pay to Clowee", agg.TotalPayToClowee),
		Raw:              agg,
	}, nil
}

func (s *Service) line(label string, v float64) LineItem {
	return LineItem{Label: label, Value: v, Pretty: s.money.WithSymbol(v)}
}
