package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clowee-erp/clowee-erp/internal/machine"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// ErrSalePaid rejects edits to a sale that payments have been recorded
// against. Correcting a paid sale means reversing the payments first.
var ErrSalePaid = errors.New("sales: sale has payments recorded against it")

// Store is the persistence boundary the service depends on.
type Store interface {
	Get(ctx context.Context, id int64) (*Sale, error)
	GetByInvoice(ctx context.Context, invoiceNumber string) (*Sale, error)
	List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error)
	Create(ctx context.Context, s Sale) (*Sale, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
}

// MachineSource looks up the machine a sale is recorded for.
type MachineSource interface {
	Get(ctx context.Context, id int64) (*machine.Machine, error)
}

// TermsResolver resolves effective agreement terms for a franchise.
type TermsResolver interface {
	ResolveTerms(ctx context.Context, franchiseID int64, asOf time.Time) (settlement.AgreementTerms, error)
}

// PaymentReader reports how much has been paid against each sale.
type PaymentReader interface {
	TotalPaidBySale(ctx context.Context, saleIDs []int64) (map[int64]float64, error)
}

// Invalidator bumps derived caches after a mutation.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// PrerenderQueue schedules background invoice PDF renders.
type PrerenderQueue interface {
	EnqueueInvoicePrerender(ctx context.Context, saleID int64) (*asynq.TaskInfo, error)
}

// Service provides business logic for machine sales.
type Service struct {
	store    Store
	machines MachineSource
	terms    TermsResolver
	payments PaymentReader
	cache    Invalidator
	queue    PrerenderQueue
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

// NewService constructs a sales service.
func NewService(store Store, machines MachineSource, terms TermsResolver, payments PaymentReader, cache Invalidator, queue PrerenderQueue, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		machines: machines,
		terms:    terms,
		payments: payments,
		cache:    cache,
		queue:    queue,
		audit:    audit,
		logger:   logger,
	}
}

// Create records a sale from a reading delta. The settlement is computed
// once, under the terms in effect at the sales date, and stored with the row.
func (s *Service) Create(ctx context.Context, req CreateSaleRequest, createdBy int64) (*Sale, error) {
	m, err := s.machines.Get(ctx, req.MachineID)
	if err != nil {
		return nil, err
	}
	salesDate, err := time.Parse(settlement.DateLayout, req.SalesDate)
	if err != nil {
		return nil, fmt.Errorf("parse sales_date: %w", err)
	}

	sale := Sale{
		MachineID:        m.ID,
		FranchiseID:      m.FranchiseID,
		SalesDate:        salesDate,
		CoinSales:        req.CoinSales,
		PrizeOutQuantity: req.PrizeOutQuantity,
		CoinAdjustment:   req.CoinAdjustment,
		PrizeAdjustment:  req.PrizeAdjustment,
		AdjustmentNotes:  req.AdjustmentNotes,
		CreatedBy:        createdBy,
	}

	terms, err := s.terms.ResolveTerms(ctx, m.FranchiseID, salesDate)
	if err != nil {
		return nil, fmt.Errorf("resolve terms: %w", err)
	}
	sale.Settlement = settlement.Calculate(sale.Reading(), terms)

	created, err := s.store.Create(ctx, sale)
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	s.recordAudit(ctx, createdBy, "sale.create", created.ID)
	s.bumpCache(ctx)
	s.schedulePrerender(ctx, created.ID)
	return created, nil
}

// Update corrects a sale and reruns its settlement. Sales with payments are
// immutable.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSaleRequest, actorID int64) (*Sale, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	paid, err := s.payments.TotalPaidBySale(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	if paid[id] != 0 {
		return nil, fmt.Errorf("%w: invoice %s", ErrSalePaid, existing.InvoiceNumber)
	}

	next := *existing
	updates := make(map[string]any)
	if req.SalesDate != nil {
		d, err := time.Parse(settlement.DateLayout, *req.SalesDate)
		if err != nil {
			return nil, fmt.Errorf("parse sales_date: %w", err)
		}
		next.SalesDate = d
		updates["sales_date"] = d
	}
	if req.CoinSales != nil {
		next.CoinSales = *req.CoinSales
		updates["coin_sales"] = *req.CoinSales
	}
	if req.PrizeOutQuantity != nil {
		next.PrizeOutQuantity = *req.PrizeOutQuantity
		updates["prize_out_quantity"] = *req.PrizeOutQuantity
	}
	if req.CoinAdjustment != nil {
		next.CoinAdjustment = *req.CoinAdjustment
		updates["coin_adjustment"] = *req.CoinAdjustment
	}
	if req.PrizeAdjustment != nil {
		next.PrizeAdjustment = *req.PrizeAdjustment
		updates["prize_adjustment"] = *req.PrizeAdjustment
	}
	if req.AdjustmentNotes != nil {
		next.AdjustmentNotes = req.AdjustmentNotes
		updates["adjustment_notes"] = *req.AdjustmentNotes
	}
	if len(updates) == 0 {
		return existing, nil
	}

	terms, err := s.terms.ResolveTerms(ctx, existing.FranchiseID, next.SalesDate)
	if err != nil {
		return nil, fmt.Errorf("resolve terms: %w", err)
	}
	next.Settlement = settlement.Calculate(next.Reading(), terms)
	updates["sales_amount"] = next.Settlement.SalesAmount
	updates["vat_amount"] = next.Settlement.VATAmount
	updates["net_sales_amount"] = next.Settlement.NetSalesAmount
	updates["prize_cost"] = next.Settlement.PrizeCost
	updates["net_profit"] = next.Settlement.NetProfit
	updates["maintenance_amount"] = next.Settlement.MaintenanceAmount
	updates["franchise_profit"] = next.Settlement.FranchiseProfit
	updates["clowee_profit"] = next.Settlement.CloweeProfit
	updates["pay_to_clowee"] = next.Settlement.PayToClowee

	if err := s.store.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}

	s.recordAudit(ctx, actorID, "sale.update", id)
	s.bumpCache(ctx)
	s.schedulePrerender(ctx, id)
	return s.store.Get(ctx, id)
}

// Get fetches a sale with its reconciled payment state.
func (s *Service) Get(ctx context.Context, id int64) (*SaleView, error) {
	sale, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, []Sale{*sale})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns sales matching the filter, each decorated with its payment
// status.
func (s *Service) List(ctx context.Context, req ListSalesRequest) ([]SaleView, int, error) {
	rows, total, err := s.store.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *Service) decorate(ctx context.Context, rows []Sale) ([]SaleView, error) {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	paid, err := s.payments.TotalPaidBySale(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}

	views := make([]SaleView, len(rows))
	for i, row := range rows {
		var payments []settlement.Payment
		if total := paid[row.ID]; total != 0 {
			payments = []settlement.Payment{{Amount: total}}
		}
		views[i] = SaleView{
			Sale:    row,
			Payment: settlement.Reconcile(row.Settlement.PayToClowee, payments),
		}
	}
	return views, nil
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}

// schedulePrerender queues the invoice PDF render. Best effort; the download
// endpoint renders on demand when no prerendered copy exists.
func (s *Service) schedulePrerender(ctx context.Context, saleID int64) {
	if s.queue == nil {
		return
	}
	if _, err := s.queue.EnqueueInvoicePrerender(ctx, saleID); err != nil && s.logger != nil {
		s.logger.Warn("invoice prerender enqueue failed", slog.Any("error", err), slog.Int64("sale_id", saleID))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, saleID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "sale",
		EntityID: fmt.Sprintf("%d", saleID),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}
