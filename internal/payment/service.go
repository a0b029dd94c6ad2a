package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clowee-erp/clowee-erp/internal/sales"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Store is the persistence boundary the service depends on.
type Store interface {
	Get(ctx context.Context, id int64) (*MachinePayment, error)
	Create(ctx context.Context, p MachinePayment) (*MachinePayment, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req ListPaymentsRequest) ([]MachinePayment, int, error)
	ListBySale(ctx context.Context, saleID int64) ([]MachinePayment, error)
}

// SaleSource looks up the sale a payment settles.
type SaleSource interface {
	Get(ctx context.Context, id int64) (*sales.Sale, error)
}

// Invalidator bumps derived caches after a mutation.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// PrerenderQueue schedules background invoice PDF renders. The invoice embeds
// the sale's payment status, so every payment mutation must refresh it.
type PrerenderQueue interface {
	EnqueueInvoicePrerender(ctx context.Context, saleID int64) (*asynq.TaskInfo, error)
}

// SaleReconciliation is one sale's payment state: the reconciliation verdict
// plus the payments that produced it.
type SaleReconciliation struct {
	SaleID        int64                     `json:"sale_id"`
	InvoiceNumber string                    `json:"invoice_number"`
	PayToClowee   float64                   `json:"pay_to_clowee"`
	Result        settlement.Reconciliation `json:"result"`
	Payments      []MachinePayment          `json:"payments"`
}

// Service provides business logic for machine payments.
type Service struct {
	store  Store
	sales  SaleSource
	cache  Invalidator
	queue  PrerenderQueue
	idem   *shared.IdempotencyStore
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a payment service.
func NewService(store Store, saleSource SaleSource, cache Invalidator, queue PrerenderQueue, idem *shared.IdempotencyStore, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		sales:  saleSource,
		cache:  cache,
		queue:  queue,
		idem:   idem,
		audit:  audit,
		logger: logger,
	}
}

// Create records a payment against a sale. The bank money-log entry is
// written by the repository in the same transaction.
func (s *Service) Create(ctx context.Context, req CreatePaymentRequest, createdBy int64) (*MachinePayment, error) {
	if req.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, req.IdempotencyKey, "payment"); err != nil {
			return nil, err
		}
	}
	sale, err := s.sales.Get(ctx, req.SaleID)
	if err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}
	paymentDate, err := time.Parse(settlement.DateLayout, req.PaymentDate)
	if err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, fmt.Errorf("parse payment_date: %w", err)
	}

	p := MachinePayment{
		SaleID:          sale.ID,
		FranchiseID:     sale.FranchiseID,
		BankID:          req.BankID,
		InvoiceNumber:   sale.InvoiceNumber,
		Amount:          req.Amount,
		PaymentDate:     paymentDate,
		Method:          req.Method,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		CreatedBy:       createdBy,
	}
	created, err := s.store.Create(ctx, p)
	if err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.recordAudit(ctx, createdBy, "payment.create", created.ID)
	s.bumpCache(ctx)
	s.schedulePrerender(ctx, sale.ID)
	return created, nil
}

// Delete reverses a payment and its bank log entry.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	s.recordAudit(ctx, actorID, "payment.delete", id)
	s.bumpCache(ctx)
	s.schedulePrerender(ctx, p.SaleID)
	return nil
}

// Get fetches a payment by id.
func (s *Service) Get(ctx context.Context, id int64) (*MachinePayment, error) {
	return s.store.Get(ctx, id)
}

// List returns payments matching the filter.
func (s *Service) List(ctx context.Context, req ListPaymentsRequest) ([]MachinePayment, int, error) {
	return s.store.List(ctx, req)
}

// Reconcile compares a sale's pay-to-Clowee figure against its recorded
// payments.
func (s *Service) Reconcile(ctx context.Context, saleID int64) (*SaleReconciliation, error) {
	sale, err := s.sales.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	inputs := make([]settlement.Payment, len(payments))
	for i, p := range payments {
		inputs[i] = settlement.Payment{Amount: p.Amount}
	}

	return &SaleReconciliation{
		SaleID:        sale.ID,
		InvoiceNumber: sale.InvoiceNumber,
		PayToClowee:   sale.Settlement.PayToClowee,
		Result:        settlement.Reconcile(sale.Settlement.PayToClowee, inputs),
		Payments:      payments,
	}, nil
}

// releaseKey frees an idempotency key when the submission it guarded failed,
// so the client can retry with the same key.
func (s *Service) releaseKey(ctx context.Context, key string) {
	if key == "" || s.idem == nil {
		return
	}
	if err := s.idem.Delete(ctx, key); err != nil && s.logger != nil {
		s.logger.Warn("idempotency key release failed", slog.Any("error", err))
	}
}

// schedulePrerender refreshes the sale's cached invoice PDF after its payment
// state changed. Best effort; the download endpoint renders live on a miss.
func (s *Service) schedulePrerender(ctx context.Context, saleID int64) {
	if s.queue == nil {
		return
	}
	if _, err := s.queue.EnqueueInvoicePrerender(ctx, saleID); err != nil && s.logger != nil {
		s.logger.Warn("invoice prerender enqueue failed", slog.Any("error", err), slog.Int64("sale_id", saleID))
	}
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, paymentID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "payment",
		EntityID: fmt.Sprintf("%d", paymentID),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}
