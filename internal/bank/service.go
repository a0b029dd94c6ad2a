package bank

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Store is the persistence boundary the service depends on.
type Store interface {
	Get(ctx context.Context, id int64) (*Bank, error)
	List(ctx context.Context, activeOnly bool) ([]Bank, error)
	Create(ctx context.Context, b Bank) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	AddMoneyLog(ctx context.Context, l MoneyLog) (int64, error)
	ListMoneyLogs(ctx context.Context, bankID int64, page, perPage int) ([]MoneyLog, int, error)
	Balance(ctx context.Context, bankID int64) (float64, error)
}

// Service provides business logic for bank accounts.
type Service struct {
	store  Store
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a bank service.
func NewService(store Store, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{store: store, audit: audit, logger: logger}
}

// Create registers a bank account.
func (s *Service) Create(ctx context.Context, req CreateBankRequest, createdBy int64) (*Bank, error) {
	b := Bank{
		Name:          req.Name,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		Branch:        req.Branch,
		IsActive:      true,
	}
	id, err := s.store.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create bank: %w", err)
	}
	b.ID = id
	s.recordAudit(ctx, createdBy, "bank.create", id)
	return &b, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateBankRequest, actorID int64) (*Bank, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.AccountName != nil {
		updates["account_name"] = *req.AccountName
	}
	if req.AccountNumber != nil {
		updates["account_number"] = *req.AccountNumber
	}
	if req.Branch != nil {
		updates["branch"] = *req.Branch
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.store.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update bank: %w", err)
		}
		s.recordAudit(ctx, actorID, "bank.update", id)
	}
	return s.store.Get(ctx, id)
}

// Get fetches a bank with its derived balance.
func (s *Service) Get(ctx context.Context, id int64) (*BankView, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	balance, err := s.store.Balance(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("derive balance: %w", err)
	}
	return &BankView{Bank: *b, Balance: balance}, nil
}

// List returns all banks, each with its derived balance.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]BankView, error) {
	banks, err := s.store.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]BankView, len(banks))
	for i, b := range banks {
		balance, err := s.store.Balance(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("derive balance for bank %d: %w", b.ID, err)
		}
		out[i] = BankView{Bank: b, Balance: balance}
	}
	return out, nil
}

// AddMoneyLog appends a manual deposit, withdrawal or adjustment.
func (s *Service) AddMoneyLog(ctx context.Context, bankID int64, req AddMoneyLogRequest, createdBy int64) (*MoneyLog, error) {
	if _, err := s.store.Get(ctx, bankID); err != nil {
		return nil, err
	}
	entryDate, err := time.Parse(settlement.DateLayout, req.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("parse entry_date: %w", err)
	}
	l := MoneyLog{
		BankID:      bankID,
		EntryType:   req.EntryType,
		Amount:      req.Amount,
		Description: req.Description,
		EntryDate:   entryDate,
		CreatedBy:   createdBy,
	}
	id, err := s.store.AddMoneyLog(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("add money log: %w", err)
	}
	l.ID = id
	s.recordAudit(ctx, createdBy, "bank.log.append", bankID)
	return &l, nil
}

// ListMoneyLogs returns a bank's log, newest first.
func (s *Service) ListMoneyLogs(ctx context.Context, bankID int64, page, perPage int) ([]MoneyLog, int, error) {
	if _, err := s.store.Get(ctx, bankID); err != nil {
		return nil, 0, err
	}
	return s.store.ListMoneyLogs(ctx, bankID, page, perPage)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, bankID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "bank",
		EntityID: fmt.Sprintf("%d", bankID),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}
