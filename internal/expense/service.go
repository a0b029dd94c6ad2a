package expense

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
	CreateCategory(ctx context.Context, c Category) (int64, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	Get(ctx context.Context, id int64) (*MachineExpense, error)
	Create(ctx context.Context, e MachineExpense) (int64, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req ListExpensesRequest) ([]MachineExpense, int, error)
}

// Service provides business logic for expense tracking.
type Service struct {
	store  Store
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs an expense service.
func NewService(store Store, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{store: store, audit: audit, logger: logger}
}

// CreateCategory registers a category.
func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest, createdBy int64) (*Category, error) {
	c := Category{Name: req.Name, Description: req.Description}
	id, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	c.ID = id
	s.recordAudit(ctx, createdBy, "expense.category.create", id)
	return &c, nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.store.ListCategories(ctx)
}

// Create books an expense against a category and a paying bank.
func (s *Service) Create(ctx context.Context, req CreateExpenseRequest, createdBy int64) (*MachineExpense, error) {
	if _, err := s.store.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	expenseDate, err := time.Parse(settlement.DateLayout, req.ExpenseDate)
	if err != nil {
		return nil, fmt.Errorf("parse expense_date: %w", err)
	}

	e := MachineExpense{
		CategoryID:  req.CategoryID,
		FranchiseID: req.FranchiseID,
		MachineID:   req.MachineID,
		BankID:      req.BankID,
		Amount:      req.Amount,
		ExpenseDate: expenseDate,
		Description: req.Description,
		CreatedBy:   createdBy,
	}
	id, err := s.store.Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	e.ID = id
	s.recordAudit(ctx, createdBy, "expense.create", id)
	return &e, nil
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.recordAudit(ctx, actorID, "expense.delete", id)
	return nil
}

// Get fetches an expense by id.
func (s *Service) Get(ctx context.Context, id int64) (*MachineExpense, error) {
	return s.store.Get(ctx, id)
}

// List returns expenses matching the filter.
func (s *Service) List(ctx context.Context, req ListExpensesRequest) ([]MachineExpense, int, error) {
	return s.store.List(ctx, req)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "expense",
		EntityID: fmt.Sprintf("%d", entityID),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}
