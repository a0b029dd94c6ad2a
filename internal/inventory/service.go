package inventory

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
	GetItem(ctx context.Context, id int64) (*StockItem, error)
	ListItems(ctx context.Context, activeOnly bool) ([]StockItem, error)
	CreateItem(ctx context.Context, it StockItem) (int64, error)
	UpdateItem(ctx context.Context, id int64, updates map[string]any) error
	AddMovement(ctx context.Context, m Movement) (int64, error)
	ListMovements(ctx context.Context, itemID int64, page, perPage int) ([]Movement, int, error)
	OnHand(ctx context.Context, itemID int64) (float64, error)
	RecordStockOut(ctx context.Context, e StockOutEntry, createdBy int64) (*StockOutEntry, error)
	ListStockOuts(ctx context.Context, machineID int64) ([]StockOutEntry, error)
}

// Service provides business logic for prize stock.
type Service struct {
	store  Store
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs an inventory service.
func NewService(store Store, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{store: store, audit: audit, logger: logger}
}

// CreateItem registers a stock item.
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest, createdBy int64) (*StockItem, error) {
	it := StockItem{Name: req.Name, SKU: req.SKU, UnitCost: req.UnitCost, IsActive: true}
	id, err := s.store.CreateItem(ctx, it)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	it.ID = id
	s.recordAudit(ctx, createdBy, "inventory.item.create", id)
	return &it, nil
}

// UpdateItem applies a partial update.
func (s *Service) UpdateItem(ctx context.Context, id int64, req UpdateItemRequest, actorID int64) (*StockItem, error) {
	if _, err := s.store.GetItem(ctx, id); err != nil {
		return nil, err
	}
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.UnitCost != nil {
		updates["unit_cost"] = *req.UnitCost
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.store.UpdateItem(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update item: %w", err)
		}
		s.recordAudit(ctx, actorID, "inventory.item.update", id)
	}
	return s.store.GetItem(ctx, id)
}

// GetItem fetches an item with its derived on-hand quantity.
func (s *Service) GetItem(ctx context.Context, id int64) (*StockItemView, error) {
	it, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	onHand, err := s.store.OnHand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("derive on-hand: %w", err)
	}
	return &StockItemView{StockItem: *it, OnHand: onHand}, nil
}

// ListItems returns all items with derived on-hand quantities.
func (s *Service) ListItems(ctx context.Context, activeOnly bool) ([]StockItemView, error) {
	items, err := s.store.ListItems(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]StockItemView, len(items))
	for i, it := range items {
		onHand, err := s.store.OnHand(ctx, it.ID)
		if err != nil {
			return nil, fmt.Errorf("derive on-hand for item %d: %w", it.ID, err)
		}
		out[i] = StockItemView{StockItem: it, OnHand: onHand}
	}
	return out, nil
}

// AddMovement posts a manual stock movement. Out movements are stored with
// negative quantities regardless of the sign the caller sent.
func (s *Service) AddMovement(ctx context.Context, itemID int64, req AddMovementRequest, createdBy int64) (*Movement, error) {
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	movementDate, err := time.Parse(settlement.DateLayout, req.MovementDate)
	if err != nil {
		return nil, fmt.Errorf("parse movement_date: %w", err)
	}

	qty := req.Quantity
	switch req.MovementType {
	case MovementIn:
		if qty < 0 {
			qty = -qty
		}
	case MovementOut:
		if qty > 0 {
			qty = -qty
		}
	}

	m := Movement{
		ItemID:       itemID,
		MovementType: req.MovementType,
		Quantity:     qty,
		Reference:    req.Reference,
		MovementDate: movementDate,
		CreatedBy:    createdBy,
	}
	id, err := s.store.AddMovement(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("add movement: %w", err)
	}
	m.ID = id
	s.recordAudit(ctx, createdBy, "inventory.movement.add", itemID)
	return &m, nil
}

// ListMovements returns an item's movement history.
func (s *Service) ListMovements(ctx context.Context, itemID int64, page, perPage int) ([]Movement, int, error) {
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return nil, 0, err
	}
	return s.store.ListMovements(ctx, itemID, page, perPage)
}

// RecordStockOut links a sale's prize-out to a stock item and posts the
// outbound movement.
func (s *Service) RecordStockOut(ctx context.Context, req RecordStockOutRequest, createdBy int64) (*StockOutEntry, error) {
	if _, err := s.store.GetItem(ctx, req.ItemID); err != nil {
		return nil, err
	}
	outDate, err := time.Parse(settlement.DateLayout, req.OutDate)
	if err != nil {
		return nil, fmt.Errorf("parse out_date: %w", err)
	}
	entry := StockOutEntry{
		ItemID:    req.ItemID,
		MachineID: req.MachineID,
		SaleID:    req.SaleID,
		Quantity:  req.Quantity,
		OutDate:   outDate,
	}
	created, err := s.store.RecordStockOut(ctx, entry, createdBy)
	if err != nil {
		return nil, fmt.Errorf("record stock out: %w", err)
	}
	s.recordAudit(ctx, createdBy, "inventory.stockout.record", req.ItemID)
	return created, nil
}

// ListStockOuts returns one machine's stock-out history.
func (s *Service) ListStockOuts(ctx context.Context, machineID int64) ([]StockOutEntry, error) {
	return s.store.ListStockOuts(ctx, machineID)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "inventory",
		EntityID: fmt.Sprintf("%d", entityID),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}
