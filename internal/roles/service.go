package roles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Store is the persistence boundary the service depends on.
type Store interface {
	List(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id int64) (*Role, error)
	Create(ctx context.Context, name, description string) (*Role, error)
	Update(ctx context.Context, id int64, name, description string) (*Role, error)
	Delete(ctx context.Context, id int64) error
}

// Service provides business logic for role management.
type Service struct {
	store  Store
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a roles service.
func NewService(store Store, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{store: store, audit: audit, logger: logger}
}

// List returns all roles ordered by name.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.store.List(ctx)
}

// Get fetches a role by id.
func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	return s.store.Get(ctx, id)
}

// Create registers a role.
func (s *Service) Create(ctx context.Context, req CreateRoleRequest, actorID int64) (*Role, error) {
	role, err := s.store.Create(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.recordAudit(ctx, actorID, "role.create", role.ID)
	return role, nil
}

// Update modifies a role.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRoleRequest, actorID int64) (*Role, error) {
	role, err := s.store.Update(ctx, id, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.recordAudit(ctx, actorID, "role.update", id)
	return role, nil
}

// Delete removes a role and, via cascade, its assignments.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "role.delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "role",
		EntityID: fmt.Sprintf("%d", entityID),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}
