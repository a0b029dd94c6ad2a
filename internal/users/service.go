package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Store is the persistence boundary the service depends on.
type Store interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u User) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
}

// Service provides business logic for user management.
type Service struct {
	store  Store
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a users service.
func NewService(store Store, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{store: store, audit: audit, logger: logger}
}

// List returns all users ordered by email.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.store.Get(ctx, id)
}

// Create registers a user with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, actorID int64) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		IsActive:     true,
		PasswordHash: string(hash),
	}
	id, err := s.store.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.ID = id

	s.recordAudit(ctx, actorID, "user.create", id)
	return &u, nil
}

// Update applies a partial update, rehashing the password when provided.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest, actorID int64) (*User, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = string(hash)
	}
	if err := s.store.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.recordAudit(ctx, actorID, "user.update", id)
	return s.store.Get(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: fmt.Sprintf("%d", entityID),
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}
