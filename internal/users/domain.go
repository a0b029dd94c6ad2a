package users

import "time"

// User represents a user account for management. The password hash never
// leaves the service layer.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateUserRequest carries the payload for creating a user.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateUserRequest carries the payload for a partial user update.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	IsActive *bool   `json:"is_active"`
}
