package rbac

import "time"

// Role represents a high-level permission grouping.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission represents an atomic capability such as "sales.create".
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UserRole links a user to a role.
type UserRole struct {
	UserID    int64     `json:"user_id"`
	RoleID    int64     `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalog lists every permission the route layer gates on. Seeding runs
// this through EnsurePermission so fresh databases grant nothing silently.
var Catalog = []Permission{
	{Name: "franchise.view", Description: "View franchises and agreements"},
	{Name: "franchise.create", Description: "Create franchises"},
	{Name: "franchise.edit", Description: "Edit franchises and append agreements"},
	{Name: "machine.view", Description: "View machines and counter readings"},
	{Name: "machine.create", Description: "Create machines"},
	{Name: "machine.edit", Description: "Edit machines"},
	{Name: "machine.reading.create", Description: "Record counter readings"},
	{Name: "sales.view", Description: "View sales"},
	{Name: "sales.create", Description: "Create sales"},
	{Name: "sales.edit", Description: "Edit unpaid sales"},
	{Name: "payment.view", Description: "View payments and reconciliation"},
	{Name: "payment.create", Description: "Record payments"},
	{Name: "payment.delete", Description: "Delete payments"},
	{Name: "bank.view", Description: "View banks and money logs"},
	{Name: "bank.create", Description: "Create banks"},
	{Name: "bank.edit", Description: "Edit banks and post money logs"},
	{Name: "expense.view", Description: "View expenses and categories"},
	{Name: "expense.create", Description: "Record expenses"},
	{Name: "expense.delete", Description: "Delete expenses"},
	{Name: "inventory.view", Description: "View stock items and movements"},
	{Name: "inventory.edit", Description: "Post stock movements and stock-outs"},
	{Name: "invoice.view", Description: "View and export invoices"},
	{Name: "reports.view", Description: "View dashboard reports"},
	{Name: "users.view", Description: "View user accounts"},
	{Name: "users.create", Description: "Create user accounts"},
	{Name: "users.edit", Description: "Edit user accounts and role assignments"},
	{Name: "roles.view", Description: "View roles"},
	{Name: "roles.edit", Description: "Manage roles and their permissions"},
	{Name: "rbac.view", Description: "View the permission catalog"},
	{Name: "rbac.edit", Description: "Assign roles to users"},
}
