package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/clowee-erp/clowee-erp/internal/auth"
	"github.com/clowee-erp/clowee-erp/internal/bank"
	"github.com/clowee-erp/clowee-erp/internal/expense"
	"github.com/clowee-erp/clowee-erp/internal/franchise"
	"github.com/clowee-erp/clowee-erp/internal/inventory"
	"github.com/clowee-erp/clowee-erp/internal/invoice"
	"github.com/clowee-erp/clowee-erp/internal/machine"
	"github.com/clowee-erp/clowee-erp/internal/payment"
	"github.com/clowee-erp/clowee-erp/internal/rbac"
	"github.com/clowee-erp/clowee-erp/internal/reports"
	"github.com/clowee-erp/clowee-erp/internal/roles"
	"github.com/clowee-erp/clowee-erp/internal/sales"
	"github.com/clowee-erp/clowee-erp/internal/shared"
	"github.com/clowee-erp/clowee-erp/internal/users"
	"github.com/clowee-erp/clowee-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler      *auth.Handler
	FranchiseHandler *franchise.Handler
	MachineHandler   *machine.Handler
	SalesHandler     *sales.Handler
	PaymentHandler   *payment.Handler
	BankHandler      *bank.Handler
	ExpenseHandler   *expense.Handler
	InventoryHandler *inventory.Handler
	InvoiceHandler   *invoice.Handler
	ReportsHandler   *reports.Handler
	UsersHandler     *users.Handler
	RolesHandler     *roles.Handler
	RBACHandler      *rbac.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router serving the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		if params.FranchiseHandler != nil {
			params.FranchiseHandler.MountRoutes(r)
		}
		if params.MachineHandler != nil {
			params.MachineHandler.MountRoutes(r)
		}
		if params.SalesHandler != nil {
			params.SalesHandler.MountRoutes(r)
		}
		if params.PaymentHandler != nil {
			params.PaymentHandler.MountRoutes(r)
		}
		if params.BankHandler != nil {
			params.BankHandler.MountRoutes(r)
		}
		if params.ExpenseHandler != nil {
			params.ExpenseHandler.MountRoutes(r)
		}
		if params.InventoryHandler != nil {
			params.InventoryHandler.MountRoutes(r)
		}
		if params.InvoiceHandler != nil {
			params.InvoiceHandler.MountRoutes(r)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(r)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.RolesHandler != nil {
			params.RolesHandler.MountRoutes(r)
		}
		if params.RBACHandler != nil {
			params.RBACHandler.MountRoutes(r)
		}
		if params.JobsHandler != nil {
			params.JobsHandler.MountRoutes(r)
		}
	})

	return r
}
