package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clowee-erp/clowee-erp/internal/platform/httpx"
	"github.com/clowee-erp/clowee-erp/internal/rbac"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// Handler serves the dashboard report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("reports.view"))
		r.Get("/reports/monthly-trend", h.monthlyTrend)
		r.Get("/reports/franchise-profit", h.franchiseProfit)
		r.Get("/reports/machine-ranking", h.machineRanking)
		r.Get("/reports/payment-status", h.paymentStatus)
	})
}

func (h *Handler) monthlyTrend(w http.ResponseWriter, r *http.Request) {
	year := yearOrDefault(r.URL.Query().Get("year"), time.Now())
	rows, err := h.service.MonthlyTrend(r.Context(), year)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"year": year, "data": rows})
}

func (h *Handler) franchiseProfit(w http.ResponseWriter, r *http.Request) {
	fromDate, toDate, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	rows, err := h.service.FranchiseProfit(r.Context(), fromDate, toDate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) machineRanking(w http.ResponseWriter, r *http.Request) {
	fromDate, toDate, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	rows, err := h.service.MachineRanking(r.Context(), fromDate, toDate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.PaymentStatusBreakdown(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// rangeParams reads from/to, defaulting to the current month.
func (h *Handler) rangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now()
	fromDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	toDate := fromDate.AddDate(0, 1, -1)

	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		d, err := time.Parse(settlement.DateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		fromDate = d
	}
	if raw := q.Get("to"); raw != "" {
		d, err := time.Parse(settlement.DateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		toDate = d
	}
	return fromDate, toDate, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	h.logger.Error("report request failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
