package payment

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clowee-erp/clowee-erp/internal/platform/httpx"
	"github.com/clowee-erp/clowee-erp/internal/rbac"
	"github.com/clowee-erp/clowee-erp/internal/sales"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Handler manages payment endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		rbac:     rbac,
	}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("payment.view"))
		r.Get("/payments", h.list)
		r.Get("/payments/{id}", h.show)
		r.Get("/sales/{id}/reconciliation", h.reconcile)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("payment.create"))
		r.Post("/payments", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("payment.delete"))
		r.Delete("/payments/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	req := ListPaymentsRequest{Page: page, PerPage: perPage}

	q := r.URL.Query()
	req.SaleID, _ = strconv.ParseInt(q.Get("sale_id"), 10, 64)
	req.FranchiseID, _ = strconv.ParseInt(q.Get("franchise_id"), 10, 64)
	req.BankID, _ = strconv.ParseInt(q.Get("bank_id"), 10, 64)
	for param, dst := range map[string]**time.Time{"from": &req.FromDate, "to": &req.ToDate} {
		if raw := q.Get(param); raw != "" {
			d, err := time.Parse(settlement.DateLayout, raw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", param+" must be YYYY-MM-DD")
				return
			}
			*dst = &d
		}
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment id")
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.Create(r.Context(), req, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment id")
		return
	}
	if err := h.service.Delete(r.Context(), id, actorID(r)); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return
	}
	rec, err := h.service.Reconcile(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, sales.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", "payment already recorded for this idempotency key")
	default:
		h.logger.Error("payment request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func actorID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
