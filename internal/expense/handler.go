package expense

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
	"github.com/clowee-erp/clowee-erp/internal/settlement"
	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Handler manages expense endpoints.
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

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("expense.view"))
		r.Get("/expense-categories", h.listCategories)
		r.Get("/expenses", h.list)
		r.Get("/expenses/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("expense.create"))
		r.Post("/expense-categories", h.createCategory)
		r.Post("/expenses", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("expense.delete"))
		r.Delete("/expenses/{id}", h.remove)
	})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": categories})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.CreateCategory(r.Context(), req, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	req := ListExpensesRequest{Page: page, PerPage: perPage}

	q := r.URL.Query()
	req.CategoryID, _ = strconv.ParseInt(q.Get("category_id"), 10, 64)
	req.FranchiseID, _ = strconv.ParseInt(q.Get("franchise_id"), 10, 64)
	req.MachineID, _ = strconv.ParseInt(q.Get("machine_id"), 10, 64)
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid expense id")
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	e, err := h.service.Create(r.Context(), req, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid expense id")
		return
	}
	if err := h.service.Delete(r.Context(), id, actorID(r)); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateCategory):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("expense request failed", slog.Any("error", err))
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
