package bank

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clowee-erp/clowee-erp/internal/platform/httpx"
	"github.com/clowee-erp/clowee-erp/internal/rbac"
	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Handler manages bank endpoints.
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

// MountRoutes registers bank routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("bank.view"))
		r.Get("/banks", h.list)
		r.Get("/banks/{id}", h.show)
		r.Get("/banks/{id}/logs", h.listLogs)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("bank.create"))
		r.Post("/banks", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("bank.edit"))
		r.Patch("/banks/{id}", h.update)
		r.Post("/banks/{id}/logs", h.addLog)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	banks, err := h.service.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": banks})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bank id")
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateBankRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	b, err := h.service.Create(r.Context(), req, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bank id")
		return
	}
	var req UpdateBankRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	b, err := h.service.Update(r.Context(), id, req, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bank id")
		return
	}
	page, perPage := shared.PageParams(r)
	logs, total, err := h.service.ListMoneyLogs(r.Context(), id, page, perPage)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       logs,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) addLog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bank id")
		return
	}
	var req AddMoneyLogRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	l, err := h.service.AddMoneyLog(r.Context(), id, req, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, l)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateAccount):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("bank request failed", slog.Any("error", err))
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
