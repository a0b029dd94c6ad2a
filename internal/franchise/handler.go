package franchise

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

// Handler manages franchise endpoints.
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

// MountRoutes registers franchise routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("franchise.view"))
		r.Get("/franchises", h.list)
		r.Get("/franchises/{id}", h.show)
		r.Get("/franchises/{id}/agreements", h.listAgreements)
		r.Get("/franchises/{id}/terms", h.resolveTerms)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("franchise.create"))
		r.Post("/franchises", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("franchise.edit"))
		r.Patch("/franchises/{id}", h.update)
		r.Post("/franchises/{id}/agreements", h.appendAgreement)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	req := ListFranchisesRequest{
		Search:     r.URL.Query().Get("search"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Page:       page,
		PerPage:    perPage,
	}
	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list franchises", slog.Any("error", err))
		httpx.RespondError(w, err)
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid franchise id")
		return
	}
	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateFranchiseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	f, err := h.service.Create(r.Context(), req, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, f)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid franchise id")
		return
	}
	var req UpdateFranchiseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	f, err := h.service.Update(r.Context(), id, req, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) listAgreements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid franchise id")
		return
	}
	rows, err := h.service.ListAgreements(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) appendAgreement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid franchise id")
		return
	}
	var req AppendAgreementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	row, err := h.service.AppendAgreement(r.Context(), id, req, actorID(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}

func (h *Handler) resolveTerms(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid franchise id")
		return
	}
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err = time.Parse(settlement.DateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "as_of must be YYYY-MM-DD")
			return
		}
	}
	terms, err := h.service.ResolveTerms(r.Context(), id, asOf)
	if err != nil {
		if errors.Is(err, settlement.ErrTermsNotResolvable) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, terms)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateName):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("franchise request failed", slog.Any("error", err))
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
