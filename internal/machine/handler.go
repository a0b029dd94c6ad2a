package machine

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clowee-erp/clowee-erp/internal/platform/httpx"
	"github.com/clowee-erp/clowee-erp/internal/rbac"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Handler manages machine and counter-reading endpoints.
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

// MountRoutes registers machine routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("machine.view"))
		r.Get("/franchises/{franchiseID}/machines", h.listByFranchise)
		r.Get("/machines/{id}", h.show)
		r.Get("/machines/{id}/readings", h.listReadings)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("machine.create"))
		r.Post("/machines", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("machine.edit"))
		r.Patch("/machines/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("machine.reading.create"))
		r.Post("/machines/{id}/readings", h.addReading)
		r.Post("/machines/{id}/readings/preview", h.previewDelta)
	})
}

func (h *Handler) listByFranchise(w http.ResponseWriter, r *http.Request) {
	franchiseID, err := strconv.ParseInt(chi.URLParam(r, "franchiseID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid franchise id")
		return
	}
	machines, err := h.service.ListByFranchise(r.Context(), franchiseID, r.URL.Query().Get("active") == "true")
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": machines})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid machine id")
		return
	}
	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateMachineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	m, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid machine id")
		return
	}
	var req UpdateMachineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	m, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) listReadings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid machine id")
		return
	}
	readings, err := h.service.ListReadings(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": readings})
}

func (h *Handler) addReading(w http.ResponseWriter, r *http.Request) {
	h.handleReading(w, r, false)
}

func (h *Handler) previewDelta(w http.ResponseWriter, r *http.Request) {
	h.handleReading(w, r, true)
}

func (h *Handler) handleReading(w http.ResponseWriter, r *http.Request, preview bool) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid machine id")
		return
	}
	var req AddReadingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	var delta *ReadingDelta
	if preview {
		delta, err = h.service.PreviewDelta(r.Context(), id, req)
	} else {
		delta, err = h.service.AddReading(r.Context(), id, req, actorID(r))
	}
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	status := http.StatusOK
	if !preview {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, delta)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrCounterWentBackwards):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Counter Regression", err.Error())
	case errors.Is(err, settlement.ErrTermsNotResolvable):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("machine request failed", slog.Any("error", err))
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
