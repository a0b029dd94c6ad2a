package auth

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
	"github.com/clowee-erp/clowee-erp/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
	perms    rbac.PermissionSource
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, perms rbac.PermissionSource) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		sessions: sessions,
		csrf:     csrf,
		perms:    perms,
		validate: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type userPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))

	csrfToken, err := h.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("issue csrf token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	expiresAt := time.Now().Add(h.sessions.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	granted := h.grantedPermissions(r, user.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user":        userPayload{ID: user.ID, Email: user.Email, Name: user.Name},
		"csrf_token":  csrfToken,
		"permissions": granted,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessions.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "not logged in")
		return
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "not logged in")
		return
	}
	user, err := h.service.CurrentUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "not logged in")
			return
		}
		h.logger.Error("load current user", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user":        userPayload{ID: user.ID, Email: user.Email, Name: user.Name},
		"permissions": h.grantedPermissions(r, user.ID),
	})
}

// grantedPermissions is advisory for the client; route guards stay the
// source of truth.
func (h *Handler) grantedPermissions(r *http.Request, userID int64) []string {
	if h.perms == nil {
		return nil
	}
	granted, err := h.perms.EffectivePermissions(r.Context(), userID)
	if err != nil {
		h.logger.Warn("load permissions", slog.Any("error", err))
		return nil
	}
	return granted
}
