package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatekeep/gatekeep/internal/platform/httpx"
	"github.com/gatekeep/gatekeep/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	loginLimiter func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. loginLimiter may be nil.
func NewHandler(logger *slog.Logger, service *Service, loginLimiter func(http.Handler) http.Handler) *Handler {
	if loginLimiter == nil {
		loginLimiter = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		logger:       logger,
		service:      service,
		loginLimiter: loginLimiter,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.loginLimiter).Post("/login-user", h.handleLogin)
	r.Post("/userdata", h.handleUserData)
	r.Post("/logout", h.handleLogout)
}

// loginRequest fields are not validated here; an empty or malformed value
// simply fails the lookup or the password check.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse carries isadmin beside the token, outside the generic envelope.
type loginResponse struct {
	Status  string `json:"status"`
	Data    string `json:"data"`
	IsAdmin bool   `json:"isadmin"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Status: httpx.StatusOK, Data: res.Token, IsAdmin: res.IsAdmin})
}

type userDataRequest struct {
	Token string `json:"token"`
}

func (h *Handler) handleUserData(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		var req userDataRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, h.logger, shared.ErrInvalidToken)
			return
		}
		token = req.Token
	}
	sess, err := h.service.Resolve(r.Context(), token)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, sess.User.ToView())
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), BearerToken(r)); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Logged out")
}
