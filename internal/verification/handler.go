package verification

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gatekeep/gatekeep/internal/platform/httpx"
	"github.com/gatekeep/gatekeep/internal/shared"
)

// AdminGuard restricts routes to administrators.
type AdminGuard interface {
	RequireAdmin(next http.Handler) http.Handler
}

// Handler exposes the verification endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   AdminGuard
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard AdminGuard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers verification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequireAdmin).Post("/update-password", h.updatePassword)
}

// userID accepts both numeric and string encoded identifiers.
type userID int64

func (id *userID) UnmarshalJSON(b []byte) error {
	raw := bytes.Trim(b, `"`)
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %s", b)
	}
	*id = userID(n)
	return nil
}

type updatePasswordRequest struct {
	UserID      userID `json:"userId"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if req.UserID <= 0 {
		httpx.RespondError(w, h.logger, fmt.Errorf("%w: userId required", shared.ErrValidation))
		return
	}
	if _, err := h.service.Verify(r.Context(), int64(req.UserID), req.NewPassword); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Password updated and SMS sent")
}
