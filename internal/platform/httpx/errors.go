package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gatekeep/gatekeep/internal/shared"
)

// ErrBadRequest marks undecodable request payloads.
var ErrBadRequest = errors.New("bad request")

// RespondError maps domain errors to sanitised error envelopes. Errors outside the
// known taxonomy are logged and reported as an internal failure without detail.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, shared.ErrDuplicateUser):
		Fail(w, http.StatusConflict, "User already exists!!")
	case errors.Is(err, shared.ErrUserNotFound):
		Fail(w, http.StatusNotFound, "User not found")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, shared.ErrInvalidToken):
		Fail(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, shared.ErrValidation), errors.Is(err, ErrBadRequest):
		Fail(w, http.StatusBadRequest, err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}
