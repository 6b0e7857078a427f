package users

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gatekeep/gatekeep/internal/platform/httpx"
	"github.com/gatekeep/gatekeep/internal/platform/storage"
	"github.com/gatekeep/gatekeep/internal/shared"
)

// Guard supplies the authentication middlewares protecting user routes.
type Guard interface {
	RequireSession(next http.Handler) http.Handler
	RequireAdmin(next http.Handler) http.Handler
}

// HandlerConfig carries per-brand request parsing options.
type HandlerConfig struct {
	DocumentField    string
	DocumentMaxBytes int64
}

// Handler manages user endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   Guard
	cfg     HandlerConfig
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard Guard, cfg HandlerConfig) *Handler {
	if cfg.DocumentField == "" {
		cfg.DocumentField = "aadhaarImage"
	}
	if cfg.DocumentMaxBytes <= 0 {
		cfg.DocumentMaxBytes = 10 << 20
	}
	return &Handler{logger: logger, service: service, guard: guard, cfg: cfg}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireSession)
		r.Post("/updateuser", h.updateUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAdmin)
		r.Get("/get-all-user", h.listUsers)
		r.Get("/get-user-details/{id}", h.userDetails)
	})
}

type registerRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := h.parseRegistration(w, r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		h.registerError(w, err)
		return
	}
	if _, err := h.service.Register(r.Context(), in); err != nil {
		h.registerError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "User Created")
}

// registerError reports registration failures with the reason in data.
// Unexpected failures stay sanitised.
func (h *Handler) registerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrDuplicateUser):
		httpx.FailData(w, http.StatusConflict, "User already exists!!")
	case errors.Is(err, storage.ErrUnsupportedType):
		httpx.FailData(w, http.StatusBadRequest, "Unsupported document type")
	case errors.Is(err, shared.ErrValidation), errors.Is(err, httpx.ErrBadRequest):
		httpx.FailData(w, http.StatusBadRequest, err.Error())
	default:
		httpx.RespondError(w, h.logger, err)
	}
}

// parseRegistration accepts JSON bodies and multipart forms carrying the document image.
func (h *Handler) parseRegistration(w http.ResponseWriter, r *http.Request) (RegisterInput, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req registerRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			return RegisterInput{}, nil, err
		}
		return RegisterInput{Name: req.Name, Email: req.Email, Mobile: req.Mobile}, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.DocumentMaxBytes+(1<<20))
	if err := r.ParseMultipartForm(h.cfg.DocumentMaxBytes); err != nil {
		return RegisterInput{}, nil, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err)
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }
	in := RegisterInput{
		Name:   r.FormValue("name"),
		Email:  r.FormValue("email"),
		Mobile: r.FormValue("mobile"),
	}
	file, header, err := r.FormFile(h.cfg.DocumentField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, cleanup, nil
	case err != nil:
		return RegisterInput{}, cleanup, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err)
	}
	prev := cleanup
	cleanup = func() {
		_ = file.Close()
		prev()
	}
	in.Document = &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return in, cleanup, nil
}

type updateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Mobile   string `json:"mobile"`
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, shared.ErrInvalidToken)
		return
	}
	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	_, err := h.service.UpdateProfile(r.Context(), caller, ProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Mobile:   req.Mobile,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Updated")
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListNonAdmin(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	views := make([]View, 0, len(users))
	for _, u := range users {
		views = append(views, u.ToView())
	}
	httpx.OK(w, http.StatusOK, views)
}

func (h *Handler) userDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, h.logger, shared.ErrUserNotFound)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, user.ToView())
}
