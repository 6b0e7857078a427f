package users

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gatekeep/gatekeep/internal/platform/storage"
	"github.com/gatekeep/gatekeep/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Create(ctx context.Context, in NewUser) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	ListNonAdmin(ctx context.Context) ([]User, error)
	SetPassword(ctx context.Context, id int64, hash string) error
	UpdateProfile(ctx context.Context, in ProfileUpdate) (UpdateResult, error)
}

// DocumentStore persists identity documents attached to registrations.
type DocumentStore interface {
	Save(ctx context.Context, up storage.Upload) (string, error)
	Delete(ctx context.Context, publicPath string) error
}

// ServiceConfig toggles per-brand behaviour.
type ServiceConfig struct {
	// DocumentUploads enables storing the optional document image.
	DocumentUploads bool
}

// Service handles registration, profile and listing rules.
type Service struct {
	repo      RepositoryPort
	documents DocumentStore
	cfg       ServiceConfig
	logger    *slog.Logger
}

// NewService builds Service instance. documents may be nil when uploads are disabled.
func NewService(repo RepositoryPort, documents DocumentStore, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, documents: documents, cfg: cfg, logger: logger}
}

// RegisterInput is the registration request.
type RegisterInput struct {
	Name     string          `validate:"required,min=2,max=120"`
	Email    string          `validate:"required,email,max=254"`
	Mobile   string          `validate:"required,min=7,max=15,mobile"`
	Document *storage.Upload `validate:"-"`
}

// Register creates a user with an unset password. Duplicate emails are rejected.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Name = normalizeName(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Mobile = normalizeMobile(in.Mobile)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, shared.ErrDuplicateUser
	} else if !isNotFound(err) {
		return nil, err
	}

	var documentPath *string
	if in.Document != nil && s.cfg.DocumentUploads && s.documents != nil {
		p, err := s.documents.Save(ctx, *in.Document)
		if err != nil {
			return nil, fmt.Errorf("users: store document: %w", err)
		}
		documentPath = &p
	}

	user, err := s.repo.Create(ctx, NewUser{
		Name:         in.Name,
		Email:        in.Email,
		Mobile:       in.Mobile,
		DocumentPath: documentPath,
	})
	if err != nil {
		if documentPath != nil {
			s.discardDocument(*documentPath)
		}
		return nil, err
	}
	s.logger.Info("user registered", slog.Int64("user_id", user.ID), slog.Bool("document", documentPath != nil))
	return user, nil
}

// discardDocument removes a document whose registration was never stored.
func (s *Service) discardDocument(p string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.documents.Delete(ctx, p); err != nil {
		s.logger.Warn("orphaned document left behind", slog.String("path", p), slog.Any("error", err))
	}
}

// Get returns one user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, shared.ErrUserNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// GetByEmail returns one user by login email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

// ListNonAdmin returns every user awaiting or past verification, admins excluded.
func (s *Service) ListNonAdmin(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListNonAdmin(ctx)
	if err != nil {
		return nil, err
	}
	filtered := users[:0]
	for _, u := range users {
		if !u.IsAdmin {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

// ProfileInput is the profile update request. An empty Password keeps the current one.
type ProfileInput struct {
	Name     string `validate:"required,min=2,max=120"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"omitempty,min=6,max=72"`
	Mobile   string `validate:"required,min=7,max=15,mobile"`
}

// UpdateProfile overwrites the caller's own record. Admins may update any record.
// An email that matches no record succeeds with Matched=false.
func (s *Service) UpdateProfile(ctx context.Context, caller shared.Principal, in ProfileInput) (UpdateResult, error) {
	in.Name = normalizeName(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Mobile = normalizeMobile(in.Mobile)
	if err := validateStruct(in); err != nil {
		return UpdateResult{}, err
	}
	if !caller.IsAdmin() && caller.Email != in.Email {
		return UpdateResult{}, shared.ErrForbidden
	}

	update := ProfileUpdate{Email: in.Email, Name: in.Name, Mobile: in.Mobile}
	if in.Password != "" {
		hash, err := shared.HashPassword(in.Password)
		if err != nil {
			return UpdateResult{}, fmt.Errorf("users: hash password: %w", err)
		}
		update.PasswordHash = &hash
	}
	res, err := s.repo.UpdateProfile(ctx, update)
	if err != nil {
		return UpdateResult{}, err
	}
	s.logger.Info("profile updated", slog.Bool("matched", res.Matched), slog.Bool("password_changed", update.PasswordHash != nil))
	return res, nil
}
