// Package verification assigns a first password to registered accounts and
// delivers it to the account holder by SMS.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/gatekeep/gatekeep/internal/notify"
	"github.com/gatekeep/gatekeep/internal/observability"
	"github.com/gatekeep/gatekeep/internal/shared"
	"github.com/gatekeep/gatekeep/internal/users"
	"github.com/gatekeep/gatekeep/jobs"
)

// Store reads and updates the accounts being verified.
type Store interface {
	FindByID(ctx context.Context, id int64) (*users.User, error)
	SetPassword(ctx context.Context, id int64, hash string) error
}

// Dispatcher queues SMS delivery.
type Dispatcher interface {
	EnqueueSendSMS(ctx context.Context, payload jobs.SendSMSPayload) (*asynq.TaskInfo, error)
}

// Config carries per-brand verification settings.
type Config struct {
	BrandName string
	Generate  CredentialGenerator
}

// Service verifies accounts.
type Service struct {
	store      Store
	dispatcher Dispatcher
	cfg        Config
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewService builds Service instance. metrics may be nil.
func NewService(store Store, dispatcher Dispatcher, cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if cfg.Generate == nil {
		cfg.Generate = PrefixedCredentials("Car")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, dispatcher: dispatcher, cfg: cfg, metrics: metrics, logger: logger}
}

// Result describes a completed verification.
type Result struct {
	UserID int64
	SentTo string
}

// Verify assigns a credential to the user and texts it to them. An explicit
// credential is used verbatim; otherwise one is generated. The stored password
// only changes once the SMS has been queued. Repeated calls overwrite.
func (s *Service) Verify(ctx context.Context, userID int64, explicit string) (Result, error) {
	if userID <= 0 {
		return Result{}, shared.ErrUserNotFound
	}
	if explicit != "" && (strings.TrimSpace(explicit) == "" || len(explicit) > 72) {
		return Result{}, fmt.Errorf("%w: password must be 1-72 bytes", shared.ErrValidation)
	}
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			s.metrics.ObserveVerification("unknown_user")
		}
		return Result{}, err
	}

	credential := explicit
	if credential == "" {
		if credential, err = s.cfg.Generate(); err != nil {
			return Result{}, err
		}
	}

	if _, err := s.dispatcher.EnqueueSendSMS(ctx, jobs.SendSMSPayload{
		To:   user.Mobile,
		Body: s.message(credential),
	}); err != nil {
		s.metrics.ObserveVerification("dispatch_failed")
		return Result{}, fmt.Errorf("verification: dispatch sms: %w", err)
	}

	hash, err := shared.HashPassword(credential)
	if err != nil {
		return Result{}, fmt.Errorf("verification: hash: %w", err)
	}
	if err := s.store.SetPassword(ctx, user.ID, hash); err != nil {
		s.metrics.ObserveVerification("store_failed")
		return Result{}, err
	}
	s.metrics.ObserveVerification("success")
	s.logger.Info("account verified", slog.Int64("user_id", user.ID), slog.Bool("generated", explicit == ""))
	return Result{UserID: user.ID, SentTo: notify.Mask(user.Mobile)}, nil
}

func (s *Service) message(credential string) string {
	body := "Account verified , Your password is " + credential
	if s.cfg.BrandName != "" {
		return s.cfg.BrandName + ": " + body
	}
	return body
}
