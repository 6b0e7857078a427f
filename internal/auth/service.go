package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gatekeep/gatekeep/internal/observability"
	"github.com/gatekeep/gatekeep/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	users    UserDirectory
	tokens   *TokenIssuer
	denylist Denylist
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewService constructs a new Service. metrics may be nil.
func NewService(directory UserDirectory, tokens *TokenIssuer, denylist Denylist, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: directory, tokens: tokens, denylist: denylist, metrics: metrics, logger: logger}
}

// Login validates email/password credentials and issues a session token.
// An unknown email yields shared.ErrUserNotFound; an unset or wrong password
// yields shared.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			s.metrics.ObserveLogin("unknown_user")
		}
		return LoginResult{}, err
	}
	if !user.Verified() || !shared.CheckPassword(*user.PasswordHash, password) {
		s.metrics.ObserveLogin("invalid_credentials")
		return LoginResult{}, shared.ErrInvalidCredentials
	}
	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, err
	}
	s.metrics.ObserveLogin("success")
	s.logger.Info("login", slog.Int64("user_id", user.ID), slog.Bool("admin", user.IsAdmin))
	return LoginResult{Token: token, IsAdmin: user.IsAdmin}, nil
}

// Resolve maps a token to the current user record. The role is taken from the
// record, never from the token.
func (s *Service) Resolve(ctx context.Context, raw string) (*Session, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.denylist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: revoked", shared.ErrInvalidToken)
	}
	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: account gone", shared.ErrInvalidToken)
		}
		return nil, err
	}
	if strconv.FormatInt(user.ID, 10) != claims.Subject {
		return nil, fmt.Errorf("%w: subject mismatch", shared.ErrInvalidToken)
	}
	return &Session{
		User: user,
		Principal: shared.Principal{
			UserID:  user.ID,
			Email:   user.Email,
			Role:    shared.RoleFor(user.IsAdmin),
			TokenID: claims.ID,
		},
	}, nil
}

// Logout revokes the token until it would have expired.
func (s *Service) Logout(ctx context.Context, raw string) error {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return err
	}
	if err := s.denylist.Add(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		return fmt.Errorf("auth: revoke: %w", err)
	}
	s.logger.Info("logout", slog.String("subject", claims.Subject))
	return nil
}
