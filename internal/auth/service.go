package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshtide/freshtide/internal/mailer"
	"github.com/freshtide/freshtide/internal/shared"
)

const (
	bcryptCost    = 12
	resetTokenTTL = time.Hour
)

// MailQueue enqueues outbound mail without blocking the request.
type MailQueue interface {
	EnqueueMessage(ctx context.Context, msg mailer.Message) error
}

// ServiceConfig holds auth service settings.
type ServiceConfig struct {
	// ResetBaseURL is the client-side page a reset link points at.
	ResetBaseURL string
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *Tokens
	mail   MailQueue
	cfg    ServiceConfig
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *Tokens, mail MailQueue, cfg ServiceConfig, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, mail: mail, cfg: cfg, logger: logger}
}

// Register creates a user and returns it with a signed token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         shared.RoleCustomer,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("auth: issue token: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and returns the user with a signed token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("auth: find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("auth: issue token: %w", err)
	}
	return user, token, nil
}

// GetByID loads a user record.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile updates the caller's name and phone fields.
func (s *Service) UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) (*User, error) {
	return s.repo.UpdateProfile(ctx, id, req.FirstName, req.LastName, req.Phone)
}

// RequestReset issues a reset token and queues the reset mail. The caller
// receives the same outcome whether or not the email exists; mail delivery
// failures are logged, never surfaced, so the response stays uniform.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return err
	}

	if s.mail != nil {
		link := fmt.Sprintf("%s?token=%s", s.cfg.ResetBaseURL, token)
		msg := mailer.Message{
			To:      user.Email,
			Subject: "Reset your FreshTide password",
			HTML: fmt.Sprintf(
				"<p>Hi %s,</p><p>We received a request to reset your password. The link below is valid for one hour.</p><p><a href=%q>Reset password</a></p><p>If you did not request this, you can ignore this email.</p>",
				user.FirstName, link,
			),
			Text: fmt.Sprintf(
				"Hi %s,\n\nWe received a request to reset your password. The link below is valid for one hour.\n\n%s\n\nIf you did not request this, you can ignore this email.\n",
				user.FirstName, link,
			),
		}
		if err := s.mail.EnqueueMessage(ctx, msg); err != nil {
			s.logger.Error("enqueue reset mail", slog.Any("error", err))
		}
	}
	return nil
}

// CompleteReset consumes a reset token and stores the new password hash.
func (s *Service) CompleteReset(ctx context.Context, token, newPassword string) error {
	user, err := s.repo.FindByResetToken(ctx, token, time.Now())
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, user.ID, string(hash))
}

// ListUsers returns the admin user listing.
func (s *Service) ListUsers(ctx context.Context, req ListUsersRequest) ([]UserWithOrderCount, int, error) {
	return s.repo.List(ctx, req)
}
