// AngelaMos | 2026
// reset.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/mail"
	"github.com/Deeazer/company-crm/internal/user"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrDeliveryFailed        = errors.New("reset message delivery failed")
)

const resetTokenBytes = 32

type Mailer interface {
	SendPasswordReset(ctx context.Context, msg mail.PasswordResetMessage) error
}

// ResetStore is the part of the credential store the reset flow needs.
type ResetStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	SetResetToken(
		ctx context.Context,
		userID, tokenHash string,
		expiry time.Time,
	) error
	ResetPassword(
		ctx context.Context,
		tokenHash, newPassword string,
	) (*user.User, error)
}

type ResetConfig struct {
	TokenTTL  time.Duration
	ClientURL string
}

// ResetFlow implements out of band password recovery. Only the SHA-256 of
// a reset token is stored; the raw token exists in the e-mail link alone.
type ResetFlow struct {
	store  ResetStore
	mailer Mailer
	config ResetConfig
	now    func() time.Time
}

func NewResetFlow(store ResetStore, mailer Mailer, cfg ResetConfig) *ResetFlow {
	return &ResetFlow{
		store:  store,
		mailer: mailer,
		config: cfg,
		now:    time.Now,
	}
}

// RequestReset stores a fresh token for email, replacing any earlier one,
// and mails the link. When delivery fails the stored token is kept and
// ErrDeliveryFailed is returned.
func (f *ResetFlow) RequestReset(ctx context.Context, email string) error {
	u, err := f.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := core.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expiry := f.now().Add(f.config.TokenTTL)
	if err := f.store.SetResetToken(ctx, u.ID, core.HashToken(token), expiry); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	core.AddSpanEvent(ctx, "password_reset.requested",
		attribute.String("user.id", u.ID),
	)

	err = f.mailer.SendPasswordReset(ctx, mail.PasswordResetMessage{
		To:        u.Email,
		FirstName: u.FirstName,
		ResetURL:  f.resetURL(token),
		ValidFor:  f.config.TokenTTL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "password reset delivery failed",
			"user_id", u.ID,
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return nil
}

// ResetPassword is single use: the token is cleared in the same statement
// that stores the new password.
func (f *ResetFlow) ResetPassword(
	ctx context.Context,
	token, newPassword string,
) error {
	if token == "" {
		return ErrInvalidOrExpiredToken
	}

	u, err := f.store.ResetPassword(ctx, core.HashToken(token), newPassword)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("reset password: %w", err)
	}

	slog.InfoContext(ctx, "password reset completed", "user_id", u.ID)
	return nil
}

func (f *ResetFlow) resetURL(token string) string {
	return strings.TrimRight(f.config.ClientURL, "/") + "/reset-password/" + token
}
