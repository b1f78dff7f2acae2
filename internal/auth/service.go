// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/middleware"
	"github.com/Deeazer/company-crm/internal/user"
)

var (
	ErrInvalidCredentials = user.ErrInvalidCredentials
	ErrEmailExists        = user.ErrEmailExists
)

type CredentialStore interface {
	Register(ctx context.Context, in user.RegisterInput) (*user.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type ServiceConfig struct {
	// AllowRoleOnRegister lets self-registration pick a role. When false
	// every self-registered account gets the standard role.
	AllowRoleOnRegister bool
	// DenylistFailOpen accepts tokens when the denylist cannot be read.
	DenylistFailOpen bool
}

type Service struct {
	store    CredentialStore
	jwt      *JWTManager
	denylist Denylist
	config   ServiceConfig
}

func NewService(
	store CredentialStore,
	jwt *JWTManager,
	denylist Denylist,
	cfg ServiceConfig,
) *Service {
	return &Service{
		store:    store,
		jwt:      jwt,
		denylist: denylist,
		config:   cfg,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	role := req.Role
	if !s.config.AllowRoleOnRegister {
		role = ""
	}

	return s.store.Register(ctx, user.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	})
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.store.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.AddSpanEvent(ctx, "login.failed")
		}
		return nil, err
	}

	token, _, err := s.jwt.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	core.AddSpanEvent(ctx, "login.succeeded", attribute.String("user.id", u.ID))

	return &LoginResponse{
		Token: token,
		User:  ToUserResponse(u),
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, identity *middleware.Identity) error {
	if identity == nil || identity.TokenID == "" {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.denylist.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*user.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get current user: %w", core.ErrUnauthorized)
	}
	return s.store.GetByID(ctx, userID)
}

// VerifyAccessToken satisfies middleware.TokenVerifier.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.Identity, error) {
	claims, err := s.jwt.Verify(token)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID)
		switch {
		case err != nil && s.config.DenylistFailOpen:
			slog.WarnContext(ctx, "denylist unavailable, accepting token",
				"error", err,
				"jti", claims.TokenID,
			)
		case err != nil:
			return nil, fmt.Errorf("verify token: %w", core.ErrUnavailable)
		case revoked:
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
	}

	return &middleware.Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
