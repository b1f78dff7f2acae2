// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Deeazer/company-crm/internal/core"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrCannotDeleteSelf   = errors.New("cannot delete own account")
	ErrUserHasReferences  = errors.New("user still owns projects or documents")
)

// Service is the credential store: the only place passwords are hashed or
// compared.
type Service struct {
	repo   Repository
	hasher *core.PasswordHasher
	now    func() time.Time
}

func NewService(repo Repository, hasher *core.PasswordHasher) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	role, ok := NormalizeRole(in.Role)
	if !ok {
		return nil, fmt.Errorf("register %q: %w", in.Role, ErrInvalidRole)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: passwordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
	}

	// The unique constraint decides races; there is no pre-check.
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return user, nil
}

// VerifyCredentials returns ErrInvalidCredentials for both an unknown email
// and a wrong password.
func (s *Service) VerifyCredentials(
	ctx context.Context,
	email, password string,
) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // equalises timing with the found path
			_, _ = s.hasher.VerifyTimingSafe(password, nil)
			slog.DebugContext(ctx, "login failed", "reason", "unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := s.hasher.VerifyTimingSafe(password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		slog.DebugContext(ctx, "login failed",
			"reason", "password_mismatch",
			"user_id", user.ID,
		)
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	return user, nil
}

func (s *Service) upgradeHash(ctx context.Context, user *User, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		slog.WarnContext(ctx, "rehash failed", "user_id", user.ID, "error", err)
		return
	}

	user.PasswordHash = newHash
	if err := s.repo.Update(ctx, user); err != nil {
		slog.WarnContext(ctx, "rehash store failed", "user_id", user.ID, "error", err)
	}
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = NormalizeEmail(*req.Email)
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Role != nil {
		role, ok := NormalizeRole(*req.Role)
		if !ok {
			return nil, fmt.Errorf("update %q: %w", *req.Role, ErrInvalidRole)
		}
		user.Role = role
	}
	if req.Password != nil {
		passwordHash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = passwordHash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return user, nil
}

// GetByID treats an id that is not a UUID as unknown so it never reaches
// the uuid column.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("get user %q: %w", id, core.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

// DeleteUser removes target. An admin cannot delete their own account, and
// users that are still referenced by projects or documents are kept.
func (s *Service) DeleteUser(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return ErrCannotDeleteSelf
	}
	if _, err := uuid.Parse(targetID); err != nil {
		return fmt.Errorf("delete user %q: %w", targetID, core.ErrNotFound)
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, core.ErrForeignKey) {
			return ErrUserHasReferences
		}
		return err
	}

	return nil
}

func (s *Service) SetResetToken(
	ctx context.Context,
	userID, tokenHash string,
	expiry time.Time,
) error {
	return s.repo.SetResetToken(ctx, userID, tokenHash, expiry)
}

// ResetPassword stores newPassword for the user holding tokenHash and
// clears the token. Returns core.ErrNotFound when no unexpired token
// matches, including when the token was already used.
func (s *Service) ResetPassword(
	ctx context.Context,
	tokenHash, newPassword string,
) (*User, error) {
	if _, err := s.repo.GetByResetTokenHash(ctx, tokenHash, s.now()); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.ConsumeResetToken(ctx, tokenHash, passwordHash, s.now())
}
