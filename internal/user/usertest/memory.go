// AngelaMos | 2026
// memory.go

// Package usertest provides an in-memory user.Repository for tests. It
// enforces email uniqueness under a mutex like the database constraint does.
package usertest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/user"
)

type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]user.User

	// Referenced marks user ids that Delete must refuse, standing in for
	// foreign keys from projects and documents.
	Referenced map[string]bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[string]user.User),
		Referenced: make(map[string]bool),
	}
}

func (m *MemoryRepository) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return &u, nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (m *MemoryRepository) GetByResetTokenHash(
	_ context.Context,
	tokenHash string,
	now time.Time,
) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.findResetLocked(tokenHash, now); ok {
		return &u, nil
	}
	return nil, fmt.Errorf("get user by reset token: %w", core.ErrNotFound)
}

func (m *MemoryRepository) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[u.ID]
	if !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}

	for id, existing := range m.users {
		if id != u.ID && existing.Email == u.Email {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
	}

	stored.Email = u.Email
	stored.FirstName = u.FirstName
	stored.LastName = u.LastName
	stored.Role = u.Role
	stored.PasswordHash = u.PasswordHash
	stored.UpdatedAt = time.Now()
	u.UpdatedAt = stored.UpdatedAt
	m.users[u.ID] = stored
	return nil
}

func (m *MemoryRepository) SetResetToken(
	_ context.Context,
	id, tokenHash string,
	expiry time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("set reset token: %w", core.ErrNotFound)
	}

	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpiry = &expiry
	m.users[id] = u
	return nil
}

func (m *MemoryRepository) ConsumeResetToken(
	_ context.Context,
	tokenHash, passwordHash string,
	now time.Time,
) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.findResetLocked(tokenHash, now)
	if !ok {
		return nil, fmt.Errorf("consume reset token: %w", core.ErrNotFound)
	}

	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	u.UpdatedAt = now
	m.users[u.ID] = u
	return &u, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	if m.Referenced[id] {
		return fmt.Errorf("delete user: %w", core.ErrForeignKey)
	}

	delete(m.users, id)
	return nil
}

func (m *MemoryRepository) List(
	_ context.Context,
	params user.ListUsersParams,
) ([]user.User, int, error) {
	params.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(params.Search)
	matched := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(strings.ToLower(u.FirstName), search) &&
			!strings.Contains(strings.ToLower(u.LastName), search) {
			continue
		}
		matched = append(matched, u)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)

	return matched[start:end], total, nil
}

// Stored returns a copy of the raw record, including hash and reset state.
func (m *MemoryRepository) Stored(id string) (user.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	return u, ok
}

func (m *MemoryRepository) findResetLocked(
	tokenHash string,
	now time.Time,
) (user.User, bool) {
	for _, u := range m.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpiry != nil && now.Before(*u.ResetTokenExpiry) {
			return u, true
		}
	}
	return user.User{}, false
}

var _ user.Repository = (*MemoryRepository)(nil)
