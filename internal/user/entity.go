// AngelaMos | 2026
// entity.go

package user

import (
	"strings"
	"time"
)

type User struct {
	ID               string     `db:"id"`
	Email            string     `db:"email"`
	PasswordHash     string     `db:"password_hash"`
	FirstName        string     `db:"first_name"`
	LastName         string     `db:"last_name"`
	Role             string     `db:"role"`
	ResetTokenHash   *string    `db:"reset_token_hash"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"

	// legacyRoleExecutor is accepted on input and stored as RoleUser.
	legacyRoleExecutor = "executor"
)

// NormalizeRole maps empty and legacy role names onto the canonical set.
// The second result is false for anything it does not recognise.
func NormalizeRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", RoleUser, legacyRoleExecutor:
		return RoleUser, true
	case RoleManager:
		return RoleManager, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
