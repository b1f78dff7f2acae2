// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

// RegisterInput is the credential store's input for a new account. Role
// may be empty, in which case the standard role is used.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

type CreateUserRequest struct {
	Email     string `json:"email"     validate:"required,email,max=255"`
	Password  string `json:"password"  validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName"  validate:"required,min=1,max=100"`
	Role      string `json:"role"      validate:"omitempty,oneof=admin manager user executor"`
}

// UpdateUserRequest leaves every nil field untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"     validate:"omitempty,email,max=255"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName,omitempty"  validate:"omitempty,min=1,max=100"`
	Role      *string `json:"role,omitempty"      validate:"omitempty,oneof=admin manager user executor"`
	Password  *string `json:"password,omitempty"  validate:"omitempty,min=8,max=72"`
}

// Response is the public shape of a user; it never carries the hash or
// reset state.
type Response struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListUsersParams struct {
	Page     int
	PageSize int
	Search   string
	Role     string
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToResponse(u *User) Response {
	return Response{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToResponseList(users []User) []Response {
	responses := make([]Response, 0, len(users))
	for i := range users {
		responses = append(responses, ToResponse(&users[i]))
	}
	return responses
}
