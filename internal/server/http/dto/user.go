package dto

import (
	"time"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

// UserResponse is the public view of an account. Credentials never leave the
// service.
type UserResponse struct {
	ID          int64      `json:"id"`
	Phone       string     `json:"phone"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	IsVerified  bool       `json:"isVerified"`
	AddedBy     *int64     `json:"addedBy,omitempty"`
	LastLoginAt *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewUserResponse converts a domain user.
func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Phone:       u.Phone,
		Name:        u.Name,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		AddedBy:     u.AddedBy,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// NewUserResponses converts a slice of domain users.
func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// CreateUserRequest is an admin-created account.
type CreateUserRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// ChangeRoleRequest moves an account to another role.
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ManageDriverRequest activates, deactivates or suspends a driver.
type ManageDriverRequest struct {
	DriverID int64  `json:"driverId" binding:"required"`
	Action   string `json:"action" binding:"required"`
	Reason   string `json:"reason"`
}

// ReviewProfileRequest approves or rejects a profile.
type ReviewProfileRequest struct {
	Status          string `json:"status" binding:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejectionReason"`
}
