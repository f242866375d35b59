package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole is the base role of a user account
type UserRole string

const (
	RoleSuperAdmin UserRole = "superadmin"
	RoleAdmin      UserRole = "admin"
	RoleOfficer    UserRole = "officer"
	RoleUser       UserRole = "user"
)

// User represents a dashboard account. Stored in the original database.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string               `bson:"email" json:"email"`
	FirstName    string               `bson:"firstName" json:"firstName"`
	LastName     string               `bson:"lastName" json:"lastName"`
	Password     string               `bson:"password" json:"-"`
	Role         UserRole             `bson:"role" json:"role"`
	Roles        []primitive.ObjectID `bson:"roles" json:"roles"`
	Organization *primitive.ObjectID  `bson:"organization,omitempty" json:"organization,omitempty"`
	Active       bool                 `bson:"active" json:"active"`
	LastLogin    time.Time            `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CreateUserRequest is the payload of POST /user
type CreateUserRequest struct {
	Email        string   `json:"email" binding:"required,email"`
	FirstName    string   `json:"firstName" binding:"required,notblank"`
	LastName     string   `json:"lastName" binding:"required,notblank"`
	Password     string   `json:"password" binding:"required,min=8"`
	Role         UserRole `json:"role" binding:"required,oneof=superadmin admin officer user"`
	Organization string   `json:"organization" binding:"omitempty,objectid"`
	Roles        []string `json:"roles" binding:"omitempty,dive,objectid"`
}

// UpdateUserRequest is the payload of PUT /user/:id; nil fields are left untouched
type UpdateUserRequest struct {
	Email        *string   `json:"email" binding:"omitempty,email"`
	FirstName    *string   `json:"firstName" binding:"omitempty,notblank"`
	LastName     *string   `json:"lastName" binding:"omitempty,notblank"`
	Password     *string   `json:"password" binding:"omitempty,min=8"`
	Role         *UserRole `json:"role" binding:"omitempty,oneof=superadmin admin officer user"`
	Organization *string   `json:"organization"`
	Active       *bool     `json:"active"`
}

// AssignRolesRequest is the payload of PUT /user/:id/roles
type AssignRolesRequest struct {
	Roles []string `json:"roles" binding:"dive,objectid"`
}

// LoginRequest defines the structure for login requests
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the payload of PUT /auth/password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,nefield=OldPassword"`
}

// Session is a refresh-token session. TokenID rotates on every refresh.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	TokenID   string             `bson:"tokenId" json:"-"`
	UserAgent string             `bson:"userAgent" json:"userAgent"`
	IP        string             `bson:"ip" json:"ip"`
	Valid     bool               `bson:"valid" json:"valid"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
