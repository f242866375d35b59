package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission is a "<resource>:<action>" grant
type Permission string

const (
	PermStudentRead       Permission = "student:read"
	PermStudentWrite      Permission = "student:write"
	PermStudentImport     Permission = "student:import"
	PermCategoryRead      Permission = "category:read"
	PermCategoryWrite     Permission = "category:write"
	PermOrganizationRead  Permission = "organization:read"
	PermOrganizationWrite Permission = "organization:write"
	PermTransactionRead   Permission = "transaction:read"
	PermTransactionWrite  Permission = "transaction:write"
	PermTransactionImport Permission = "transaction:import"
	PermTransactionExport Permission = "transaction:export"
	PermPrelistingRead    Permission = "prelisting:read"
	PermPrelistingWrite   Permission = "prelisting:write"
	PermUserRead          Permission = "user:read"
	PermUserWrite         Permission = "user:write"
	PermRoleRead          Permission = "role:read"
	PermRoleWrite         Permission = "role:write"
)

// AllPermissions lists every known permission
var AllPermissions = []Permission{
	PermStudentRead, PermStudentWrite, PermStudentImport,
	PermCategoryRead, PermCategoryWrite,
	PermOrganizationRead, PermOrganizationWrite,
	PermTransactionRead, PermTransactionWrite, PermTransactionImport, PermTransactionExport,
	PermPrelistingRead, PermPrelistingWrite,
	PermUserRead, PermUserWrite,
	PermRoleRead, PermRoleWrite,
}

// IsValidPermission reports whether p is one of AllPermissions
func IsValidPermission(p Permission) bool {
	for _, known := range AllPermissions {
		if known == p {
			return true
		}
	}
	return false
}

// BasePermissions returns the permissions granted by the base role enum
func BasePermissions(role UserRole) []Permission {
	switch role {
	case RoleSuperAdmin:
		return AllPermissions
	case RoleAdmin:
		perms := make([]Permission, 0, len(AllPermissions))
		for _, p := range AllPermissions {
			if p != PermRoleWrite {
				perms = append(perms, p)
			}
		}
		return perms
	case RoleOfficer:
		return []Permission{
			PermStudentRead, PermCategoryRead, PermOrganizationRead,
			PermTransactionRead, PermTransactionWrite, PermTransactionExport,
			PermPrelistingRead, PermPrelistingWrite,
			PermUserRead, PermRoleRead,
		}
	case RoleUser:
		return []Permission{PermStudentRead, PermCategoryRead, PermOrganizationRead}
	default:
		return nil
	}
}

// Role is a named permission set assignable to users on top of their base role
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Permissions []Permission       `bson:"permissions" json:"permissions"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RoleRequest is the payload of POST/PUT /role
type RoleRequest struct {
	Name        string       `json:"name" binding:"required,notblank"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions" binding:"required,min=1"`
}

// Actor is the authenticated user of a request with its effective permissions
type Actor struct {
	ID           primitive.ObjectID
	Email        string
	Role         UserRole
	Organization *primitive.ObjectID
	Permissions  map[Permission]bool
}

// NewActor builds the actor of user, merging the base role with the given RBAC roles
func NewActor(user *User, roles []*Role) *Actor {
	perms := make(map[Permission]bool)
	for _, p := range BasePermissions(user.Role) {
		perms[p] = true
	}
	for _, r := range roles {
		for _, p := range r.Permissions {
			perms[p] = true
		}
	}
	return &Actor{
		ID:           user.ID,
		Email:        user.Email,
		Role:         user.Role,
		Organization: user.Organization,
		Permissions:  perms,
	}
}

// Can reports whether the actor holds every given permission
func (a *Actor) Can(perms ...Permission) bool {
	if a == nil {
		return false
	}
	for _, p := range perms {
		if !a.Permissions[p] {
			return false
		}
	}
	return true
}

// ScopedTo returns the organization an officer is restricted to, or nil
// for unscoped roles. An officer without an organization is scoped to
// the nil ObjectID, which matches nothing.
func (a *Actor) ScopedTo() *primitive.ObjectID {
	if a == nil || a.Role != RoleOfficer {
		return nil
	}
	if a.Organization == nil {
		none := primitive.NilObjectID
		return &none
	}
	return a.Organization
}

// PermissionList returns the sorted effective permissions
func (a *Actor) PermissionList() []Permission {
	out := make([]Permission, 0, len(a.Permissions))
	for p := range a.Permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
