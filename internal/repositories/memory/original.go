package memory

import (
	"context"
	"strings"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.UserRepository         = (*UserRepository)(nil)
	_ repositories.OrganizationRepository = (*OrganizationRepository)(nil)
	_ repositories.RoleRepository         = (*RoleRepository)(nil)
	_ repositories.SessionRepository      = (*SessionRepository)(nil)
)

func stamp(id *primitive.ObjectID, created, updated *time.Time) {
	*id = primitive.NewObjectID()
	*created = time.Now()
	*updated = *created
}

// UserRepository keeps users in memory
type UserRepository struct {
	rows *table[models.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{rows: newTable(
		func(u *models.User) primitive.ObjectID { return u.ID },
		func(u *models.User) *models.User {
			c := *u
			c.Roles = cloneIDs(u.Roles)
			c.Organization = cloneIDPtr(u.Organization)
			return &c
		},
	)}
}

func sameEmail(a, b *models.User) bool { return a.Email == b.Email }

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	user.Email = strings.ToLower(user.Email)
	if user.Roles == nil {
		user.Roles = []primitive.ObjectID{}
	}
	return r.rows.insert(user, sameEmail)
}

func (r *UserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.rows.get(id)
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(email)
	return r.rows.first(func(u *models.User) bool { return u.Email == email })
}

func (r *UserRepository) FindAll(_ context.Context) ([]*models.User, error) {
	return r.rows.filter(nil, func(a, b *models.User) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = time.Now()
	return r.rows.replace(user, sameEmail)
}

func (r *UserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.rows.remove(id)
}

func (r *UserRepository) CountByRole(_ context.Context, roleID primitive.ObjectID) (int64, error) {
	return r.rows.count(func(u *models.User) bool {
		for _, id := range u.Roles {
			if id == roleID {
				return true
			}
		}
		return false
	}), nil
}

func (r *UserRepository) CountByOrganization(_ context.Context, orgID primitive.ObjectID) (int64, error) {
	return r.rows.count(func(u *models.User) bool { return u.Organization != nil && *u.Organization == orgID }), nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	return r.rows.count(nil), nil
}

// OrganizationRepository keeps organizations in memory
type OrganizationRepository struct {
	rows *table[models.Organization]
}

func NewOrganizationRepository() *OrganizationRepository {
	return &OrganizationRepository{rows: newTable(
		func(o *models.Organization) primitive.ObjectID { return o.ID },
		func(o *models.Organization) *models.Organization {
			c := *o
			c.Departments = append([]string(nil), o.Departments...)
			c.Officers = cloneIDs(o.Officers)
			return &c
		},
	)}
}

func sameOrgName(a, b *models.Organization) bool { return strings.EqualFold(a.Name, b.Name) }

func (r *OrganizationRepository) Create(_ context.Context, org *models.Organization) error {
	stamp(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	return r.rows.insert(org, sameOrgName)
}

func (r *OrganizationRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Organization, error) {
	return r.rows.get(id)
}

func (r *OrganizationRepository) FindByName(_ context.Context, name string) (*models.Organization, error) {
	return r.rows.first(func(o *models.Organization) bool { return strings.EqualFold(o.Name, name) })
}

func (r *OrganizationRepository) FindAll(_ context.Context) ([]*models.Organization, error) {
	return r.rows.filter(nil, func(a, b *models.Organization) bool { return a.Name < b.Name }), nil
}

func (r *OrganizationRepository) Update(_ context.Context, org *models.Organization) error {
	org.UpdatedAt = time.Now()
	return r.rows.replace(org, sameOrgName)
}

func (r *OrganizationRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.rows.remove(id)
}

// RoleRepository keeps RBAC roles in memory
type RoleRepository struct {
	rows *table[models.Role]
}

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{rows: newTable(
		func(r *models.Role) primitive.ObjectID { return r.ID },
		func(r *models.Role) *models.Role {
			c := *r
			c.Permissions = append([]models.Permission(nil), r.Permissions...)
			return &c
		},
	)}
}

func sameRoleName(a, b *models.Role) bool { return a.Name == b.Name }

func (r *RoleRepository) Create(_ context.Context, role *models.Role) error {
	stamp(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	return r.rows.insert(role, sameRoleName)
}

func (r *RoleRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Role, error) {
	return r.rows.get(id)
}

func (r *RoleRepository) FindByName(_ context.Context, name string) (*models.Role, error) {
	return r.rows.first(func(role *models.Role) bool { return role.Name == name })
}

func (r *RoleRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Role, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return r.rows.filter(func(role *models.Role) bool { return wanted[role.ID] }, nil), nil
}

func (r *RoleRepository) FindAll(_ context.Context) ([]*models.Role, error) {
	return r.rows.filter(nil, func(a, b *models.Role) bool { return a.Name < b.Name }), nil
}

func (r *RoleRepository) Update(_ context.Context, role *models.Role) error {
	role.UpdatedAt = time.Now()
	return r.rows.replace(role, sameRoleName)
}

func (r *RoleRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.rows.remove(id)
}

// SessionRepository keeps refresh sessions in memory
type SessionRepository struct {
	rows *table[models.Session]
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{rows: newTable(func(s *models.Session) primitive.ObjectID { return s.ID }, nil)}
}

func (r *SessionRepository) Create(_ context.Context, session *models.Session) error {
	stamp(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	return r.rows.insert(session, nil)
}

func (r *SessionRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Session, error) {
	return r.rows.get(id)
}

func (r *SessionRepository) Update(_ context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()
	return r.rows.replace(session, nil)
}

func (r *SessionRepository) InvalidateByUser(_ context.Context, userID primitive.ObjectID) error {
	for _, s := range r.rows.filter(func(s *models.Session) bool { return s.User == userID && s.Valid }, nil) {
		s.Valid = false
		s.UpdatedAt = time.Now()
		if err := r.rows.replace(s, nil); err != nil && err != repositories.ErrNotFound {
			return err
		}
	}
	return nil
}
