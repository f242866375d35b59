package services_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/ArowuTest/orgfees-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	*fixture
	auth  *services.AuthService
	users *services.UserService
	roles *services.RoleService
	root  *models.Actor
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := newFixture(t)
	tokens := jwt.NewTokenService(jwt.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "orgfees-test",
	})
	return &authFixture{
		fixture: f,
		auth:    services.NewAuthService(f.users, f.roles, f.sessions, tokens),
		users:   services.NewUserService(f.users, f.roles, f.orgs, f.sessions),
		roles:   services.NewRoleService(f.roles, f.users),
		root:    &models.Actor{Role: models.RoleSuperAdmin},
	}
}

func (f *authFixture) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(f.ctx, f.root, &models.CreateUserRequest{
		Email: email, FirstName: "Test", LastName: "User", Password: "password123", Role: role,
	})
	require.NoError(t, err)
	return u
}

func (f *authFixture) login(email, password string) (*services.AuthResult, error) {
	return f.auth.Login(f.ctx, &models.LoginRequest{Email: email, Password: password}, services.SessionMeta{UserAgent: "test", IP: "127.0.0.1"})
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "admin@example.edu", models.RoleAdmin)

	res, err := f.login("ADMIN@example.edu", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Contains(t, res.Permissions, models.PermTransactionWrite)
	assert.NotContains(t, res.Permissions, models.PermRoleWrite)

	actor, err := f.auth.Authenticate(f.ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, actor.ID)
	assert.True(t, actor.Can(models.PermStudentWrite))

	_, err = f.auth.Authenticate(f.ctx, res.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	u := f.createUser(t, "user@example.edu", models.RoleUser)

	_, err := f.login("user@example.edu", "wrong-password")
	requireStatus(t, err, http.StatusUnauthorized)
	_, err = f.login("nobody@example.edu", "password123")
	requireStatus(t, err, http.StatusUnauthorized)

	inactive := false
	_, err = f.users.UpdateUser(f.ctx, f.root, u.ID.Hex(), &models.UpdateUserRequest{Active: &inactive})
	require.NoError(t, err)
	_, err = f.login("user@example.edu", "password123")
	requireStatus(t, err, http.StatusForbidden)
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "admin@example.edu", models.RoleAdmin)
	first, err := f.login("admin@example.edu", "password123")
	require.NoError(t, err)

	second, err := f.auth.Refresh(f.ctx, first.RefreshToken, services.SessionMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Replaying the rotated token kills the session
	_, err = f.auth.Refresh(f.ctx, first.RefreshToken, services.SessionMeta{})
	requireStatus(t, err, http.StatusUnauthorized)
	_, err = f.auth.Refresh(f.ctx, second.RefreshToken, services.SessionMeta{})
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "admin@example.edu", models.RoleAdmin)
	res, err := f.login("admin@example.edu", "password123")
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(f.ctx, res.RefreshToken))
	_, err = f.auth.Refresh(f.ctx, res.RefreshToken, services.SessionMeta{})
	requireStatus(t, err, http.StatusUnauthorized)

	require.NoError(t, f.auth.Logout(f.ctx, "garbage"))
}

func TestChangePasswordSignsOutEverywhere(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "admin@example.edu", models.RoleAdmin)
	res, err := f.login("admin@example.edu", "password123")
	require.NoError(t, err)
	actor, err := f.auth.Authenticate(f.ctx, res.AccessToken)
	require.NoError(t, err)

	err = f.auth.ChangePassword(f.ctx, actor, &models.ChangePasswordRequest{OldPassword: "nope", NewPassword: "newpassword1"})
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, f.auth.ChangePassword(f.ctx, actor, &models.ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1"}))
	_, err = f.auth.Refresh(f.ctx, res.RefreshToken, services.SessionMeta{})
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = f.login("admin@example.edu", "newpassword1")
	require.NoError(t, err)
}

func TestRolesExtendBasePermissions(t *testing.T) {
	f := newAuthFixture(t)
	role, err := f.roles.CreateRole(f.ctx, &models.RoleRequest{
		Name: "Importer", Permissions: []models.Permission{models.PermStudentImport, models.PermStudentImport},
	})
	require.NoError(t, err)
	assert.Len(t, role.Permissions, 1)

	_, err = f.roles.CreateRole(f.ctx, &models.RoleRequest{Name: "Bad", Permissions: []models.Permission{"student:fly"}})
	requireStatus(t, err, http.StatusBadRequest)

	u := f.createUser(t, "viewer@example.edu", models.RoleUser)
	_, err = f.users.AssignRoles(f.ctx, u.ID.Hex(), &models.AssignRolesRequest{Roles: []string{role.ID.Hex()}})
	require.NoError(t, err)

	res, err := f.login("viewer@example.edu", "password123")
	require.NoError(t, err)
	actor, err := f.auth.Authenticate(f.ctx, res.AccessToken)
	require.NoError(t, err)
	assert.True(t, actor.Can(models.PermStudentImport, models.PermStudentRead))
	assert.False(t, actor.Can(models.PermStudentWrite))

	requireStatus(t, f.roles.DeleteRole(f.ctx, role.ID.Hex()), http.StatusConflict)
}
