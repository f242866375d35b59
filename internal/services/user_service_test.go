package services_test

import (
	"net/http"
	"testing"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlySuperadminManagesSuperadmins(t *testing.T) {
	f := newAuthFixture(t)
	admin := models.NewActor(f.createUser(t, "admin@example.edu", models.RoleAdmin), nil)

	_, err := f.users.CreateUser(f.ctx, admin, &models.CreateUserRequest{
		Email: "root2@example.edu", FirstName: "Root", LastName: "Two", Password: "password123", Role: models.RoleSuperAdmin,
	})
	requireStatus(t, err, http.StatusForbidden)

	root := f.createUser(t, "root@example.edu", models.RoleSuperAdmin)
	requireStatus(t, f.users.DeleteUser(f.ctx, admin, root.ID.Hex()), http.StatusForbidden)

	promote := models.RoleSuperAdmin
	_, err = f.users.UpdateUser(f.ctx, admin, admin.ID.Hex(), &models.UpdateUserRequest{Role: &promote})
	requireStatus(t, err, http.StatusForbidden)
}

func TestUserCannotRemoveThemselves(t *testing.T) {
	f := newAuthFixture(t)
	admin := models.NewActor(f.createUser(t, "admin@example.edu", models.RoleAdmin), nil)

	inactive := false
	_, err := f.users.UpdateUser(f.ctx, admin, admin.ID.Hex(), &models.UpdateUserRequest{Active: &inactive})
	requireStatus(t, err, http.StatusBadRequest)
	requireStatus(t, f.users.DeleteUser(f.ctx, admin, admin.ID.Hex()), http.StatusBadRequest)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "admin@example.edu", models.RoleAdmin)

	_, err := f.users.CreateUser(f.ctx, f.root, &models.CreateUserRequest{
		Email: "Admin@Example.edu", FirstName: "Dup", LastName: "User", Password: "password123", Role: models.RoleUser,
	})
	requireStatus(t, err, http.StatusConflict)
}

func TestOfficerAssignmentKeepsOrganizationInSync(t *testing.T) {
	f := newAuthFixture(t)
	officer, err := f.users.CreateUser(f.ctx, f.root, &models.CreateUserRequest{
		Email: "officer@example.edu", FirstName: "Olive", LastName: "Officer", Password: "password123",
		Role: models.RoleOfficer, Organization: f.council.ID.Hex(),
	})
	require.NoError(t, err)

	council, err := f.orgs.FindByID(f.ctx, f.council.ID)
	require.NoError(t, err)
	assert.Contains(t, council.Officers, officer.ID)

	moveTo := f.computing.ID.Hex()
	_, err = f.users.UpdateUser(f.ctx, f.root, officer.ID.Hex(), &models.UpdateUserRequest{Organization: &moveTo})
	require.NoError(t, err)

	council, err = f.orgs.FindByID(f.ctx, f.council.ID)
	require.NoError(t, err)
	assert.NotContains(t, council.Officers, officer.ID)
	computing, err := f.orgs.FindByID(f.ctx, f.computing.ID)
	require.NoError(t, err)
	assert.Contains(t, computing.Officers, officer.ID)

	require.NoError(t, f.users.DeleteUser(f.ctx, f.root, officer.ID.Hex()))
	computing, err = f.orgs.FindByID(f.ctx, f.computing.ID)
	require.NoError(t, err)
	assert.NotContains(t, computing.Officers, officer.ID)
}

func TestDeleteOrganizationWithCategoriesConflicts(t *testing.T) {
	f := newAuthFixture(t)
	orgs := services.NewOrganizationService(f.orgs, f.fixture.users, f.terms)

	requireStatus(t, orgs.DeleteOrganization(f.ctx, testTerm, f.council.ID.Hex()), http.StatusConflict)

	empty, err := orgs.CreateOrganization(f.ctx, &models.OrganizationRequest{Name: "Chess Club", Departments: []string{" bscs", "BSCS", "bsit "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"BSCS", "BSIT"}, empty.Departments)
	assert.True(t, empty.Active)

	_, err = orgs.CreateOrganization(f.ctx, &models.OrganizationRequest{Name: "chess club"})
	requireStatus(t, err, http.StatusConflict)

	require.NoError(t, orgs.DeleteOrganization(f.ctx, testTerm, empty.ID.Hex()))
}

func TestSeedSuperAdminOnlyOnEmptyInstallation(t *testing.T) {
	f := newAuthFixture(t)

	root, err := f.users.SeedSuperAdmin(f.ctx, &models.CreateUserRequest{
		Email: "first@example.edu", FirstName: "First", LastName: "Admin", Password: "password123", Role: models.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, root.Role)

	_, err = f.users.SeedSuperAdmin(f.ctx, &models.CreateUserRequest{
		Email: "second@example.edu", FirstName: "Second", LastName: "Admin", Password: "password123",
	})
	requireStatus(t, err, http.StatusConflict)
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "admin@example.edu", models.RoleAdmin)
	res, err := f.login("admin@example.edu", "password123")
	require.NoError(t, err)

	requireStatus(t, f.users.ResetPassword(f.ctx, "admin@example.edu", "short"), http.StatusBadRequest)
	requireStatus(t, f.users.ResetPassword(f.ctx, "ghost@example.edu", "password456"), http.StatusNotFound)
	require.NoError(t, f.users.ResetPassword(f.ctx, "ADMIN@example.edu", "password456"))

	_, err = f.login("admin@example.edu", "password123")
	requireStatus(t, err, http.StatusUnauthorized)
	_, err = f.login("admin@example.edu", "password456")
	require.NoError(t, err)

	_, err = f.auth.Refresh(f.ctx, res.RefreshToken, services.SessionMeta{})
	requireStatus(t, err, http.StatusUnauthorized)
}
