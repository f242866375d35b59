package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
)

// RoleService manages RBAC roles
type RoleService struct {
	roleRepo repositories.RoleRepository
	userRepo repositories.UserRepository
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo repositories.RoleRepository, userRepo repositories.UserRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo, userRepo: userRepo}
}

// Permissions lists every permission a role may grant
func (s *RoleService) Permissions() []models.Permission {
	return models.AllPermissions
}

func (s *RoleService) GetAllRoles(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return roles, nil
}

func (s *RoleService) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	roleID, err := parseID(id, "role")
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, roleID)
	return role, repoError(err, "role")
}

func (s *RoleService) CreateRole(ctx context.Context, req *models.RoleRequest) (*models.Role, error) {
	perms, err := validPermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	role := &models.Role{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Permissions: perms,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, repoError(err, "role")
	}
	return role, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, id string, req *models.RoleRequest) (*models.Role, error) {
	role, err := s.GetRoleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.Permissions, err = validPermissions(req.Permissions); err != nil {
		return nil, err
	}
	role.Name = strings.TrimSpace(req.Name)
	role.Description = strings.TrimSpace(req.Description)
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, repoError(err, "role")
	}
	return role, nil
}

// DeleteRole deletes a role no user holds
func (s *RoleService) DeleteRole(ctx context.Context, id string) error {
	role, err := s.GetRoleByID(ctx, id)
	if err != nil {
		return err
	}
	holders, err := s.userRepo.CountByRole(ctx, role.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := apperrors.Assert(holders == 0, http.StatusConflict,
		fmt.Sprintf("role is assigned to %d user(s)", holders)); err != nil {
		return err
	}
	return repoError(s.roleRepo.Delete(ctx, role.ID), "role")
}

func validPermissions(perms []models.Permission) ([]models.Permission, error) {
	seen := make(map[models.Permission]bool, len(perms))
	out := make([]models.Permission, 0, len(perms))
	for _, p := range perms {
		if !models.IsValidPermission(p) {
			return nil, apperrors.Newf(http.StatusBadRequest, "unknown permission %q", p)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}
