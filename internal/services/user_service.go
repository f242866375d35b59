package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService handles dashboard account management
type UserService struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
	orgRepo  repositories.OrganizationRepository
	sessions repositories.SessionRepository
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	orgRepo repositories.OrganizationRepository,
	sessions repositories.SessionRepository,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		orgRepo:  orgRepo,
		sessions: sessions,
	}
}

// GetAllUsers retrieves every account
func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

// GetUserByID retrieves an account by id
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	userID, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	return user, repoError(err, "user")
}

// CreateUser creates an account. Only a superadmin may create another superadmin.
func (s *UserService) CreateUser(ctx context.Context, actor *models.Actor, req *models.CreateUserRequest) (*models.User, error) {
	if err := apperrors.Assert(req.Role != models.RoleSuperAdmin || actor.Role == models.RoleSuperAdmin,
		http.StatusForbidden, "only a superadmin can create superadmin accounts"); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("email is already registered")
	} else if !repositories.IsNotFound(err) {
		return nil, apperrors.Internal(err)
	}

	roles, err := s.resolveRoles(ctx, req.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     strings.TrimSpace(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Password:  hash,
		Role:      req.Role,
		Roles:     roles,
		Active:    true,
	}

	var org *models.Organization
	if req.Organization != "" {
		if org, err = s.findOrganization(ctx, req.Organization); err != nil {
			return nil, err
		}
		user.Organization = &org.ID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, repoError(err, "user")
	}
	if org != nil {
		if err := s.addOfficer(ctx, org, user.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// UpdateUser applies the non-nil fields of req
func (s *UserService) UpdateUser(ctx context.Context, actor *models.Actor, id string, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	touchesSuperadmin := user.Role == models.RoleSuperAdmin || (req.Role != nil && *req.Role == models.RoleSuperAdmin)
	if err := apperrors.Assert(!touchesSuperadmin || actor.Role == models.RoleSuperAdmin,
		http.StatusForbidden, "only a superadmin can modify superadmin accounts"); err != nil {
		return nil, err
	}
	if err := apperrors.Assert(user.ID != actor.ID || req.Active == nil || *req.Active,
		http.StatusBadRequest, "you cannot deactivate your own account"); err != nil {
		return nil, err
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		if _, err := s.userRepo.FindByEmail(ctx, *req.Email); err == nil {
			return nil, apperrors.Conflict("email is already registered")
		} else if !repositories.IsNotFound(err) {
			return nil, apperrors.Internal(err)
		}
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Password != nil {
		if user.Password, err = hashPassword(*req.Password); err != nil {
			return nil, err
		}
	}
	deactivated := false
	if req.Active != nil {
		deactivated = user.Active && !*req.Active
		user.Active = *req.Active
	}

	var previousOrg *primitive.ObjectID
	var newOrg *models.Organization
	orgChanged := false
	if req.Organization != nil {
		previousOrg = user.Organization
		if strings.TrimSpace(*req.Organization) == "" {
			orgChanged = user.Organization != nil
			user.Organization = nil
		} else {
			if newOrg, err = s.findOrganization(ctx, *req.Organization); err != nil {
				return nil, err
			}
			orgChanged = user.Organization == nil || *user.Organization != newOrg.ID
			user.Organization = &newOrg.ID
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, repoError(err, "user")
	}

	if orgChanged {
		if previousOrg != nil {
			if err := s.removeOfficer(ctx, *previousOrg, user.ID); err != nil {
				return nil, err
			}
		}
		if newOrg != nil {
			if err := s.addOfficer(ctx, newOrg, user.ID); err != nil {
				return nil, err
			}
		}
	}
	if deactivated || req.Password != nil {
		if err := s.sessions.InvalidateByUser(ctx, user.ID); err != nil {
			return nil, apperrors.Internal(err)
		}
	}
	return user, nil
}

// AssignRoles replaces the RBAC roles of an account
func (s *UserService) AssignRoles(ctx context.Context, id string, req *models.AssignRolesRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Roles, err = s.resolveRoles(ctx, req.Roles); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, repoError(err, "user")
	}
	return user, nil
}

// DeleteUser deletes an account other than the actor's own
func (s *UserService) DeleteUser(ctx context.Context, actor *models.Actor, id string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := apperrors.Assert(user.ID != actor.ID, http.StatusBadRequest, "you cannot delete your own account"); err != nil {
		return err
	}
	if err := apperrors.Assert(user.Role != models.RoleSuperAdmin || actor.Role == models.RoleSuperAdmin,
		http.StatusForbidden, "only a superadmin can delete superadmin accounts"); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return repoError(err, "user")
	}
	if user.Organization != nil {
		if err := s.removeOfficer(ctx, *user.Organization, user.ID); err != nil {
			return err
		}
	}
	if err := s.sessions.InvalidateByUser(ctx, user.ID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *UserService) resolveRoles(ctx context.Context, hexes []string) ([]primitive.ObjectID, error) {
	ids, err := parseIDs(hexes, "role")
	if err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := apperrors.Assert(len(roles) == len(ids), http.StatusBadRequest, "one or more roles do not exist"); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *UserService) findOrganization(ctx context.Context, hex string) (*models.Organization, error) {
	orgID, err := parseID(hex, "organization")
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if repositories.IsNotFound(err) {
		return nil, apperrors.BadRequest("organization does not exist")
	}
	return org, repoError(err, "organization")
}

func (s *UserService) addOfficer(ctx context.Context, org *models.Organization, userID primitive.ObjectID) error {
	for _, id := range org.Officers {
		if id == userID {
			return nil
		}
	}
	org.Officers = append(org.Officers, userID)
	return repoError(s.orgRepo.Update(ctx, org), "organization")
}

func (s *UserService) removeOfficer(ctx context.Context, orgID, userID primitive.ObjectID) error {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil
		}
		return apperrors.Internal(err)
	}
	officers := org.Officers[:0]
	for _, id := range org.Officers {
		if id != userID {
			officers = append(officers, id)
		}
	}
	org.Officers = officers
	return repoError(s.orgRepo.Update(ctx, org), "organization")
}

// SeedSuperAdmin creates the first account of an empty installation as a superadmin
func (s *UserService) SeedSuperAdmin(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := apperrors.Assert(count == 0, http.StatusConflict, "users already exist; create accounts through the API"); err != nil {
		return nil, err
	}
	req.Role = models.RoleSuperAdmin
	return s.CreateUser(ctx, &models.Actor{Role: models.RoleSuperAdmin}, req)
}

// ResetPassword sets a new password for the account with the given email and signs it out everywhere
func (s *UserService) ResetPassword(ctx context.Context, email, password string) error {
	if err := apperrors.Assert(len(password) >= 8, http.StatusBadRequest, "password must be at least 8 characters"); err != nil {
		return err
	}
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return repoError(err, "user")
	}
	if user.Password, err = hashPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return repoError(err, "user")
	}
	if err := s.sessions.InvalidateByUser(ctx, user.ID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
