package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationService manages student organizations
type OrganizationService struct {
	orgRepo  repositories.OrganizationRepository
	userRepo repositories.UserRepository
	terms    repositories.TermResolver
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(
	orgRepo repositories.OrganizationRepository,
	userRepo repositories.UserRepository,
	terms repositories.TermResolver,
) *OrganizationService {
	return &OrganizationService{orgRepo: orgRepo, userRepo: userRepo, terms: terms}
}

func (s *OrganizationService) GetAllOrganizations(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := s.orgRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return orgs, nil
}

func (s *OrganizationService) GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	orgID, err := parseID(id, "organization")
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, orgID)
	return org, repoError(err, "organization")
}

func (s *OrganizationService) CreateOrganization(ctx context.Context, req *models.OrganizationRequest) (*models.Organization, error) {
	officers, err := s.resolveOfficers(ctx, req.Officers)
	if err != nil {
		return nil, err
	}
	org := &models.Organization{
		Name:        strings.TrimSpace(req.Name),
		Acronym:     strings.TrimSpace(req.Acronym),
		Departments: normalizeDepartments(req.Departments),
		Officers:    officers,
		Active:      req.Active == nil || *req.Active,
	}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, repoError(err, "organization")
	}
	if err := s.syncOfficers(ctx, org.ID, nil, officers); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *OrganizationService) UpdateOrganization(ctx context.Context, id string, req *models.OrganizationRequest) (*models.Organization, error) {
	org, err := s.GetOrganizationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	officers, err := s.resolveOfficers(ctx, req.Officers)
	if err != nil {
		return nil, err
	}

	previous := org.Officers
	org.Name = strings.TrimSpace(req.Name)
	org.Acronym = strings.TrimSpace(req.Acronym)
	org.Departments = normalizeDepartments(req.Departments)
	org.Officers = officers
	if req.Active != nil {
		org.Active = *req.Active
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, repoError(err, "organization")
	}
	if err := s.syncOfficers(ctx, org.ID, previous, officers); err != nil {
		return nil, err
	}
	return org, nil
}

// DeleteOrganization deletes an organization no category of the given term belongs to
func (s *OrganizationService) DeleteOrganization(ctx context.Context, term models.SchoolTerm, id string) error {
	org, err := s.GetOrganizationByID(ctx, id)
	if err != nil {
		return err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return err
	}
	categories, err := repos.Categories.CountByOrganization(ctx, org.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := apperrors.Assert(categories == 0, http.StatusConflict,
		fmt.Sprintf("organization has %d categor(ies) in %s", categories, term)); err != nil {
		return err
	}

	if err := s.orgRepo.Delete(ctx, org.ID); err != nil {
		return repoError(err, "organization")
	}
	return s.syncOfficers(ctx, org.ID, org.Officers, nil)
}

func (s *OrganizationService) resolveOfficers(ctx context.Context, hexes []string) ([]primitive.ObjectID, error) {
	ids, err := parseIDs(hexes, "officer")
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, err := s.userRepo.FindByID(ctx, id); err != nil {
			if repositories.IsNotFound(err) {
				return nil, apperrors.Newf(http.StatusBadRequest, "officer %s does not exist", id.Hex())
			}
			return nil, apperrors.Internal(err)
		}
	}
	return ids, nil
}

// syncOfficers points added officers' accounts at the organization and detaches removed ones
func (s *OrganizationService) syncOfficers(ctx context.Context, orgID primitive.ObjectID, before, after []primitive.ObjectID) error {
	keep := make(map[primitive.ObjectID]bool, len(after))
	for _, id := range after {
		keep[id] = true
	}

	for _, id := range before {
		if keep[id] {
			continue
		}
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			continue
		}
		if user.Organization != nil && *user.Organization == orgID {
			user.Organization = nil
			if err := s.userRepo.Update(ctx, user); err != nil {
				return apperrors.Internal(err)
			}
		}
	}

	for _, id := range after {
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			return repoError(err, "officer")
		}
		if user.Organization != nil && *user.Organization == orgID {
			continue
		}
		if user.Organization != nil {
			if err := s.dropOfficer(ctx, *user.Organization, id); err != nil {
				return err
			}
		}
		user.Organization = &orgID
		if err := s.userRepo.Update(ctx, user); err != nil {
			return apperrors.Internal(err)
		}
	}
	return nil
}

// dropOfficer removes an officer who moved to another organization from its previous one
func (s *OrganizationService) dropOfficer(ctx context.Context, orgID, userID primitive.ObjectID) error {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil
	}
	officers := make([]primitive.ObjectID, 0, len(org.Officers))
	for _, id := range org.Officers {
		if id != userID {
			officers = append(officers, id)
		}
	}
	org.Officers = officers
	return repoError(s.orgRepo.Update(ctx, org), "organization")
}

func normalizeDepartments(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, d := range in {
		d = strings.ToUpper(strings.TrimSpace(d))
		if d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
