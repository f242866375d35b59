package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryService manages the fee categories of a term
type CategoryService struct {
	orgRepo repositories.OrganizationRepository
	terms   repositories.TermResolver
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(orgRepo repositories.OrganizationRepository, terms repositories.TermResolver) *CategoryService {
	return &CategoryService{orgRepo: orgRepo, terms: terms}
}

// GetAllCategories lists the term's categories, optionally of one organization
func (s *CategoryService) GetAllCategories(ctx context.Context, term models.SchoolTerm, organization string) ([]*models.Category, error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	var categories []*models.Category
	if organization == "" {
		categories, err = repos.Categories.FindAll(ctx)
	} else {
		orgID, perr := parseID(organization, "organization")
		if perr != nil {
			return nil, perr
		}
		categories, err = repos.Categories.FindByOrganization(ctx, orgID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return categories, nil
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, term models.SchoolTerm, id string) (*models.Category, error) {
	categoryID, err := parseID(id, "category")
	if err != nil {
		return nil, err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	category, err := repos.Categories.FindByID(ctx, categoryID)
	return category, repoError(err, "category")
}

func (s *CategoryService) CreateCategory(ctx context.Context, term models.SchoolTerm, req *models.CategoryRequest) (*models.Category, error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Active: true}
	if err := s.apply(ctx, category, req); err != nil {
		return nil, err
	}
	if err := repos.Categories.Create(ctx, category); err != nil {
		return nil, repoError(err, "category code")
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, term models.SchoolTerm, id string, req *models.CategoryRequest) (*models.Category, error) {
	category, err := s.GetCategoryByID(ctx, term, id)
	if err != nil {
		return nil, err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}

	movesOrganization := req.Organization != category.Organization.Hex()
	if movesOrganization {
		used, err := repos.Transactions.CountByCategory(ctx, category.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if err := apperrors.Assert(used == 0, http.StatusConflict,
			"cannot move a category with transactions to another organization"); err != nil {
			return nil, err
		}
	}

	if err := s.apply(ctx, category, req); err != nil {
		return nil, err
	}
	if err := checkFeeCoversPayments(ctx, repos, category); err != nil {
		return nil, err
	}
	if err := repos.Categories.Update(ctx, category); err != nil {
		return nil, repoError(err, "category code")
	}
	return category, nil
}

// checkFeeCoversPayments rejects a fee lower than what any student already paid
func checkFeeCoversPayments(ctx context.Context, repos *repositories.TermRepositories, category *models.Category) error {
	transactions, err := repos.Transactions.FindByCategory(ctx, category.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	paid := make(map[primitive.ObjectID]decimal.Decimal)
	for _, tx := range transactions {
		paid[tx.Student] = paid[tx.Student].Add(tx.Amount.Decimal)
	}
	for _, total := range paid {
		if total.GreaterThan(category.Fee.Decimal) {
			return apperrors.Newf(http.StatusConflict,
				"fee cannot be lower than the %s a student already paid", total.StringFixed(2))
		}
	}
	return nil
}

// DeleteCategory deletes a category no transaction or prelisting references
func (s *CategoryService) DeleteCategory(ctx context.Context, term models.SchoolTerm, id string) error {
	category, err := s.GetCategoryByID(ctx, term, id)
	if err != nil {
		return err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return err
	}

	transactions, err := repos.Transactions.CountByCategory(ctx, category.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := apperrors.Assert(transactions == 0, http.StatusConflict,
		fmt.Sprintf("category has %d transaction(s)", transactions)); err != nil {
		return err
	}
	prelistings, err := repos.Prelistings.CountByCategory(ctx, category.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := apperrors.Assert(prelistings == 0, http.StatusConflict,
		fmt.Sprintf("category has %d prelisting(s)", prelistings)); err != nil {
		return err
	}

	return repoError(repos.Categories.Delete(ctx, category.ID), "category")
}

func (s *CategoryService) apply(ctx context.Context, category *models.Category, req *models.CategoryRequest) error {
	if err := apperrors.Assert(req.Fee.IsPositive(), http.StatusBadRequest, "fee must be greater than zero"); err != nil {
		return err
	}
	orgID, err := parseID(req.Organization, "organization")
	if err != nil {
		return err
	}
	if _, err := s.orgRepo.FindByID(ctx, orgID); err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.BadRequest("organization does not exist")
		}
		return apperrors.Internal(err)
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	category.Organization = orgID
	category.Fee = models.MoneyFromDecimal(req.Fee.Round(2))
	category.Description = strings.TrimSpace(req.Description)
	if req.Active != nil {
		category.Active = *req.Active
	}
	return nil
}
