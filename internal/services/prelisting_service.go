package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/logger"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrelistingService manages intents to pay and turns them into transactions
type PrelistingService struct {
	orgRepo      repositories.OrganizationRepository
	terms        repositories.TermResolver
	transactions *TransactionService
}

// NewPrelistingService creates a new PrelistingService
func NewPrelistingService(
	orgRepo repositories.OrganizationRepository,
	terms repositories.TermResolver,
	transactions *TransactionService,
) *PrelistingService {
	return &PrelistingService{orgRepo: orgRepo, terms: terms, transactions: transactions}
}

// GetPrelistings populates, filters, sorts and paginates the term's prelistings
func (s *PrelistingService) GetPrelistings(ctx context.Context, term models.SchoolTerm, actor *models.Actor, q models.ListQuery) (models.Page[*models.PrelistingDetail], error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return models.Page[*models.PrelistingDetail]{}, err
	}
	l, err := loadLookup(ctx, s.orgRepo, repos)
	if err != nil {
		return models.Page[*models.PrelistingDetail]{}, err
	}
	all, err := repos.Prelistings.FindAll(ctx)
	if err != nil {
		return models.Page[*models.PrelistingDetail]{}, apperrors.Internal(err)
	}

	details := make([]*models.PrelistingDetail, 0, len(all))
	for _, p := range all {
		d := populatePrelisting(p, l)
		if d.Category != nil && !inScope(actor, d.Category.Organization) {
			continue
		}
		details = append(details, d)
	}
	return applyQuery(details, q, prelistingView), nil
}

func (s *PrelistingService) GetPrelistingByID(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string) (*models.PrelistingDetail, error) {
	repos, p, err := s.find(ctx, term, actor, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, repos, p)
}

// CreatePrelisting records an intent to pay. A student has at most one pending prelisting per category.
func (s *PrelistingService) CreatePrelisting(ctx context.Context, term models.SchoolTerm, actor *models.Actor, req *models.PrelistingRequest) (*models.PrelistingDetail, error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	pay, err := resolvePayment(ctx, s.orgRepo, repos, actor, req.Student, req.Category)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoPending(ctx, repos, pay, primitive.NilObjectID); err != nil {
		return nil, err
	}
	if err := pay.checkAmount(ctx, repos, req.Amount, primitive.NilObjectID); err != nil {
		return nil, err
	}

	p := &models.Prelisting{
		Student:   pay.student.ID,
		Category:  pay.category.ID,
		Amount:    models.MoneyFromDecimal(req.Amount.Round(2)),
		Status:    models.PrelistingPending,
		Remarks:   strings.TrimSpace(req.Remarks),
		CreatedBy: actor.ID,
	}
	if err := repos.Prelistings.Create(ctx, p); err != nil {
		if repositories.IsDuplicate(err) {
			return nil, apperrors.Conflict("student already has a pending prelisting for this category")
		}
		return nil, apperrors.Internal(err)
	}
	return s.detail(ctx, repos, p)
}

// UpdatePrelisting edits a pending prelisting
func (s *PrelistingService) UpdatePrelisting(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string, req *models.PrelistingRequest) (*models.PrelistingDetail, error) {
	repos, p, err := s.find(ctx, term, actor, id)
	if err != nil {
		return nil, err
	}
	if err := apperrors.Assert(p.Status == models.PrelistingPending, http.StatusBadRequest,
		"only pending prelistings can be edited"); err != nil {
		return nil, err
	}

	pay, err := resolvePayment(ctx, s.orgRepo, repos, actor, req.Student, req.Category)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoPending(ctx, repos, pay, p.ID); err != nil {
		return nil, err
	}
	if err := pay.checkAmount(ctx, repos, req.Amount, primitive.NilObjectID); err != nil {
		return nil, err
	}

	p.Student = pay.student.ID
	p.Category = pay.category.ID
	p.Amount = models.MoneyFromDecimal(req.Amount.Round(2))
	p.Remarks = strings.TrimSpace(req.Remarks)
	if err := repos.Prelistings.Update(ctx, p); err != nil {
		if repositories.IsDuplicate(err) {
			return nil, apperrors.Conflict("student already has a pending prelisting for this category")
		}
		return nil, repoError(err, "prelisting")
	}
	return s.detail(ctx, repos, p)
}

// DeletePrelisting deletes a prelisting that has not been confirmed
func (s *PrelistingService) DeletePrelisting(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string) error {
	repos, p, err := s.find(ctx, term, actor, id)
	if err != nil {
		return err
	}
	if err := apperrors.Assert(p.Status != models.PrelistingConfirmed, http.StatusConflict,
		"a confirmed prelisting cannot be deleted, delete its transaction first"); err != nil {
		return err
	}
	return repoError(repos.Prelistings.Delete(ctx, p.ID), "prelisting")
}

// ConfirmPrelisting records the transaction of a pending prelisting under the usual payment rules
func (s *PrelistingService) ConfirmPrelisting(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string, req *models.ConfirmPrelistingRequest) (*models.PrelistingDetail, error) {
	repos, p, err := s.find(ctx, term, actor, id)
	if err != nil {
		return nil, err
	}
	if err := apperrors.Assert(p.Status == models.PrelistingPending, http.StatusBadRequest,
		"only pending prelistings can be confirmed"); err != nil {
		return nil, err
	}

	pay, err := resolvePayment(ctx, s.orgRepo, repos, actor, p.Student.Hex(), p.Category.Hex())
	if err != nil {
		return nil, err
	}

	amount := p.Amount
	remarks := p.Remarks
	var date *time.Time
	if req != nil {
		if req.Amount != nil {
			amount = *req.Amount
		}
		if strings.TrimSpace(req.Remarks) != "" {
			remarks = req.Remarks
		}
		date = req.Date
	}

	tx, err := s.transactions.record(ctx, term, repos, actor, pay, amount, date, remarks, &p.ID)
	if err != nil {
		return nil, err
	}

	p.Status = models.PrelistingConfirmed
	p.Transaction = &tx.ID
	if err := repos.Prelistings.Update(ctx, p); err != nil {
		// Roll back the transaction so the prelisting can be confirmed again
		if derr := repos.Transactions.Delete(ctx, tx.ID); derr != nil {
			logger.Error().Err(derr).Str("receipt", tx.ReceiptNo).Msg("Failed to roll back transaction of unconfirmed prelisting")
		}
		return nil, apperrors.Internal(err)
	}
	return s.detail(ctx, repos, p)
}

// CancelPrelisting cancels a pending prelisting
func (s *PrelistingService) CancelPrelisting(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string) (*models.PrelistingDetail, error) {
	repos, p, err := s.find(ctx, term, actor, id)
	if err != nil {
		return nil, err
	}
	if err := apperrors.Assert(p.Status == models.PrelistingPending, http.StatusBadRequest,
		"only pending prelistings can be cancelled"); err != nil {
		return nil, err
	}
	p.Status = models.PrelistingCancelled
	if err := repos.Prelistings.Update(ctx, p); err != nil {
		return nil, repoError(err, "prelisting")
	}
	return s.detail(ctx, repos, p)
}

func (s *PrelistingService) find(ctx context.Context, term models.SchoolTerm, actor *models.Actor, id string) (*repositories.TermRepositories, *models.Prelisting, error) {
	prelistingID, err := parseID(id, "prelisting")
	if err != nil {
		return nil, nil, err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, nil, err
	}
	p, err := repos.Prelistings.FindByID(ctx, prelistingID)
	if err != nil {
		return nil, nil, repoError(err, "prelisting")
	}
	if actor.ScopedTo() != nil {
		c, err := repos.Categories.FindByID(ctx, p.Category)
		if err != nil || !inScope(actor, c.Organization) {
			return nil, nil, apperrors.NotFound("prelisting not found")
		}
	}
	return repos, p, nil
}

func (s *PrelistingService) ensureNoPending(ctx context.Context, repos *repositories.TermRepositories, pay *payment, self primitive.ObjectID) error {
	existing, err := repos.Prelistings.FindPending(ctx, pay.student.ID, pay.category.ID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil
		}
		return apperrors.Internal(err)
	}
	return apperrors.Assert(existing.ID == self, http.StatusConflict,
		"student already has a pending prelisting for this category")
}

func (s *PrelistingService) detail(ctx context.Context, repos *repositories.TermRepositories, p *models.Prelisting) (*models.PrelistingDetail, error) {
	l := &lookup{
		students:   map[primitive.ObjectID]*models.Student{},
		categories: map[primitive.ObjectID]*models.Category{},
		orgs:       map[primitive.ObjectID]*models.Organization{},
	}
	if st, err := repos.Students.FindByID(ctx, p.Student); err == nil {
		l.students[st.ID] = st
	}
	if c, err := repos.Categories.FindByID(ctx, p.Category); err == nil {
		l.categories[c.ID] = c
		if org, err := s.orgRepo.FindByID(ctx, c.Organization); err == nil {
			l.orgs[org.ID] = org
		}
	}
	return populatePrelisting(p, l), nil
}

func populatePrelisting(p *models.Prelisting, l *lookup) *models.PrelistingDetail {
	category := l.categories[p.Category]
	return &models.PrelistingDetail{
		ID:           p.ID,
		Student:      l.students[p.Student],
		Category:     category,
		Organization: l.organizationOf(category),
		Amount:       p.Amount,
		Status:       p.Status,
		Transaction:  p.Transaction,
		Remarks:      p.Remarks,
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func prelistingView(d *models.PrelistingDetail) listView {
	return listView{
		student:   d.Student,
		category:  d.Category,
		amount:    d.Amount,
		date:      d.CreatedAt,
		createdAt: d.CreatedAt,
		status:    string(d.Status),
	}
}
