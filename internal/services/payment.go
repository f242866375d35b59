package services

import (
	"context"
	"net/http"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// payment is a student/category pair that money is recorded against
type payment struct {
	student  *models.Student
	category *models.Category
	org      *models.Organization
}

// lookup holds the documents list endpoints populate references from
type lookup struct {
	students   map[primitive.ObjectID]*models.Student
	categories map[primitive.ObjectID]*models.Category
	orgs       map[primitive.ObjectID]*models.Organization
}

func loadLookup(ctx context.Context, orgRepo repositories.OrganizationRepository, repos *repositories.TermRepositories) (*lookup, error) {
	students, err := repos.Students.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	categories, err := repos.Categories.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	orgs, err := orgRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &lookup{
		students:   indexByID(students, func(s *models.Student) primitive.ObjectID { return s.ID }),
		categories: indexByID(categories, func(c *models.Category) primitive.ObjectID { return c.ID }),
		orgs:       indexByID(orgs, func(o *models.Organization) primitive.ObjectID { return o.ID }),
	}, nil
}

func (l *lookup) organizationOf(c *models.Category) *models.Organization {
	if c == nil {
		return nil
	}
	return l.orgs[c.Organization]
}

// resolvePayment loads the student and category of a payload and checks the actor may record against them
func resolvePayment(
	ctx context.Context,
	orgRepo repositories.OrganizationRepository,
	repos *repositories.TermRepositories,
	actor *models.Actor,
	studentHex, categoryHex string,
) (*payment, error) {
	studentID, err := parseID(studentHex, "student")
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID(categoryHex, "category")
	if err != nil {
		return nil, err
	}

	student, err := repos.Students.FindByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.BadRequest("student does not exist")
		}
		return nil, apperrors.Internal(err)
	}
	category, err := repos.Categories.FindByID(ctx, categoryID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.BadRequest("category does not exist")
		}
		return nil, apperrors.Internal(err)
	}
	org, err := orgRepo.FindByID(ctx, category.Organization)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.BadRequest("category organization does not exist")
		}
		return nil, apperrors.Internal(err)
	}

	p := &payment{student: student, category: category, org: org}
	return p, p.eligible(actor)
}

// eligible checks the scope, category and course rules of a payment
func (p *payment) eligible(actor *models.Actor) error {
	if err := apperrors.Assert(inScope(actor, p.category.Organization), http.StatusForbidden,
		"you can only record payments for your own organization"); err != nil {
		return err
	}
	if err := apperrors.Assert(p.category.Active, http.StatusBadRequest,
		"category "+p.category.Name+" is inactive"); err != nil {
		return err
	}
	return apperrors.Assert(p.org.CoversCourse(p.student.Course), http.StatusBadRequest,
		"course "+p.student.Course+" does not belong to "+p.org.Name)
}

// paid sums what the student already paid for the category, leaving out one transaction being edited
func (p *payment) paid(ctx context.Context, repos *repositories.TermRepositories, exclude primitive.ObjectID) (decimal.Decimal, error) {
	txs, err := repos.Transactions.FindByStudentAndCategory(ctx, p.student.ID, p.category.ID)
	if err != nil {
		return decimal.Zero, apperrors.Internal(err)
	}
	total := decimal.Zero
	for _, tx := range txs {
		if tx.ID != exclude {
			total = total.Add(tx.Amount.Decimal)
		}
	}
	return total, nil
}

// checkAmount enforces 0 < amount <= fee - paid
func (p *payment) checkAmount(ctx context.Context, repos *repositories.TermRepositories, amount models.Money, exclude primitive.ObjectID) error {
	if err := apperrors.Assert(amount.IsPositive(), http.StatusBadRequest, "amount must be greater than zero"); err != nil {
		return err
	}
	if err := apperrors.Assert(amount.Exponent() >= -2 || amount.Equal(amount.Round(2)), http.StatusBadRequest,
		"amount cannot have more than two decimal places"); err != nil {
		return err
	}
	paid, err := p.paid(ctx, repos, exclude)
	if err != nil {
		return err
	}
	remaining := p.category.Fee.Sub(models.MoneyFromDecimal(paid))
	if !remaining.IsPositive() {
		return apperrors.Newf(http.StatusBadRequest, "%s is already fully paid for %s", p.student.StudentID, p.category.Name)
	}
	return apperrors.Assert(amount.LessThanOrEqual(remaining.Decimal), http.StatusBadRequest,
		"amount exceeds the remaining balance of "+remaining.StringFixed(2))
}
