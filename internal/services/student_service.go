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

// StudentQuery holds the filters of GET /student
type StudentQuery struct {
	Search    string
	Course    string
	YearLevel int
	Page      int
	Limit     int
}

// StudentService manages the students enrolled in a term
type StudentService struct {
	orgRepo repositories.OrganizationRepository
	terms   repositories.TermResolver
}

// NewStudentService creates a new StudentService
func NewStudentService(orgRepo repositories.OrganizationRepository, terms repositories.TermResolver) *StudentService {
	return &StudentService{orgRepo: orgRepo, terms: terms}
}

// GetStudents searches and paginates the term's students
func (s *StudentService) GetStudents(ctx context.Context, term models.SchoolTerm, q StudentQuery) (models.Page[*models.Student], error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return models.Page[*models.Student]{}, err
	}
	students, err := repos.Students.FindAll(ctx)
	if err != nil {
		return models.Page[*models.Student]{}, apperrors.Internal(err)
	}

	filtered := make([]*models.Student, 0, len(students))
	for _, st := range students {
		if !st.Matches(q.Search) {
			continue
		}
		if q.Course != "" && !strings.EqualFold(st.Course, q.Course) {
			continue
		}
		if q.YearLevel != 0 && st.YearLevel != q.YearLevel {
			continue
		}
		filtered = append(filtered, st)
	}
	return models.Paginate(filtered, q.Page, q.Limit), nil
}

func (s *StudentService) GetStudentByID(ctx context.Context, term models.SchoolTerm, id string) (*models.Student, error) {
	studentID, err := parseID(id, "student")
	if err != nil {
		return nil, err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	student, err := repos.Students.FindByID(ctx, studentID)
	return student, repoError(err, "student")
}

func (s *StudentService) CreateStudent(ctx context.Context, term models.SchoolTerm, req *models.StudentRequest) (*models.Student, error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	student := &models.Student{}
	applyStudent(student, req)
	if err := repos.Students.Create(ctx, student); err != nil {
		return nil, repoError(err, "student id")
	}
	return student, nil
}

func (s *StudentService) UpdateStudent(ctx context.Context, term models.SchoolTerm, id string, req *models.StudentRequest) (*models.Student, error) {
	student, err := s.GetStudentByID(ctx, term, id)
	if err != nil {
		return nil, err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	applyStudent(student, req)
	if err := repos.Students.Update(ctx, student); err != nil {
		return nil, repoError(err, "student id")
	}
	return student, nil
}

// DeleteStudent deletes a student no transaction or prelisting references
func (s *StudentService) DeleteStudent(ctx context.Context, term models.SchoolTerm, id string) error {
	student, err := s.GetStudentByID(ctx, term, id)
	if err != nil {
		return err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return err
	}

	transactions, err := repos.Transactions.CountByStudent(ctx, student.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := apperrors.Assert(transactions == 0, http.StatusConflict,
		fmt.Sprintf("student has %d transaction(s)", transactions)); err != nil {
		return err
	}
	prelistings, err := repos.Prelistings.CountByStudent(ctx, student.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := apperrors.Assert(prelistings == 0, http.StatusConflict,
		fmt.Sprintf("student has %d prelisting(s)", prelistings)); err != nil {
		return err
	}

	return repoError(repos.Students.Delete(ctx, student.ID), "student")
}

// Balance lists, for every active category the student may pay, the fee, the amount paid and what remains
func (s *StudentService) Balance(ctx context.Context, term models.SchoolTerm, id string) ([]models.BalanceLine, error) {
	student, err := s.GetStudentByID(ctx, term, id)
	if err != nil {
		return nil, err
	}
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}

	categories, err := repos.Categories.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	orgs, err := s.orgRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	orgByID := indexByID(orgs, func(o *models.Organization) primitive.ObjectID { return o.ID })

	transactions, err := repos.Transactions.FindByStudent(ctx, student.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	paid := make(map[primitive.ObjectID]decimal.Decimal)
	for _, tx := range transactions {
		paid[tx.Category] = paid[tx.Category].Add(tx.Amount.Decimal)
	}

	lines := make([]models.BalanceLine, 0, len(categories))
	for _, c := range categories {
		org, ok := orgByID[c.Organization]
		_, hasPaid := paid[c.ID]
		// Categories the student already paid into stay listed even if later deactivated
		if !hasPaid && (!c.Active || !ok || !org.CoversCourse(student.Course)) {
			continue
		}
		lines = append(lines, balanceLine(c, paid[c.ID]))
	}
	return lines, nil
}

func balanceLine(c *models.Category, paid decimal.Decimal) models.BalanceLine {
	remaining := c.Fee.Decimal.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	status := models.BalancePartial
	switch {
	case paid.IsZero():
		status = models.BalanceUnpaid
	case remaining.IsZero():
		status = models.BalancePaid
	}
	return models.BalanceLine{
		Category:  c,
		Fee:       c.Fee,
		Paid:      models.MoneyFromDecimal(paid),
		Remaining: models.MoneyFromDecimal(remaining),
		Status:    status,
	}
}

func applyStudent(student *models.Student, req *models.StudentRequest) {
	student.StudentID = strings.TrimSpace(req.StudentID)
	student.FirstName = strings.TrimSpace(req.FirstName)
	student.MiddleName = strings.TrimSpace(req.MiddleName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.Course = strings.ToUpper(strings.TrimSpace(req.Course))
	student.YearLevel = req.YearLevel
	student.Email = strings.ToLower(strings.TrimSpace(req.Email))
}
