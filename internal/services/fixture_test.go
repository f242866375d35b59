package services_test

import (
	"context"
	"testing"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/ArowuTest/orgfees-backend/internal/repositories/memory"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	services.SetBcryptCost(bcrypt.MinCost)
}

var testTerm = models.SchoolTerm{Semester: 1, Year: 2024}

// fixture is a seeded term with two organizations, one category each and a few students
type fixture struct {
	ctx      context.Context
	users    *memory.UserRepository
	orgs     *memory.OrganizationRepository
	roles    *memory.RoleRepository
	sessions *memory.SessionRepository
	terms    *memory.TermResolver
	repos    *repositories.TermRepositories

	computing *models.Organization // covers BSCS only
	council   *models.Organization // university-wide
	dues      *models.Category     // computing, fee 100
	fund      *models.Category     // council, fee 50

	alice *models.Student // BSCS
	bob   *models.Student // BSIT

	admin   *models.Actor
	officer *models.Actor // officer of council

	transactions *services.TransactionService
	prelistings  *services.PrelistingService
	students     *services.StudentService
	categories   *services.CategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		users:    memory.NewUserRepository(),
		orgs:     memory.NewOrganizationRepository(),
		roles:    memory.NewRoleRepository(),
		sessions: memory.NewSessionRepository(),
		terms:    memory.NewTermResolver(),
	}
	repos, err := f.terms.ForTerm(f.ctx, testTerm)
	require.NoError(t, err)
	f.repos = repos

	f.computing = &models.Organization{Name: "Computing Society", Acronym: "CS", Departments: []string{"BSCS"}, Active: true}
	f.council = &models.Organization{Name: "Student Council", Acronym: "SC", Active: true}
	require.NoError(t, f.orgs.Create(f.ctx, f.computing))
	require.NoError(t, f.orgs.Create(f.ctx, f.council))

	f.dues = &models.Category{Name: "Membership", Code: "CS-MEM", Organization: f.computing.ID, Fee: models.MustMoney("100"), Active: true}
	f.fund = &models.Category{Name: "Council Fund", Code: "SC-FUND", Organization: f.council.ID, Fee: models.MustMoney("50"), Active: true}
	require.NoError(t, repos.Categories.Create(f.ctx, f.dues))
	require.NoError(t, repos.Categories.Create(f.ctx, f.fund))

	f.alice = &models.Student{StudentID: "2021-00001", FirstName: "Alice", LastName: "Reyes", Course: "BSCS", YearLevel: 3}
	f.bob = &models.Student{StudentID: "2022-00002", FirstName: "Bob", LastName: "Santos", Course: "BSIT", YearLevel: 2}
	require.NoError(t, repos.Students.Create(f.ctx, f.alice))
	require.NoError(t, repos.Students.Create(f.ctx, f.bob))

	f.admin = models.NewActor(&models.User{ID: primitive.NewObjectID(), Email: "admin@example.edu", Role: models.RoleAdmin}, nil)
	f.officer = models.NewActor(&models.User{
		ID: primitive.NewObjectID(), Email: "officer@example.edu", Role: models.RoleOfficer, Organization: &f.council.ID,
	}, nil)

	f.transactions = services.NewTransactionService(f.orgs, f.users, f.terms)
	f.prelistings = services.NewPrelistingService(f.orgs, f.terms, f.transactions)
	f.students = services.NewStudentService(f.orgs, f.terms)
	f.categories = services.NewCategoryService(f.orgs, f.terms)
	return f
}

func (f *fixture) pay(t *testing.T, student *models.Student, category *models.Category, amount string) *models.TransactionDetail {
	t.Helper()
	tx, err := f.transactions.CreateTransaction(f.ctx, testTerm, f.admin, &models.TransactionRequest{
		Student: student.ID.Hex(), Category: category.ID.Hex(), Amount: models.MustMoney(amount),
	})
	require.NoError(t, err)
	return tx
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, status, apperrors.StatusOf(err), err.Error())
}
