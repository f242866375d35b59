package memory_test

import (
	"context"
	"testing"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/ArowuTest/orgfees-backend/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserRepositoryUniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	user := &models.User{Email: "Officer@School.edu", Role: models.RoleOfficer}
	require.NoError(t, repo.Create(ctx, user))
	assert.False(t, user.ID.IsZero())

	found, err := repo.FindByEmail(ctx, "officer@school.edu")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	err = repo.Create(ctx, &models.User{Email: "officer@school.edu"})
	assert.True(t, repositories.IsDuplicate(err))

	_, err = repo.FindByID(ctx, primitive.NewObjectID())
	assert.True(t, repositories.IsNotFound(err))
}

func TestRepositoriesHandOutCopies(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrganizationRepository()

	org := &models.Organization{Name: "Computing Society", Departments: []string{"BSCS"}}
	require.NoError(t, repo.Create(ctx, org))

	got, err := repo.FindByID(ctx, org.ID)
	require.NoError(t, err)
	got.Name = "changed"
	got.Departments[0] = "BSIT"

	again, err := repo.FindByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Computing Society", again.Name)
	assert.Equal(t, []string{"BSCS"}, again.Departments)

	byName, err := repo.FindByName(ctx, "computing society")
	require.NoError(t, err)
	assert.Equal(t, org.ID, byName.ID)
}

func TestUpdateAndDeleteMissingRows(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRoleRepository()

	err := repo.Update(ctx, &models.Role{ID: primitive.NewObjectID(), Name: "ghost"})
	assert.True(t, repositories.IsNotFound(err))
	assert.True(t, repositories.IsNotFound(repo.Delete(ctx, primitive.NewObjectID())))
}

func TestCategoryCodeIsUniquePerOrganization(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCategoryRepository()
	orgA, orgB := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, repo.Create(ctx, &models.Category{Name: "Dues", Code: "DUES", Organization: orgA}))
	require.NoError(t, repo.Create(ctx, &models.Category{Name: "Dues", Code: "DUES", Organization: orgB}))
	assert.True(t, repositories.IsDuplicate(repo.Create(ctx, &models.Category{Name: "Other", Code: "DUES", Organization: orgA})))

	n, err := repo.CountByOrganization(ctx, orgA)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOnlyOnePendingPrelistingPerStudentAndCategory(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPrelistingRepository()
	student, category := primitive.NewObjectID(), primitive.NewObjectID()

	first := &models.Prelisting{Student: student, Category: category, Amount: models.MustMoney("50")}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, models.PrelistingPending, first.Status)

	second := &models.Prelisting{Student: student, Category: category, Amount: models.MustMoney("50")}
	assert.True(t, repositories.IsDuplicate(repo.Create(ctx, second)))

	first.Status = models.PrelistingCancelled
	require.NoError(t, repo.Update(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	pending, err := repo.FindPending(ctx, student, category)
	require.NoError(t, err)
	assert.Equal(t, second.ID, pending.ID)
}

func TestTermResolverIsolatesTerms(t *testing.T) {
	ctx := context.Background()
	resolver := memory.NewTermResolver()

	first, err := resolver.ForTerm(ctx, models.SchoolTerm{Semester: 1, Year: 2024})
	require.NoError(t, err)
	require.NoError(t, first.Students.Create(ctx, &models.Student{StudentID: "2021-00001", Course: "BSCS", YearLevel: 3}))

	same, err := resolver.ForTerm(ctx, models.SchoolTerm{Semester: 1, Year: 2024})
	require.NoError(t, err)
	_, err = same.Students.FindByStudentID(ctx, "2021-00001")
	assert.NoError(t, err)

	other, err := resolver.ForTerm(ctx, models.SchoolTerm{Semester: 2, Year: 2024})
	require.NoError(t, err)
	_, err = other.Students.FindByStudentID(ctx, "2021-00001")
	assert.True(t, repositories.IsNotFound(err))

	_, err = resolver.ForTerm(ctx, models.SchoolTerm{Semester: 7, Year: 2024})
	assert.Error(t, err)
}
