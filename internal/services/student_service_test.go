package services_test

import (
	"net/http"
	"testing"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStudentNormalizesAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)

	st, err := f.students.CreateStudent(f.ctx, testTerm, &models.StudentRequest{
		StudentID: "2023-00003", FirstName: "Carla", LastName: "Diaz", Course: "bscs", YearLevel: 1, Email: "Carla@Example.EDU",
	})
	require.NoError(t, err)
	assert.Equal(t, "BSCS", st.Course)
	assert.Equal(t, "carla@example.edu", st.Email)

	_, err = f.students.CreateStudent(f.ctx, testTerm, &models.StudentRequest{
		StudentID: "2023-00003", FirstName: "Other", LastName: "Person", Course: "BSIT", YearLevel: 1,
	})
	requireStatus(t, err, http.StatusConflict)
}

func TestStudentsAreIsolatedPerTerm(t *testing.T) {
	f := newFixture(t)
	next := models.SchoolTerm{Semester: 2, Year: 2024}

	page, err := f.students.GetStudents(f.ctx, next, services.StudentQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	_, err = f.students.GetStudentByID(f.ctx, next, f.alice.ID.Hex())
	requireStatus(t, err, http.StatusNotFound)
}

func TestGetStudentsFilters(t *testing.T) {
	f := newFixture(t)

	page, err := f.students.GetStudents(f.ctx, testTerm, services.StudentQuery{Search: "ali"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, f.alice.ID, page.Items[0].ID)

	page, err = f.students.GetStudents(f.ctx, testTerm, services.StudentQuery{Course: "BSIT", YearLevel: 2})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, f.bob.ID, page.Items[0].ID)
}

func TestDeleteStudentWithPaymentsConflicts(t *testing.T) {
	f := newFixture(t)
	f.pay(t, f.alice, f.dues, "10")
	f.prelist(t, f.bob, f.fund, "10")

	requireStatus(t, f.students.DeleteStudent(f.ctx, testTerm, f.alice.ID.Hex()), http.StatusConflict)
	requireStatus(t, f.students.DeleteStudent(f.ctx, testTerm, f.bob.ID.Hex()), http.StatusConflict)

	free, err := f.students.CreateStudent(f.ctx, testTerm, &models.StudentRequest{
		StudentID: "2024-00009", FirstName: "Dan", LastName: "Cruz", Course: "BSED", YearLevel: 1,
	})
	require.NoError(t, err)
	require.NoError(t, f.students.DeleteStudent(f.ctx, testTerm, free.ID.Hex()))
}

func TestBalance(t *testing.T) {
	f := newFixture(t)
	f.pay(t, f.alice, f.dues, "40")
	f.pay(t, f.alice, f.fund, "50")

	lines, err := f.students.Balance(f.ctx, testTerm, f.alice.ID.Hex())
	require.NoError(t, err)
	require.Len(t, lines, 2)
	byCode := map[string]models.BalanceLine{}
	for _, l := range lines {
		byCode[l.Category.Code] = l
	}
	assert.Equal(t, models.BalancePartial, byCode["CS-MEM"].Status)
	assert.Equal(t, "60.00", byCode["CS-MEM"].Remaining.StringFixed(2))
	assert.Equal(t, models.BalancePaid, byCode["SC-FUND"].Status)

	// Bob's course is not covered by the computing society
	lines, err = f.students.Balance(f.ctx, testTerm, f.bob.ID.Hex())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, models.BalanceUnpaid, lines[0].Status)
}

func TestStudentImport(t *testing.T) {
	f := newFixture(t)
	rows := [][]string{
		{"Student No", "Surname", "First Name", "Course", "Year", "Email"},
		{"2024-10001", "Lim", "Grace", "bscs", "1st Year", "grace@example.edu"},
		{"2024-10002", "Tan", "Henry", "BSIT", "2", ""},
		{"2024-10001", "Lim", "Grace", "BSCS", "1", ""},
		{"2021-00001", "Reyes", "Alice", "BSCS", "3", ""},
		{"2024-10003", "", "Ivy", "BSCS", "9", "not-an-email"},
	}

	preview, err := f.students.PreviewStudentImport(f.ctx, testTerm, rows)
	require.NoError(t, err)
	require.Len(t, preview.Rows, 5)
	assert.Equal(t, 2, preview.Valid)
	assert.Equal(t, 3, preview.Invalid)
	assert.Equal(t, "Student No", preview.Columns["studentId"])
	assert.Empty(t, preview.Rows[0].Errors)
	assert.NotEmpty(t, preview.Rows[2].Errors, "repeated id")
	assert.NotEmpty(t, preview.Rows[3].Errors, "existing id")
	assert.Len(t, preview.Rows[4].Errors, 3)

	result, err := f.students.CommitStudentImport(f.ctx, testTerm, preview.Rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 6, result.Errors[0].Row)

	grace, err := f.repos.Students.FindByStudentID(f.ctx, "2024-10001")
	require.NoError(t, err)
	assert.Equal(t, "BSCS", grace.Course)
	assert.Equal(t, 1, grace.YearLevel)
}

func TestStudentImportRequiresColumns(t *testing.T) {
	f := newFixture(t)
	_, err := f.students.PreviewStudentImport(f.ctx, testTerm, [][]string{{"Foo", "Bar"}, {"x", "y"}})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.students.PreviewStudentImport(f.ctx, testTerm, nil)
	requireStatus(t, err, http.StatusBadRequest)
}
