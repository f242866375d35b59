package services

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/logger"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/ArowuTest/orgfees-backend/internal/utils"
)

// studentColumns are tried in order, so pattern detection claims the distinctive columns before the name columns
var studentColumns = []utils.ColumnSpec{
	{Field: "studentId", Synonyms: []string{"Student ID", "Student No", "Student Number", "ID Number", "ID No", "ID"}, Pattern: utils.IsStudentID},
	{Field: "email", Synonyms: []string{"Email", "Email Address", "E-mail"}, Pattern: utils.IsEmail},
	{Field: "course", Synonyms: []string{"Course", "Program", "Degree", "Course Code"}, Pattern: utils.IsCourseCode},
	{Field: "yearLevel", Synonyms: []string{"Year Level", "Year", "Yr", "Level", "Yr Level"}, Pattern: utils.IsYearLevel},
	{Field: "lastName", Synonyms: []string{"Last Name", "Surname", "Family Name", "Lastname"}, Pattern: utils.IsName},
	{Field: "firstName", Synonyms: []string{"First Name", "Given Name", "Firstname"}, Pattern: utils.IsName},
	{Field: "middleName", Synonyms: []string{"Middle Name", "Middle Initial", "MI", "Middlename"}, Pattern: utils.IsName},
	{Field: "name", Synonyms: []string{"Name", "Full Name", "Student Name"}},
}

// PreviewStudentImport detects the columns of a spreadsheet and validates every row without writing
func (s *StudentService) PreviewStudentImport(ctx context.Context, term models.SchoolTerm, rows [][]string) (*models.ImportPreview, error) {
	if err := apperrors.Assert(len(rows) > 0, http.StatusBadRequest, "file has no rows"); err != nil {
		return nil, err
	}
	d := utils.DetectColumns(rows, studentColumns)
	if err := requireColumns(d, "studentId", "course"); err != nil {
		return nil, err
	}
	_, hasName := d.Index["name"]
	_, hasLast := d.Index["lastName"]
	if err := apperrors.Assert(hasName || hasLast, http.StatusBadRequest, "could not find a name column"); err != nil {
		return nil, err
	}

	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	existing, err := s.existingStudentIDs(ctx, repos)
	if err != nil {
		return nil, err
	}

	preview := &models.ImportPreview{Columns: d.Columns(), Rows: d.Rows(rows)}
	inFile := make(map[string]int)
	for i := range preview.Rows {
		row := &preview.Rows[i]
		req, errs := studentFromRow(row.Data)
		if req != nil {
			if existing[req.StudentID] {
				errs = append(errs, "student id "+req.StudentID+" already exists")
			} else if first, dup := inFile[req.StudentID]; dup {
				errs = append(errs, "student id "+req.StudentID+" repeats row "+strconv.Itoa(first))
			} else {
				inFile[req.StudentID] = row.Row
			}
		}
		row.Errors = errs
		countRow(preview, errs)
	}
	return preview, nil
}

// CommitStudentImport inserts the valid rows. Rows whose student id already exists are skipped.
func (s *StudentService) CommitStudentImport(ctx context.Context, term models.SchoolTerm, rows []models.ImportRow) (*models.ImportResult, error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	existing, err := s.existingStudentIDs(ctx, repos)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{Errors: []models.ImportRow{}}
	for _, row := range rows {
		req, errs := studentFromRow(row.Data)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, models.ImportRow{Row: row.Row, Data: row.Data, Errors: errs})
			continue
		}
		if existing[req.StudentID] {
			result.Skipped++
			continue
		}

		student := &models.Student{}
		applyStudent(student, req)
		if err := repos.Students.Create(ctx, student); err != nil {
			if repositories.IsDuplicate(err) {
				result.Skipped++
				continue
			}
			return nil, apperrors.Internal(err)
		}
		existing[student.StudentID] = true
		result.Inserted++
	}

	logger.Info().Str("term", term.Key()).Int("inserted", result.Inserted).Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).Msg("Student import committed")
	return result, nil
}

func (s *StudentService) existingStudentIDs(ctx context.Context, repos *repositories.TermRepositories) (map[string]bool, error) {
	students, err := repos.Students.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	ids := make(map[string]bool, len(students))
	for _, st := range students {
		ids[st.StudentID] = true
	}
	return ids, nil
}

// studentFromRow validates one row the way StudentRequest binding would
func studentFromRow(data map[string]string) (*models.StudentRequest, []string) {
	get := func(field string) string { return strings.TrimSpace(data[field]) }

	req := &models.StudentRequest{
		StudentID:  get("studentId"),
		FirstName:  get("firstName"),
		MiddleName: get("middleName"),
		LastName:   get("lastName"),
		Course:     strings.ToUpper(get("course")),
		Email:      get("email"),
	}
	if req.LastName == "" && req.FirstName == "" {
		req.LastName, req.FirstName, req.MiddleName = splitName(get("name"))
	}

	var errs []string
	if req.StudentID == "" {
		errs = append(errs, "student id is required")
	} else if len(req.StudentID) > 32 {
		errs = append(errs, "student id is too long")
	}
	if req.LastName == "" {
		errs = append(errs, "last name is required")
	}
	if req.FirstName == "" {
		errs = append(errs, "first name is required")
	}
	if req.Course == "" {
		errs = append(errs, "course is required")
	}
	if level := get("yearLevel"); level == "" {
		errs = append(errs, "year level is required")
	} else if n, err := utils.ParseYearLevel(level); err != nil {
		errs = append(errs, "year level must be between 1 and 6")
	} else {
		req.YearLevel = n
	}
	if req.Email != "" && !utils.IsEmail(req.Email) {
		errs = append(errs, "email is invalid")
	}

	if req.StudentID == "" {
		return nil, errs
	}
	return req, errs
}

// splitName accepts "Last, First Middle" or "First Middle Last"
func splitName(name string) (last, first, middle string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ""
	}
	if comma := strings.Index(name, ","); comma >= 0 {
		last = strings.TrimSpace(name[:comma])
		rest := strings.Fields(name[comma+1:])
		if len(rest) > 0 {
			first = rest[0]
		}
		if len(rest) > 1 {
			// Multi-word first names are common; only a trailing initial is taken as the middle name
			if tail := rest[len(rest)-1]; len(strings.TrimSuffix(tail, ".")) == 1 {
				first = strings.Join(rest[:len(rest)-1], " ")
				middle = tail
			} else {
				first = strings.Join(rest, " ")
			}
		}
		return last, first, middle
	}

	parts := strings.Fields(name)
	switch len(parts) {
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[1], parts[0], ""
	default:
		return parts[len(parts)-1], strings.Join(parts[:len(parts)-2], " "), parts[len(parts)-2]
	}
}

func requireColumns(d utils.Detection, fields ...string) error {
	var missing []string
	for _, f := range fields {
		if _, ok := d.Index[f]; !ok {
			missing = append(missing, f)
		}
	}
	return apperrors.Assert(len(missing) == 0, http.StatusBadRequest,
		"could not find column(s): "+strings.Join(missing, ", "))
}

func countRow(p *models.ImportPreview, errs []string) {
	if len(errs) == 0 {
		p.Valid++
	} else {
		p.Invalid++
	}
}
