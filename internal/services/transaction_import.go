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
	"github.com/ArowuTest/orgfees-backend/internal/utils"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var transactionColumns = []utils.ColumnSpec{
	{Field: "studentId", Synonyms: []string{"Student ID", "Student No", "Student Number", "ID Number", "ID No", "ID"}, Pattern: utils.IsStudentID},
	{Field: "date", Synonyms: []string{"Date", "Payment Date", "Date Paid", "Transaction Date"}, Pattern: utils.IsDate},
	{Field: "amount", Synonyms: []string{"Amount", "Amount Paid", "Payment", "Paid"}, Pattern: utils.IsAmount},
	{Field: "category", Synonyms: []string{"Category", "Category Code", "Code", "Fee", "Fee Type"}, Pattern: utils.IsCourseCode},
	{Field: "remarks", Synonyms: []string{"Remarks", "Notes", "Note", "Description"}},
}

// importRow is a transaction row resolved against the term's students and categories
type importRow struct {
	pay     *payment
	amount  models.Money
	date    *time.Time
	remarks string
}

// importContext resolves rows by student id and category code or name
type importContext struct {
	students   map[string]*models.Student
	categories []*models.Category
	orgs       map[string]*models.Organization
}

// PreviewTransactionImport detects the columns of a spreadsheet and checks every row against the payment rules.
// Amounts of earlier rows in the same file count toward a student's balance.
func (s *TransactionService) PreviewTransactionImport(ctx context.Context, term models.SchoolTerm, actor *models.Actor, rows [][]string) (*models.ImportPreview, error) {
	if err := apperrors.Assert(len(rows) > 0, http.StatusBadRequest, "file has no rows"); err != nil {
		return nil, err
	}
	d := utils.DetectColumns(rows, transactionColumns)
	if err := requireColumns(d, "studentId", "amount", "category"); err != nil {
		return nil, err
	}

	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	ic, err := s.importContext(ctx, repos)
	if err != nil {
		return nil, err
	}

	preview := &models.ImportPreview{Columns: d.Columns(), Rows: d.Rows(rows)}
	pending := make(map[string]decimal.Decimal)
	for i := range preview.Rows {
		row := &preview.Rows[i]
		r, errs := ic.resolve(actor, row.Data)
		if r != nil {
			key := r.pay.student.ID.Hex() + r.pay.category.ID.Hex()
			paid, err := r.pay.paid(ctx, repos, primitive.NilObjectID)
			if err != nil {
				return nil, err
			}
			remaining := r.pay.category.Fee.Decimal.Sub(paid).Sub(pending[key])
			if r.amount.GreaterThan(remaining) {
				errs = append(errs, "amount exceeds the remaining balance of "+decimal.Max(remaining, decimal.Zero).StringFixed(2))
			} else {
				pending[key] = pending[key].Add(r.amount.Decimal)
			}
		}
		row.Errors = errs
		countRow(preview, errs)
	}
	return preview, nil
}

// CommitTransactionImport records the valid rows one by one under the usual payment rules
func (s *TransactionService) CommitTransactionImport(ctx context.Context, term models.SchoolTerm, actor *models.Actor, rows []models.ImportRow) (*models.ImportResult, error) {
	repos, err := termRepos(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	ic, err := s.importContext(ctx, repos)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{Errors: []models.ImportRow{}}
	for _, row := range rows {
		r, errs := ic.resolve(actor, row.Data)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, models.ImportRow{Row: row.Row, Data: row.Data, Errors: errs})
			continue
		}
		if _, err := s.record(ctx, term, repos, actor, r.pay, r.amount, r.date, r.remarks, nil); err != nil {
			if apperrors.StatusOf(err) >= http.StatusInternalServerError {
				return nil, err
			}
			result.Errors = append(result.Errors, models.ImportRow{Row: row.Row, Data: row.Data, Errors: []string{err.Error()}})
			continue
		}
		result.Inserted++
	}

	logger.Info().Str("term", term.Key()).Int("inserted", result.Inserted).
		Int("errors", len(result.Errors)).Msg("Transaction import committed")
	return result, nil
}

func (s *TransactionService) importContext(ctx context.Context, repos *repositories.TermRepositories) (*importContext, error) {
	students, err := repos.Students.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	categories, err := repos.Categories.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	orgs, err := s.orgRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	ic := &importContext{
		students:   make(map[string]*models.Student, len(students)),
		categories: categories,
		orgs:       make(map[string]*models.Organization, len(orgs)),
	}
	for _, st := range students {
		ic.students[st.StudentID] = st
	}
	for _, o := range orgs {
		ic.orgs[o.ID.Hex()] = o
	}
	return ic, nil
}

// resolve parses a row and applies every payment rule except the balance check
func (ic *importContext) resolve(actor *models.Actor, data map[string]string) (*importRow, []string) {
	get := func(field string) string { return strings.TrimSpace(data[field]) }
	var errs []string

	student, ok := ic.students[get("studentId")]
	if get("studentId") == "" {
		errs = append(errs, "student id is required")
	} else if !ok {
		errs = append(errs, "student "+get("studentId")+" does not exist")
	}

	category, cerr := ic.category(actor, get("category"))
	if cerr != "" {
		errs = append(errs, cerr)
	}

	var amount models.Money
	if d, err := utils.ParseAmount(get("amount")); err != nil || !d.IsPositive() {
		errs = append(errs, "amount must be a number greater than zero")
	} else if !d.Equal(d.Round(2)) {
		errs = append(errs, "amount cannot have more than two decimal places")
	} else {
		amount = models.MoneyFromDecimal(d)
	}

	var date *time.Time
	if raw := get("date"); raw != "" {
		if t, err := utils.ParseDate(raw); err != nil {
			errs = append(errs, "date "+raw+" is not a recognised date")
		} else {
			date = &t
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	pay := &payment{student: student, category: category, org: ic.orgs[category.Organization.Hex()]}
	if pay.org == nil {
		return nil, []string{"category organization does not exist"}
	}
	if err := pay.eligible(actor); err != nil {
		return nil, []string{err.Error()}
	}
	return &importRow{pay: pay, amount: amount, date: date, remarks: get("remarks")}, nil
}

// category finds a category by code, then by name, among those the actor may record against
func (ic *importContext) category(actor *models.Actor, ref string) (*models.Category, string) {
	if ref == "" {
		return nil, "category is required"
	}
	match := func(same func(c *models.Category) bool) []*models.Category {
		var out []*models.Category
		for _, c := range ic.categories {
			if inScope(actor, c.Organization) && same(c) {
				out = append(out, c)
			}
		}
		return out
	}

	found := match(func(c *models.Category) bool { return strings.EqualFold(c.Code, ref) })
	if len(found) == 0 {
		found = match(func(c *models.Category) bool { return strings.EqualFold(c.Name, ref) })
	}
	switch len(found) {
	case 0:
		return nil, "category " + ref + " does not exist"
	case 1:
		return found[0], ""
	default:
		return nil, "category " + ref + " is ambiguous, several organizations use it"
	}
}
