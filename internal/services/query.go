package services

import (
	"sort"
	"strings"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
)

// listView is what the list filter needs to know about a populated document
type listView struct {
	student   *models.Student
	category  *models.Category
	amount    models.Money
	date      time.Time
	createdAt time.Time
	status    string
}

// applyQuery filters, sorts and paginates populated documents in memory
func applyQuery[T any](items []T, q models.ListQuery, view func(T) listView) models.Page[T] {
	return models.Paginate(filterQuery(items, q, view), q.Page, q.Limit)
}

// filterQuery filters and sorts without paginating
func filterQuery[T any](items []T, q models.ListQuery, view func(T) listView) []T {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if matchesQuery(view(item), q) {
			filtered = append(filtered, item)
		}
	}

	field, desc := parseSort(q.Sort)
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := view(filtered[i]), view(filtered[j])
		if desc {
			return lessBy(field, b, a)
		}
		return lessBy(field, a, b)
	})
	return filtered
}

func matchesQuery(v listView, q models.ListQuery) bool {
	if q.Search != "" && (v.student == nil || !v.student.Matches(q.Search)) {
		return false
	}
	if !q.Category.IsZero() && (v.category == nil || v.category.ID != q.Category) {
		return false
	}
	if !q.Organization.IsZero() && (v.category == nil || v.category.Organization != q.Organization) {
		return false
	}
	if q.Course != "" && (v.student == nil || !strings.EqualFold(v.student.Course, q.Course)) {
		return false
	}
	if q.YearLevel != 0 && (v.student == nil || v.student.YearLevel != q.YearLevel) {
		return false
	}
	if q.Status != "" && !strings.EqualFold(v.status, q.Status) {
		return false
	}
	if !q.From.IsZero() && v.date.Before(q.From) {
		return false
	}
	// To is a calendar day and includes the whole day
	if !q.To.IsZero() && !v.date.Before(q.To.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// parseSort splits "-amount" into ("amount", true). Unknown fields sort by date, newest first.
func parseSort(s string) (string, bool) {
	s = strings.TrimSpace(s)
	desc := strings.HasPrefix(s, "-")
	field := strings.TrimPrefix(s, "-")
	for _, known := range models.SortableFields {
		if field == known {
			return field, desc
		}
	}
	return "date", true
}

func lessBy(field string, a, b listView) bool {
	switch field {
	case "amount":
		return a.amount.LessThan(b.amount.Decimal)
	case "student":
		return strings.ToLower(studentName(a.student)) < strings.ToLower(studentName(b.student))
	case "category":
		return strings.ToLower(categoryName(a.category)) < strings.ToLower(categoryName(b.category))
	case "createdAt":
		return a.createdAt.Before(b.createdAt)
	default:
		return a.date.Before(b.date)
	}
}

func studentName(s *models.Student) string {
	if s == nil {
		return ""
	}
	return s.FullName()
}

func categoryName(c *models.Category) string {
	if c == nil {
		return ""
	}
	return c.Name
}
