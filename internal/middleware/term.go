package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

const (
	SemesterHeader = "X-Semester"
	YearHeader     = "X-School-Year"
	termKey        = "schoolTerm"
)

// TermMiddleware resolves the school term of the request from the sem/year query
// parameters, then the X-Semester/X-School-Year headers, then current
func TermMiddleware(current models.SchoolTerm) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := current
		if raw := firstNonEmpty(c.Query("sem"), c.GetHeader(SemesterHeader)); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				abort(c, apperrors.BadRequest("invalid semester: "+raw))
				return
			}
			term.Semester = n
		}
		if raw := firstNonEmpty(c.Query("year"), c.GetHeader(YearHeader)); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				abort(c, apperrors.BadRequest("invalid school year: "+raw))
				return
			}
			term.Year = n
		}
		if err := term.Validate(); err != nil {
			abort(c, apperrors.Wrap(err, http.StatusBadRequest, "invalid school term: "+err.Error()))
			return
		}
		c.Set(termKey, term)
		c.Next()
	}
}

// GetTerm returns the term resolved by TermMiddleware
func GetTerm(c *gin.Context) models.SchoolTerm {
	term, _ := c.MustGet(termKey).(models.SchoolTerm)
	return term
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
