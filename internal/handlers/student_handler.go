package handlers

import (
	"net/http"
	"strings"

	"github.com/ArowuTest/orgfees-backend/internal/middleware"
	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// StudentHandler handles student requests
type StudentHandler struct {
	studentService *services.StudentService
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(studentService *services.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// GetStudents handles GET /student?search=&course=&yearLevel=&page=&limit=
func (h *StudentHandler) GetStudents(c *gin.Context) {
	q := services.StudentQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Course: strings.TrimSpace(c.Query("course")),
	}
	var err error
	if q.YearLevel, err = queryInt(c, "yearLevel"); err != nil {
		fail(c, err)
		return
	}
	if q.Page, err = queryInt(c, "page"); err != nil {
		fail(c, err)
		return
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		fail(c, err)
		return
	}

	page, err := h.studentService.GetStudents(c.Request.Context(), middleware.GetTerm(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	respondPage(c, page, "")
}

func (h *StudentHandler) GetStudentByID(c *gin.Context) {
	student, err := h.studentService.GetStudentByID(c.Request.Context(), middleware.GetTerm(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, student, "")
}

func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req models.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.studentService.CreateStudent(c.Request.Context(), middleware.GetTerm(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, student, "student created")
}

func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req models.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.studentService.UpdateStudent(c.Request.Context(), middleware.GetTerm(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, student, "student updated")
}

func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.studentService.DeleteStudent(c.Request.Context(), middleware.GetTerm(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "student deleted")
}

// Balance handles GET /student/:id/balance
func (h *StudentHandler) Balance(c *gin.Context) {
	lines, err := h.studentService.Balance(c.Request.Context(), middleware.GetTerm(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, lines, "")
}

// PreviewImport handles POST /student/import/preview (multipart "file")
func (h *StudentHandler) PreviewImport(c *gin.Context) {
	rows, err := readUpload(c)
	if err != nil {
		fail(c, err)
		return
	}
	preview, err := h.studentService.PreviewStudentImport(c.Request.Context(), middleware.GetTerm(c), rows)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, preview, "")
}

// CommitImport handles POST /student/import
func (h *StudentHandler) CommitImport(c *gin.Context) {
	var req models.ImportCommitRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.studentService.CommitStudentImport(c.Request.Context(), middleware.GetTerm(c), req.Rows)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, result, "import finished")
}
