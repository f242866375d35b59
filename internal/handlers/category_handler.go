package handlers

import (
	"net/http"

	"github.com/ArowuTest/orgfees-backend/internal/middleware"
	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles fee category requests
type CategoryHandler struct {
	categoryService *services.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GetAllCategories handles GET /category?organization=<id>
func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.categoryService.GetAllCategories(c.Request.Context(), middleware.GetTerm(c), c.Query("organization"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, categories, "")
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	category, err := h.categoryService.GetCategoryByID(c.Request.Context(), middleware.GetTerm(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, category, "")
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.CreateCategory(c.Request.Context(), middleware.GetTerm(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, category, "category created")
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.UpdateCategory(c.Request.Context(), middleware.GetTerm(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, category, "category updated")
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Request.Context(), middleware.GetTerm(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "category deleted")
}
