package handlers

import (
	"net/http"

	"github.com/ArowuTest/orgfees-backend/internal/middleware"
	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// PrelistingHandler handles prelisting requests
type PrelistingHandler struct {
	prelistingService *services.PrelistingService
}

// NewPrelistingHandler creates a new PrelistingHandler
func NewPrelistingHandler(prelistingService *services.PrelistingService) *PrelistingHandler {
	return &PrelistingHandler{prelistingService: prelistingService}
}

func (h *PrelistingHandler) GetPrelistings(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.prelistingService.GetPrelistings(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	respondPage(c, page, "")
}

func (h *PrelistingHandler) GetPrelistingByID(c *gin.Context) {
	p, err := h.prelistingService.GetPrelistingByID(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, p, "")
}

func (h *PrelistingHandler) CreatePrelisting(c *gin.Context) {
	var req models.PrelistingRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.prelistingService.CreatePrelisting(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, p, "prelisting created")
}

func (h *PrelistingHandler) UpdatePrelisting(c *gin.Context) {
	var req models.PrelistingRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.prelistingService.UpdatePrelisting(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, p, "prelisting updated")
}

func (h *PrelistingHandler) DeletePrelisting(c *gin.Context) {
	if err := h.prelistingService.DeletePrelisting(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "prelisting deleted")
}

// ConfirmPrelisting handles POST /prelisting/:id/confirm; the body may override amount, date and remarks
func (h *PrelistingHandler) ConfirmPrelisting(c *gin.Context) {
	var req models.ConfirmPrelistingRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	p, err := h.prelistingService.ConfirmPrelisting(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, p, "prelisting confirmed")
}

func (h *PrelistingHandler) CancelPrelisting(c *gin.Context) {
	p, err := h.prelistingService.CancelPrelisting(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, p, "prelisting cancelled")
}
