package handlers

import (
	"net/http"

	"github.com/ArowuTest/orgfees-backend/internal/middleware"
	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler handles organization requests
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

func (h *OrganizationHandler) GetAllOrganizations(c *gin.Context) {
	orgs, err := h.orgService.GetAllOrganizations(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, orgs, "")
}

func (h *OrganizationHandler) GetOrganizationByID(c *gin.Context) {
	org, err := h.orgService.GetOrganizationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, org, "")
}

func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req models.OrganizationRequest
	if !bindJSON(c, &req) {
		return
	}
	org, err := h.orgService.CreateOrganization(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, org, "organization created")
}

func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	var req models.OrganizationRequest
	if !bindJSON(c, &req) {
		return
	}
	org, err := h.orgService.UpdateOrganization(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, org, "organization updated")
}

// DeleteOrganization handles DELETE /organization/:id. Categories are checked in the request's term.
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	if err := h.orgService.DeleteOrganization(c.Request.Context(), middleware.GetTerm(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "organization deleted")
}
