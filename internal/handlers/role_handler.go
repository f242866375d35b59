package handlers

import (
	"net/http"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// RoleHandler handles RBAC role requests
type RoleHandler struct {
	roleService *services.RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// Permissions handles GET /role/permissions
func (h *RoleHandler) Permissions(c *gin.Context) {
	respond(c, http.StatusOK, h.roleService.Permissions(), "")
}

func (h *RoleHandler) GetAllRoles(c *gin.Context) {
	roles, err := h.roleService.GetAllRoles(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, roles, "")
}

func (h *RoleHandler) GetRoleByID(c *gin.Context) {
	role, err := h.roleService.GetRoleByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, role, "")
}

func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req models.RoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roleService.CreateRole(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, role, "role created")
}

func (h *RoleHandler) UpdateRole(c *gin.Context) {
	var req models.RoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roleService.UpdateRole(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, role, "role updated")
}

func (h *RoleHandler) DeleteRole(c *gin.Context) {
	if err := h.roleService.DeleteRole(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "role deleted")
}
