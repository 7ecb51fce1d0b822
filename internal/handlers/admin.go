// internal/handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/services"
	"github.com/javajoker/placement-backend/internal/utils"
)

// AdminHandler serves the directory, the project catalog and mirror repair.
type AdminHandler struct {
	catalogService    *services.CatalogService
	allocationService *services.AllocationService
}

func NewAdminHandler(catalogService *services.CatalogService, allocationService *services.AllocationService) *AdminHandler {
	return &AdminHandler{
		catalogService:    catalogService,
		allocationService: allocationService,
	}
}

// POST /admin/members
func (h *AdminHandler) RegisterMember(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req services.RegisterMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.catalogService.RegisterMember(c.Request.Context(), identity, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyMemberSaved, member)
}

// GET /admin/members?role=&department=
func (h *AdminHandler) ListMembers(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	members, err := h.catalogService.ListMembers(c.Request.Context(), identity, services.MemberQuery{
		Role:       c.Query("role"),
		Department: c.Query("department"),
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.Paginate(members, utils.GetPaginationParams(c)))
}

// POST /admin/projects
func (h *AdminHandler) CreateProject(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req services.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.catalogService.CreateProject(c.Request.Context(), identity, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyProjectCreated, project)
}

// GET /admin/projects?department=&active=
// GET /hod/projects
func (h *AdminHandler) ListProjects(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	activeOnly, err := strconv.ParseBool(c.DefaultQuery("active", "true"))
	if err != nil {
		activeOnly = true
	}

	projects, err := h.catalogService.ListProjects(c.Request.Context(), identity, c.Query("department"), activeOnly)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, projects)
}

// PATCH /admin/projects/:id/deactivate
func (h *AdminHandler) DeactivateProject(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	projectID, ok := parseIDParam(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.catalogService.DeactivateProject(c.Request.Context(), identity, projectID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyProjectDeactivated, project)
}

// POST /admin/applications/:id/reconcile
func (h *AdminHandler) ReconcileMirror(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	applicationID, ok := parseIDParam(c, "id", "application")
	if !ok {
		return
	}

	report, err := h.allocationService.ReconcileMirror(c.Request.Context(), identity, applicationID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyAssignmentReconciled, report)
}
