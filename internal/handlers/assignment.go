// internal/handlers/assignment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/services"
	"github.com/javajoker/placement-backend/internal/utils"
)

type AssignmentHandler struct {
	allocationService *services.AllocationService
	catalogService    *services.CatalogService
}

func NewAssignmentHandler(allocationService *services.AllocationService, catalogService *services.CatalogService) *AssignmentHandler {
	return &AssignmentHandler{
		allocationService: allocationService,
		catalogService:    catalogService,
	}
}

// PATCH /hod/applications/:id/assign
func (h *AssignmentHandler) Assign(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	applicationID, ok := parseIDParam(c, "id", "application")
	if !ok {
		return
	}

	var req services.AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	asg, err := h.allocationService.Assign(c.Request.Context(), identity, applicationID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyAssignmentCreated, asg)
}

// GET /hod/assignments?status=
func (h *AssignmentHandler) ListForHOD(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	list, err := h.allocationService.ListForHOD(c.Request.Context(), identity, models.AssignmentStatus(c.Query("status")))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.Paginate(list, utils.GetPaginationParams(c)))
}

// GET /hod/assignments/options
func (h *AssignmentHandler) Options(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	options, err := h.allocationService.OptionsForHOD(c.Request.Context(), identity)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, options)
}

// PATCH /hod/assignments/:id/complete
func (h *AssignmentHandler) Complete(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "id", "assignment")
	if !ok {
		return
	}

	asg, err := h.allocationService.Complete(c.Request.Context(), identity, assignmentID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyAssignmentCompleted, asg)
}

// GET /hod/faculties
func (h *AssignmentHandler) Faculties(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	faculty, err := h.catalogService.FacultiesForHOD(c.Request.Context(), identity)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, faculty)
}

// GET /applications/faculty/assignments?status=
func (h *AssignmentHandler) ListForFaculty(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	var status models.AssignmentStatus
	switch c.DefaultQuery("status", string(models.AssignmentStatusActive)) {
	case "", string(models.AssignmentStatusActive):
		status = models.AssignmentStatusActive
	case string(models.AssignmentStatusCompleted):
		status = models.AssignmentStatusCompleted
	case "all":
	default:
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "status"), []string{"active", "completed", "all"})
		return
	}

	list, err := h.allocationService.ListForFaculty(c.Request.Context(), identity, status)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, list)
}

// GET /applications/faculty/assignments/:id
func (h *AssignmentHandler) GetForFaculty(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "id", "assignment")
	if !ok {
		return
	}

	asg, err := h.allocationService.GetForFaculty(c.Request.Context(), identity, assignmentID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, asg)
}
