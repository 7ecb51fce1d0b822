// internal/handlers/interview.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/services"
	"github.com/javajoker/placement-backend/internal/utils"
)

type InterviewHandler struct {
	interviewService *services.InterviewService
}

func NewInterviewHandler(interviewService *services.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
	}
}

// POST /hod/interviews
func (h *InterviewHandler) Schedule(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req services.ScheduleInterviewRequest
	if !bindJSON(c, &req) {
		return
	}

	iv, created, err := h.interviewService.Schedule(c.Request.Context(), identity, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	if created {
		utils.CreatedResponse(c, i18n.KeyInterviewScheduled, gin.H{"id": iv.ID, "interview": iv})
		return
	}
	c.JSON(http.StatusOK, utils.APIResponse{
		Success: true,
		Data:    gin.H{"id": iv.ID, "interview": iv},
		Message: i18n.T(utils.GetLangFromContext(c), i18n.KeyInterviewRescheduled),
	})
}

// GET /hod/interviews?upcoming=true&student=
func (h *InterviewHandler) ListForHOD(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	query := services.InterviewQuery{}
	if upcoming, err := strconv.ParseBool(c.DefaultQuery("upcoming", "false")); err == nil {
		query.Upcoming = upcoming
	}
	if raw := c.Query("student"); raw != "" {
		studentID, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationID, "student"), nil)
			return
		}
		query.StudentID = &studentID
	}

	interviews, err := h.interviewService.ListForHOD(c.Request.Context(), identity, query)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.Paginate(interviews, utils.GetPaginationParams(c)))
}

// PATCH /hod/interviews/:id/result
func (h *InterviewHandler) RecordResult(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	interviewID, ok := parseIDParam(c, "id", "interview")
	if !ok {
		return
	}

	var req services.RecordResultRequest
	if !bindJSON(c, &req) {
		return
	}

	iv, err := h.interviewService.RecordResult(c.Request.Context(), identity, interviewID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyInterviewScored, iv)
}
