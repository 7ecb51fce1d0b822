// internal/handlers/task.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/services"
	"github.com/javajoker/placement-backend/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	files       FileStore
}

func NewTaskHandler(taskService *services.TaskService, files FileStore) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		files:       files,
	}
}

// GET /applications/faculty/assignments/:id/tasks
// GET /applications/student/assignments/:id/tasks
func (h *TaskHandler) List(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "id", "assignment")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), identity, assignmentID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, tasks)
}

// POST /applications/faculty/assignments/:id/tasks
func (h *TaskHandler) Add(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "id", "assignment")
	if !ok {
		return
	}

	var req services.AddTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.AddTask(c.Request.Context(), identity, assignmentID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyTaskCreated, task)
}

// PATCH /applications/faculty/assignments/:id/tasks/:taskId
func (h *TaskHandler) Update(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "id", "assignment")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "taskId", "task")
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), identity, assignmentID, taskID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyTaskUpdated, task)
}

// POST /applications/student/assignments/:id/tasks/:taskId/submissions
//
// Accepts JSON or a multipart form with "note", "link" and "file".
func (h *TaskHandler) Submit(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "id", "assignment")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "taskId", "task")
	if !ok {
		return
	}

	var req services.SubmitWorkRequest
	uploaded := false
	if isMultipart(c) {
		req.Note = c.PostForm("note")
		req.Link = c.PostForm("link")
		if req.File, ok = storeUpload(c, h.files, services.UploadCategorySubmissions); !ok {
			return
		}
		uploaded = req.File != nil
	} else if !bindJSON(c, &req) {
		return
	}

	sub, err := h.taskService.SubmitWork(c.Request.Context(), identity, assignmentID, taskID, &req)
	if err != nil {
		if uploaded {
			discardUpload(c, h.files, req.File)
		}
		utils.AppErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeySubmissionCreated, sub)
}
