// internal/handlers/application.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/services"
	"github.com/javajoker/placement-backend/internal/utils"
)

const documentLinkTTL = 15 * time.Minute

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	files              FileStore
}

func NewApplicationHandler(applicationService *services.ApplicationService, files FileStore) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		files:              files,
	}
}

// POST /applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req services.SubmitApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.Submit(c.Request.Context(), identity, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, i18n.KeyApplicationSubmitted, gin.H{
		"id":           app.ID,
		"status":       app.Status,
		"department":   app.Department,
		"assigned_hod": app.AssignedHOD,
	})
}

// GET /applications/me
func (h *ApplicationHandler) Mine(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	view, err := h.applicationService.Mine(c.Request.Context(), identity)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

// PATCH /applications/me
func (h *ApplicationHandler) UpdateOwn(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req services.UpdateApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.UpdateOwn(c.Request.Context(), identity, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyApplicationUpdated, app)
}

// PATCH /applications/:id/documents/:type
//
// Accepts a multipart "file" field, stored through the file store, or a JSON
// FileRef for content that was uploaded elsewhere.
func (h *ApplicationHandler) UploadDocument(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	applicationID, ok := parseIDParam(c, "id", "application")
	if !ok {
		return
	}
	slot := models.DocumentSlot(c.Param("type"))
	if !slot.Valid() {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "document type"), models.DocumentSlots)
		return
	}

	var ref *models.FileRef
	uploaded := false
	if isMultipart(c) {
		if ref, ok = storeUpload(c, h.files, services.UploadCategoryDocuments); !ok {
			return
		}
		if ref == nil {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyFileRequired), nil)
			return
		}
		uploaded = true
	} else {
		ref = &models.FileRef{}
		if !bindJSON(c, ref) {
			return
		}
	}

	docs, err := h.applicationService.UploadDocument(c.Request.Context(), identity, applicationID, slot, ref)
	if err != nil {
		if uploaded {
			discardUpload(c, h.files, ref)
		}
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyDocumentUploaded, gin.H{"documents": docs})
}

// GET /hod/applications?status=
func (h *ApplicationHandler) ListForHOD(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	apps, err := h.applicationService.ListForHOD(c.Request.Context(), identity, c.Query("status"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.Paginate(apps, utils.GetPaginationParams(c)))
}

// GET /hod/applications/:id
func (h *ApplicationHandler) GetForHOD(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	applicationID, ok := parseIDParam(c, "id", "application")
	if !ok {
		return
	}

	view, err := h.applicationService.GetForHOD(c.Request.Context(), identity, applicationID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

// PATCH /hod/applications/:id/status
func (h *ApplicationHandler) ReviewStatus(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	applicationID, ok := parseIDParam(c, "id", "application")
	if !ok {
		return
	}

	var req services.ReviewStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.ReviewStatus(c.Request.Context(), identity, applicationID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyApplicationReviewed, gin.H{
		"id":     app.ID,
		"status": app.Status,
	})
}

// GET /hod/applications/:id/documents/:type
func (h *ApplicationHandler) DocumentLink(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}
	applicationID, ok := parseIDParam(c, "id", "application")
	if !ok {
		return
	}
	slot := models.DocumentSlot(c.Param("type"))
	if !slot.Valid() {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "document type"), models.DocumentSlots)
		return
	}

	view, err := h.applicationService.GetForHOD(c.Request.Context(), identity, applicationID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	ref := view.Application.Documents.Data().Get(slot)
	if ref.Empty() {
		utils.AppErrorResponse(c, apperror.NotFound("document not uploaded"))
		return
	}

	url, err := h.files.URLFor(ref, documentLinkTTL)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"url":          url,
		"filename":     ref.Filename,
		"content_type": ref.ContentType,
		"expires_in":   int(documentLinkTTL.Seconds()),
	})
}
