// internal/handlers/common.go
package handlers

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/services"
	"github.com/javajoker/placement-backend/internal/utils"
)

// FileStore keeps upload bytes outside the engine.
type FileStore interface {
	Store(ctx context.Context, file multipart.File, header *multipart.FileHeader, options services.UploadOptions) (*models.FileRef, error)
	Delete(ctx context.Context, ref *models.FileRef) error
	URLFor(ref *models.FileRef, ttl time.Duration) (string, error)
	GetDefaultUploadOptions(category string) services.UploadOptions
}

func callerIdentity(c *gin.Context) (models.Identity, bool) {
	identity, ok := utils.GetIdentityFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return identity, ok
}

func parseIDParam(c *gin.Context, param, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationID, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// storeUpload saves the multipart "file" field. A missing file yields a nil
// ref without error.
func storeUpload(c *gin.Context, files FileStore, category string) (*models.FileRef, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, true
	}
	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyFileUploadFailed), nil)
		return nil, false
	}
	defer file.Close()

	ref, err := files.Store(c.Request.Context(), file, header, files.GetDefaultUploadOptions(category))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return nil, false
	}
	return ref, true
}

// discardUpload removes a stored file whose record update was refused.
func discardUpload(c *gin.Context, files FileStore, ref *models.FileRef) {
	if ref == nil {
		return
	}
	if err := files.Delete(c.Request.Context(), ref); err != nil {
		logrus.WithError(err).WithField("key", ref.Key).Warn("Failed to discard upload")
	}
}
