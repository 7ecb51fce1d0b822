// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/models"
)

const (
	ContextKeyIdentity = "identity"
	ContextKeyLang     = "lang"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Resource string      `json:"resource,omitempty"`
	Details  interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessMessageResponse returns data with a localized confirmation.
func SuccessMessageResponse(c *gin.Context, key string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Message: i18n.T(GetLangFromContext(c), key),
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, key string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
		Message: i18n.T(GetLangFromContext(c), key),
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, string(apperror.KindValidation), message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAuthRoleDenied)
	}
	ErrorResponse(c, http.StatusForbidden, string(apperror.KindForbidden), message, nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyErrorInternal)
	}
	ErrorResponse(c, http.StatusInternalServerError, string(apperror.KindInternal), message, nil)
}

// AppErrorResponse maps an engine error onto the envelope. The code is the
// error kind and the message is the reason the engine gave.
func AppErrorResponse(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled error")
		InternalErrorResponse(c, "")
		return
	}

	lang := GetLangFromContext(c)
	message := appErr.Message
	if lang != "en" || message == "" {
		message = i18n.T(lang, "errors."+string(appErr.Kind))
		if appErr.Kind == apperror.KindConflict && i18n.Has(lang, i18n.KeyConflictPrefix+appErr.Resource) {
			message = i18n.T(lang, i18n.KeyConflictPrefix+appErr.Resource)
		}
	}

	switch appErr.Kind {
	case apperror.KindInternal, apperror.KindUnavailable:
		logrus.WithError(err).WithField("path", c.FullPath()).Warn("Request failed")
	}

	c.JSON(apperror.HTTPStatus(appErr.Kind), APIResponse{
		Success: false,
		Error: &APIError{
			Code:     string(appErr.Kind),
			Message:  message,
			Resource: appErr.Resource,
			Details:  appErr.Details,
		},
	})
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get(ContextKeyLang); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en"
}

func GetIdentityFromContext(c *gin.Context) (models.Identity, bool) {
	if value, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := value.(models.Identity); ok {
			return identity, true
		}
	}
	return models.Identity{}, false
}
