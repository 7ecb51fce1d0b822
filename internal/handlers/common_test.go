package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/services"
)

type failingFiles struct {
	deleted []string
}

func (f *failingFiles) Store(context.Context, multipart.File, *multipart.FileHeader, services.UploadOptions) (*models.FileRef, error) {
	return nil, errors.New("not supported")
}

func (f *failingFiles) Delete(_ context.Context, ref *models.FileRef) error {
	f.deleted = append(f.deleted, ref.Key)
	return errors.New("bucket unreachable")
}

func (f *failingFiles) URLFor(*models.FileRef, time.Duration) (string, error) {
	return "", nil
}

func (f *failingFiles) GetDefaultUploadOptions(string) services.UploadOptions {
	return services.UploadOptions{}
}

func TestDiscardUploadLogsFailedDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hook := logtest.NewGlobal()
	defer hook.Reset()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/applications", nil)
	files := &failingFiles{}

	discardUpload(c, files, nil)
	assert.Empty(t, files.deleted)
	assert.Empty(t, hook.AllEntries())

	discardUpload(c, files, &models.FileRef{Key: "resumes/abc.pdf"})
	assert.Equal(t, []string{"resumes/abc.pdf"}, files.deleted)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "Failed to discard upload", entry.Message)
	assert.Equal(t, "resumes/abc.pdf", entry.Data["key"])
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "bucket unreachable")
}
