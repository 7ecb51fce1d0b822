package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := i18n.Initialize("en"); err != nil {
		panic(err)
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: "en"},
		{header: "hi-IN,hi;q=0.9,en;q=0.8", want: "hi"},
		{header: "fr-FR, de;q=0.8", want: "en"},
		{header: "fr, hi_IN;q=0.5", want: "hi"},
		{header: "EN-gb", want: "en"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveLanguage(tt.header, "en"), tt.header)
	}
}

func newAuthRouter() *gin.Engine {
	utils.SetJWTSecret("middleware-test-secret")

	r := gin.New()
	r.Use(I18nMiddleware("en"))
	r.GET("/student", AuthRequired(), RequireRole(models.RoleStudent), func(c *gin.Context) {
		identity, _ := utils.GetIdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID.String(), "lang": utils.GetLangFromContext(c)})
	})
	r.GET("/no-auth", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func perform(r http.Handler, path string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthRequired(t *testing.T) {
	r := newAuthRouter()
	student := models.Identity{UserID: uuid.New(), Role: models.RoleStudent}
	token, err := utils.GenerateJWT(student, 1)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		w, body := perform(r, "/student", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("not a bearer token", func(t *testing.T) {
		w, _ := perform(r, "/student", map[string]string{"Authorization": "Basic " + token})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w, _ := perform(r, "/student", map[string]string{"Authorization": "Bearer abc.def.ghi"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w, body := perform(r, "/student", map[string]string{
			"Authorization":   "Bearer " + token,
			"Accept-Language": "hi",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, student.UserID.String(), body["user_id"])
		assert.Equal(t, "hi", body["lang"])
	})

	t.Run("wrong role", func(t *testing.T) {
		facultyToken, err := utils.GenerateJWT(models.Identity{UserID: uuid.New(), Role: models.RoleFaculty, Department: models.DepartmentIT}, 1)
		require.NoError(t, err)

		w, body := perform(r, "/student", map[string]string{"Authorization": "Bearer " + facultyToken})
		assert.Equal(t, http.StatusForbidden, w.Code)
		errBody, ok := body["error"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "FORBIDDEN", errBody["code"])
	})

	t.Run("role check without identity", func(t *testing.T) {
		w, _ := perform(r, "/no-auth", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://portal.example"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w, _ := perform(r, "/ping", map[string]string{"Origin": "https://portal.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://portal.example", w.Header().Get("Access-Control-Allow-Origin"))

	w, _ = perform(r, "/ping", map[string]string{"Origin": "https://other.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExtractResource(t *testing.T) {
	id := uuid.NewString()
	assert.Equal(t, "hod", extractResourceType("/v1/hod/applications/"+id))
	assert.Equal(t, "health", extractResourceType("/health"))
	assert.Equal(t, id, extractResourceID("/v1/hod/applications/"+id+"/status"))
	assert.Equal(t, "", extractResourceID("/v1/applications/me"))
}

func TestRedisLimiterNilAllowsAll(t *testing.T) {
	limiter := NewRedisLimiter(nil)
	assert.Nil(t, limiter)
	assert.True(t, limiter.Allow(t.Context(), "key", 1, 0))

	r := gin.New()
	r.GET("/submit", limiter.PerUser("submit", 1, 0), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		w, _ := perform(r, "/submit", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestDefaultLimiterRates(t *testing.T) {
	assert.InDelta(t, 10.0, float64(generalLimiter.rate), 1e-9)
	assert.Equal(t, 20, generalLimiter.burst)
	assert.InDelta(t, 1.0/6, float64(uploadLimiter.rate), 1e-9)
	assert.Equal(t, 10, uploadLimiter.burst)

	r := gin.New()
	r.GET("/ping", NewRateLimiter(generalLimiter.rate, generalLimiter.burst).Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 20; i++ {
		w, _ := perform(r, "/ping", nil)
		require.Equal(t, http.StatusOK, w.Code, i)
	}
	w, response := perform(r, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", response["error"].(map[string]interface{})["code"])
}
