package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/placement-backend/internal/app"
	"github.com/javajoker/placement-backend/internal/config"
	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
	"github.com/javajoker/placement-backend/internal/utils"
)

type RouterTestSuite struct {
	suite.Suite
	router *gin.Engine
	store  store.Store

	admin   models.Identity
	hod     models.Identity
	faculty models.Identity
	student models.Identity
}

func (suite *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize("en"))
}

func (suite *RouterTestSuite) SetupTest() {
	cfg := &config.Config{
		Environment: "test",
		Store:       config.StoreConfig{Driver: "badger", BadgerInMemory: true, RetryAttempts: 10},
		Engine: config.EngineConfig{
			StoreTimeoutMS:             5000,
			ExclusiveFacultyAllocation: true,
		},
		JWT:  config.JWTConfig{SecretKey: "router-test-secret", AccessTokenTTL: 1},
		I18n: config.I18nConfig{DefaultLocale: "en"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		AWS: config.AWSConfig{
			LocalUploadDir: suite.T().TempDir(),
			PublicBaseURL:  "http://localhost:8080",
		},
	}

	st, err := app.OpenStore(cfg, false)
	suite.Require().NoError(err)
	suite.store = st

	suite.router, err = Initialize(Dependencies{Store: st}, cfg)
	suite.Require().NoError(err)

	suite.admin = models.Identity{UserID: uuid.New(), Role: models.RoleAdmin}
	suite.student = models.Identity{UserID: uuid.New(), Role: models.RoleStudent}
	suite.hod = suite.registerMember("Dr. Rao", "rao@college.edu", "hod", "CSE")
	suite.faculty = suite.registerMember("Prof. Iyer", "iyer@college.edu", "faculty", "cse")
}

func (suite *RouterTestSuite) TearDownTest() {
	suite.store.Close()
}

func (suite *RouterTestSuite) token(identity models.Identity) string {
	token, err := utils.GenerateJWT(identity, 1)
	suite.Require().NoError(err)
	return token
}

func (suite *RouterTestSuite) do(method, path string, as *models.Identity, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+suite.token(*as))
	}
	return suite.serve(req)
}

func (suite *RouterTestSuite) serve(req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w, response
}

func (suite *RouterTestSuite) registerMember(name, email, role, dept string) models.Identity {
	id := uuid.New()
	w, response := suite.do(http.MethodPost, "/v1/admin/members", &suite.admin, map[string]interface{}{
		"id":         id,
		"name":       name,
		"email":      email,
		"role":       role,
		"department": dept,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Require().Equal(true, response["success"])

	normalized, _ := models.NormalizeDepartment(dept)
	return models.Identity{UserID: id, Role: models.Role(role), Department: normalized}
}

func data(response map[string]interface{}) map[string]interface{} {
	out, _ := response["data"].(map[string]interface{})
	return out
}

func list(response map[string]interface{}) []interface{} {
	out, _ := response["data"].([]interface{})
	return out
}

func errorCode(response map[string]interface{}) string {
	errBody, _ := response["error"].(map[string]interface{})
	code, _ := errBody["code"].(string)
	return code
}

func (suite *RouterTestSuite) submitApplication() string {
	w, response := suite.do(http.MethodPost, "/v1/applications", &suite.student, map[string]interface{}{
		"name":          "Asha Kumar",
		"guardian_name": "Ravi Kumar",
		"email":         "asha@student.edu",
		"gpa":           8.2,
		"department":    "cse",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return data(response)["id"].(string)
}

func (suite *RouterTestSuite) TestHealth() {
	w, response := suite.do(http.MethodGet, "/health", nil, nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("healthy", response["status"])
	suite.NotEmpty(response["version"])
}

func (suite *RouterTestSuite) TestAuthentication() {
	w, response := suite.do(http.MethodGet, "/v1/applications/me", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(false, response["success"])

	w, response = suite.do(http.MethodGet, "/v1/hod/applications", &suite.student, nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("FORBIDDEN", errorCode(response))

	w, _ = suite.do(http.MethodPost, "/v1/admin/projects", &suite.hod, map[string]interface{}{"title": "x"})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *RouterTestSuite) TestSubmitValidation() {
	w, response := suite.do(http.MethodPost, "/v1/applications", &suite.student, map[string]interface{}{
		"guardian_name": "Ravi Kumar",
		"email":         "not-an-email",
		"department":    "cse",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", errorCode(response))
}

func (suite *RouterTestSuite) TestInvalidIDParam() {
	w, response := suite.do(http.MethodPatch, "/v1/hod/applications/not-a-uuid/status", &suite.hod, map[string]interface{}{
		"status": "accepted",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", errorCode(response))
}

func (suite *RouterTestSuite) TestLocalizedErrors() {
	req := httptest.NewRequest(http.MethodGet, "/v1/applications/me", nil)
	req.Header.Set("Authorization", "Bearer "+suite.token(suite.student))
	req.Header.Set("Accept-Language", "hi-IN,hi;q=0.9")

	w, response := suite.serve(req)

	suite.Equal(http.StatusNotFound, w.Code)
	errBody := response["error"].(map[string]interface{})
	suite.Equal("NOT_FOUND", errBody["code"])
	suite.Equal(i18n.T("hi", "errors.NOT_FOUND"), errBody["message"])
}

func (suite *RouterTestSuite) TestDuplicateSubmission() {
	suite.submitApplication()

	w, response := suite.do(http.MethodPost, "/v1/applications", &suite.student, map[string]interface{}{
		"name":          "Asha Kumar",
		"guardian_name": "Ravi Kumar",
		"email":         "asha@student.edu",
		"department":    "cse",
	})

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("CONFLICT", errorCode(response))
}

func (suite *RouterTestSuite) TestDocumentUpload() {
	appID := suite.submitApplication()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "resume.pdf")
	suite.Require().NoError(err)
	_, err = part.Write([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPatch, "/v1/applications/"+appID+"/documents/resume", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+suite.token(suite.student))

	w, response := suite.serve(req)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	docs := data(response)["documents"].(map[string]interface{})
	resume := docs["resume"].(map[string]interface{})
	suite.Equal("resume.pdf", resume["filename"])
	suite.Contains(resume["url"], "/uploads/documents/")

	w, response = suite.do(http.MethodGet, "/v1/hod/applications/"+appID+"/documents/resume", &suite.hod, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(resume["url"], data(response)["url"])

	w, response = suite.do(http.MethodGet, "/v1/hod/applications/"+appID+"/documents/income_proof", &suite.hod, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("NOT_FOUND", errorCode(response))

	w, _ = suite.do(http.MethodPatch, "/v1/applications/"+appID+"/documents/passport", &suite.student, map[string]interface{}{
		"url": "https://files.example.com/p.pdf",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RouterTestSuite) TestPlacementLifecycle() {
	appID := suite.submitApplication()

	// HOD review
	w, response := suite.do(http.MethodGet, "/v1/hod/applications?status=pending", &suite.hod, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(list(response), 1)

	w, response = suite.do(http.MethodPatch, "/v1/hod/applications/"+appID+"/status", &suite.hod, map[string]interface{}{
		"status": "accepted",
		"note":   "Strong academic record",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("accepted", data(response)["status"])

	// Interview
	schedule := map[string]interface{}{
		"application_id": appID,
		"scheduled_at":   time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"mode":           "online",
		"meeting_url":    "https://meet.example.com/abc",
	}
	w, response = suite.do(http.MethodPost, "/v1/hod/interviews", &suite.hod, schedule)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	interviewID := data(response)["id"].(string)

	schedule["scheduled_at"] = time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	w, response = suite.do(http.MethodPost, "/v1/hod/interviews", &suite.hod, schedule)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(interviewID, data(response)["id"])

	w, response = suite.do(http.MethodGet, "/v1/hod/interviews?upcoming=true", &suite.hod, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(list(response), 1)

	w, _ = suite.do(http.MethodPatch, "/v1/hod/interviews/"+interviewID+"/result", &suite.hod, map[string]interface{}{
		"result": "pass",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// Allocation
	w, response = suite.do(http.MethodGet, "/v1/hod/assignments/options", &suite.hod, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(data(response)["faculties"], 1)

	w, response = suite.do(http.MethodPatch, "/v1/hod/applications/"+appID+"/assign", &suite.hod, map[string]interface{}{
		"faculty_id":    suite.faculty.UserID,
		"project_title": "Campus Navigation",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	assignmentID := data(response)["id"].(string)
	suite.Equal("active", data(response)["status"])

	w, response = suite.do(http.MethodGet, "/v1/applications/me", &suite.student, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	application := data(response)["application"].(map[string]interface{})
	suite.Equal(suite.faculty.UserID.String(), application["assigned_faculty_id"])
	suite.Equal(assignmentID, application["assigned_assignment_id"])
	suite.Equal("pass", application["final_result"])

	// Tasks and submissions
	w, response = suite.do(http.MethodGet, "/v1/applications/faculty/assignments", &suite.faculty, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(list(response), 1)

	w, response = suite.do(http.MethodPost, "/v1/applications/faculty/assignments/"+assignmentID+"/tasks", &suite.faculty, map[string]interface{}{
		"title":   "Write design doc",
		"details": "Two pages",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	taskID := data(response)["id"].(string)

	w, _ = suite.do(http.MethodPost, "/v1/applications/student/assignments/"+assignmentID+"/tasks/"+taskID+"/submissions", &suite.student, map[string]interface{}{
		"note": "Draft attached",
		"link": "https://docs.example.com/draft",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, response = suite.do(http.MethodGet, "/v1/applications/student/assignments/"+assignmentID+"/tasks", &suite.student, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	tasks := list(response)
	suite.Require().Len(tasks, 1)
	suite.Len(tasks[0].(map[string]interface{})["submissions"], 1)

	w, response = suite.do(http.MethodPatch, "/v1/applications/faculty/assignments/"+assignmentID+"/tasks/"+taskID, &suite.faculty, map[string]interface{}{
		"status": "completed",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("completed", data(response)["status"])

	// Completion frees the faculty member
	w, response = suite.do(http.MethodPatch, "/v1/hod/assignments/"+assignmentID+"/complete", &suite.hod, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("completed", data(response)["status"])

	w, response = suite.do(http.MethodGet, "/v1/applications/faculty/assignments", &suite.faculty, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Empty(list(response))

	w, response = suite.do(http.MethodGet, "/v1/applications/faculty/assignments?status=all", &suite.faculty, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(list(response), 1)
}

func (suite *RouterTestSuite) TestFacultyAssignmentStatusFilter() {
	w, response := suite.do(http.MethodGet, "/v1/applications/faculty/assignments?status=bogus", &suite.faculty, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", errorCode(response))

	for _, status := range []string{"active", "completed", "all"} {
		w, response = suite.do(http.MethodGet, "/v1/applications/faculty/assignments?status="+status, &suite.faculty, nil)
		suite.Equal(http.StatusOK, w.Code, status)
		suite.Empty(list(response), status)
	}
}

func (suite *RouterTestSuite) TestAssignRequiresAcceptance() {
	appID := suite.submitApplication()

	w, response := suite.do(http.MethodPatch, "/v1/hod/applications/"+appID+"/assign", &suite.hod, map[string]interface{}{
		"faculty_id":    suite.faculty.UserID,
		"project_title": "Campus Navigation",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_STATE", errorCode(response))
}

func (suite *RouterTestSuite) TestProjectCatalog() {
	w, response := suite.do(http.MethodPost, "/v1/admin/projects", &suite.admin, map[string]interface{}{
		"department": "CSE",
		"title":      "Library Analytics",
		"tech_stack": []string{"Go", "Postgres"},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	projectID := data(response)["id"].(string)

	w, response = suite.do(http.MethodGet, "/v1/hod/projects", &suite.hod, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(list(response), 1)

	w, _ = suite.do(http.MethodPatch, "/v1/admin/projects/"+projectID+"/deactivate", &suite.admin, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w, response = suite.do(http.MethodGet, "/v1/hod/projects", &suite.hod, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Empty(list(response))

	w, response = suite.do(http.MethodGet, "/v1/admin/members?role=faculty", &suite.admin, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(list(response), 1)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
