// internal/router/router.go
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/javajoker/placement-backend/internal/config"
	"github.com/javajoker/placement-backend/internal/handlers"
	"github.com/javajoker/placement-backend/internal/metrics"
	"github.com/javajoker/placement-backend/internal/middleware"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/services"
	"github.com/javajoker/placement-backend/internal/store"
	"github.com/javajoker/placement-backend/internal/utils"
)

// Dependencies are the collaborators the engine runs against. Files and
// Notifier may be nil; Redis is optional.
type Dependencies struct {
	Store    store.Store
	Files    handlers.FileStore
	Notifier services.Notifier
	Redis    *redis.Client
}

func Initialize(deps Dependencies, cfg *config.Config) (*gin.Engine, error) {
	opts := services.Options{
		StoreTimeout:                cfg.Engine.StoreTimeout(),
		ExclusiveFacultyAllocation:  cfg.Engine.ExclusiveFacultyAllocation,
		AllowResubmitAfterRejection: cfg.Engine.AllowResubmitAfterRejection,
	}

	files := deps.Files
	if files == nil {
		storageService, err := services.NewStorageService(cfg)
		if err != nil {
			return nil, err
		}
		files = storageService
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = services.NewNotificationService(deps.Redis, nil)
	}

	// Initialize services
	directory := services.NewStoreDirectory(deps.Store)
	applicationService := services.NewApplicationService(deps.Store, directory, notifier, opts)
	interviewService := services.NewInterviewService(deps.Store, notifier, opts)
	allocationService := services.NewAllocationService(deps.Store, directory, notifier, opts)
	taskService := services.NewTaskService(deps.Store, notifier, opts)
	catalogService := services.NewCatalogService(deps.Store, opts)

	// Initialize handlers
	applicationHandler := handlers.NewApplicationHandler(applicationService, files)
	interviewHandler := handlers.NewInterviewHandler(interviewService)
	assignmentHandler := handlers.NewAssignmentHandler(allocationService, catalogService)
	taskHandler := handlers.NewTaskHandler(taskService, files)
	adminHandler := handlers.NewAdminHandler(catalogService, allocationService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	metrics.Register()

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	var uploadLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.Server.RateLimit {
		r.Use(middleware.GeneralRateLimit())
		uploadLimit = middleware.UploadRateLimit()
	}

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRedisLimiter(deps.Redis)
	submitLimit := limiter.PerUser("submit", 20, time.Minute)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthRequired())
	{
		// Student and faculty routes share the applications prefix
		applications := v1.Group("/applications")
		{
			student := applications.Group("")
			student.Use(middleware.RequireRole(models.RoleStudent))
			{
				student.POST("", submitLimit, applicationHandler.Submit)
				student.GET("/me", applicationHandler.Mine)
				student.PATCH("/me", applicationHandler.UpdateOwn)
				student.PATCH("/:id/documents/:type", uploadLimit, applicationHandler.UploadDocument)
				student.GET("/student/assignments/:id/tasks", taskHandler.List)
				student.POST("/student/assignments/:id/tasks/:taskId/submissions",
					submitLimit, uploadLimit, taskHandler.Submit)
			}

			faculty := applications.Group("/faculty")
			faculty.Use(middleware.RequireRole(models.RoleFaculty))
			{
				faculty.GET("/assignments", assignmentHandler.ListForFaculty)
				faculty.GET("/assignments/:id", assignmentHandler.GetForFaculty)
				faculty.GET("/assignments/:id/tasks", taskHandler.List)
				faculty.POST("/assignments/:id/tasks", taskHandler.Add)
				faculty.PATCH("/assignments/:id/tasks/:taskId", taskHandler.Update)
			}
		}

		hod := v1.Group("/hod")
		hod.Use(middleware.RequireRole(models.RoleHOD))
		{
			hod.GET("/applications", applicationHandler.ListForHOD)
			hod.GET("/applications/:id", applicationHandler.GetForHOD)
			hod.GET("/applications/:id/documents/:type", applicationHandler.DocumentLink)
			hod.PATCH("/applications/:id/status", applicationHandler.ReviewStatus)
			hod.PATCH("/applications/:id/assign", assignmentHandler.Assign)

			hod.POST("/interviews", interviewHandler.Schedule)
			hod.GET("/interviews", interviewHandler.ListForHOD)
			hod.PATCH("/interviews/:id/result", interviewHandler.RecordResult)

			hod.GET("/assignments", assignmentHandler.ListForHOD)
			hod.GET("/assignments/options", assignmentHandler.Options)
			hod.PATCH("/assignments/:id/complete", assignmentHandler.Complete)

			hod.GET("/faculties", assignmentHandler.Faculties)
			hod.GET("/projects", adminHandler.ListProjects)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/members", adminHandler.RegisterMember)
			admin.GET("/members", adminHandler.ListMembers)
			admin.POST("/projects", adminHandler.CreateProject)
			admin.GET("/projects", adminHandler.ListProjects)
			admin.PATCH("/projects/:id/deactivate", adminHandler.DeactivateProject)
			admin.POST("/applications/:id/reconcile", adminHandler.ReconcileMirror)
		}
	}

	// Local uploads are served when S3 is not configured
	if cfg.AWS.AccessKeyID == "" {
		r.Static("/uploads", cfg.AWS.LocalUploadDir)
	}

	return r, nil
}
