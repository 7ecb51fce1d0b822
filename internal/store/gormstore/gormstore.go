// internal/store/gormstore/gormstore.go
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/database"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

// Store keeps records in Postgres. Exclusion rules are enforced by row locks
// taken inside each unit and backstopped by the partial unique indexes
// created in database.RunMigrations.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Atomically(ctx context.Context, fn func(tx store.Tx) error) error {
	err := database.WithTransaction(ctx, s.db, func(db *gorm.DB) error {
		return fn(&tx{db: db})
	})
	return translate(err)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var constraintResources = map[string]string{
	database.IndexCurrentApplication: apperror.ResourceApplication,
	database.IndexPendingInterview:   apperror.ResourceInterview,
	database.IndexActiveStudent:      apperror.ResourceStudent,
	database.IndexActiveFaculty:      apperror.ResourceFaculty,
	database.IndexActiveTitle:        apperror.ResourceProject,
}

// translate maps driver errors onto the engine's error kinds.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return apperror.Unavailable("record store timed out", err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(apperror.KindNotFound, "record not found", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			resource := constraintResources[pgErr.ConstraintName]
			return apperror.Conflict(resource, fmt.Sprintf("%s is already taken", resourceLabel(resource)))
		case "40001", "40P01":
			return apperror.Unavailable("concurrent update, retry", err)
		}
	}
	return apperror.Wrap(apperror.KindInternal, "record store failure", err)
}

func resourceLabel(resource string) string {
	if resource == "" {
		return "record"
	}
	return resource
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(what + " not found")
	}
	return translate(err)
}

type tx struct {
	db *gorm.DB
}

func (t *tx) locked() *gorm.DB {
	return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *tx) Application(id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := t.locked().First(&app, "id = ?", id).Error; err != nil {
		return nil, notFound("application", err)
	}
	return &app, nil
}

func (t *tx) CurrentApplication(studentID uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := t.locked().
		Where("student_id = ? AND superseded_at IS NULL", studentID).
		First(&app).Error
	if err != nil {
		return nil, notFound("application", err)
	}
	return &app, nil
}

func (t *tx) CreateApplication(app *models.Application) error {
	return translate(t.db.Create(app).Error)
}

func (t *tx) UpdateApplication(app *models.Application) error {
	return t.compareAndSwap(app, &app.Version, "application")
}

func (t *tx) Interview(id uuid.UUID) (*models.Interview, error) {
	var iv models.Interview
	if err := t.locked().First(&iv, "id = ?", id).Error; err != nil {
		return nil, notFound("interview", err)
	}
	return &iv, nil
}

func (t *tx) PendingInterview(applicationID uuid.UUID) (*models.Interview, error) {
	var iv models.Interview
	err := t.locked().
		Where("application_id = ? AND result = ?", applicationID, models.InterviewResultPending).
		First(&iv).Error
	if err != nil {
		return nil, notFound("interview", err)
	}
	return &iv, nil
}

func (t *tx) CreateInterview(iv *models.Interview) error {
	return translate(t.db.Create(iv).Error)
}

func (t *tx) UpdateInterview(iv *models.Interview) error {
	return translate(t.db.Select("*").Updates(iv).Error)
}

func (t *tx) Assignment(id uuid.UUID) (*models.Assignment, error) {
	var asg models.Assignment
	if err := t.locked().First(&asg, "id = ?", id).Error; err != nil {
		return nil, notFound("assignment", err)
	}
	return &asg, nil
}

func (t *tx) activeAssignments(column string, value interface{}) ([]models.Assignment, error) {
	var list []models.Assignment
	err := t.locked().
		Where(column+" = ? AND status = ?", value, models.AssignmentStatusActive).
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (t *tx) ActiveAssignmentsByStudent(studentID uuid.UUID) ([]models.Assignment, error) {
	return t.activeAssignments("student_id", studentID)
}

func (t *tx) ActiveAssignmentsByFaculty(facultyID uuid.UUID) ([]models.Assignment, error) {
	return t.activeAssignments("faculty_id", facultyID)
}

func (t *tx) ActiveAssignmentsByTitle(titleKey string) ([]models.Assignment, error) {
	return t.activeAssignments("project_title_key", titleKey)
}

func (t *tx) LatestAssignment(studentID uuid.UUID) (*models.Assignment, error) {
	var asg models.Assignment
	err := t.db.Where("student_id = ?", studentID).Order("created_at DESC").First(&asg).Error
	if err != nil {
		return nil, notFound("assignment", err)
	}
	return &asg, nil
}

func (t *tx) CreateAssignment(asg *models.Assignment) error {
	return translate(t.db.Create(asg).Error)
}

func (t *tx) UpdateAssignment(asg *models.Assignment) error {
	return t.compareAndSwap(asg, &asg.Version, "assignment")
}

func (t *tx) Project(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := t.db.First(&project, "id = ?", id).Error; err != nil {
		return nil, notFound("project", err)
	}
	return &project, nil
}

// compareAndSwap writes record only if its stored version is still *version.
func (t *tx) compareAndSwap(record interface{}, version *int64, what string) error {
	expected := *version
	*version = expected + 1

	res := t.db.Model(record).Where("version = ?", expected).Select("*").Updates(record)
	if res.Error != nil {
		*version = expected
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		*version = expected
		return apperror.Conflict(what, what+" was modified concurrently")
	}
	return nil
}
