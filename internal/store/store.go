// internal/store/store.go
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/placement-backend/internal/models"
)

// Tx is the view of the store inside one atomic unit. Reads through a Tx
// take part in the unit's conflict detection: rows are locked on Postgres and
// recorded in the read set on badger.
//
// Lookups that find nothing return an apperror of kind NotFound.
type Tx interface {
	Application(id uuid.UUID) (*models.Application, error)
	CurrentApplication(studentID uuid.UUID) (*models.Application, error)
	CreateApplication(app *models.Application) error
	// UpdateApplication writes app if its Version still matches the stored
	// row and bumps Version.
	UpdateApplication(app *models.Application) error

	Interview(id uuid.UUID) (*models.Interview, error)
	PendingInterview(applicationID uuid.UUID) (*models.Interview, error)
	CreateInterview(iv *models.Interview) error
	UpdateInterview(iv *models.Interview) error

	Assignment(id uuid.UUID) (*models.Assignment, error)
	ActiveAssignmentsByStudent(studentID uuid.UUID) ([]models.Assignment, error)
	ActiveAssignmentsByFaculty(facultyID uuid.UUID) ([]models.Assignment, error)
	ActiveAssignmentsByTitle(titleKey string) ([]models.Assignment, error)
	LatestAssignment(studentID uuid.UUID) (*models.Assignment, error)
	CreateAssignment(asg *models.Assignment) error
	UpdateAssignment(asg *models.Assignment) error

	Project(id uuid.UUID) (*models.Project, error)
}

type ApplicationFilter struct {
	Department models.Department
	HODID      *uuid.UUID
	StudentID  *uuid.UUID
	Status     models.ApplicationStatus
	// Superseded applications are skipped unless set.
	IncludeSuperseded bool
}

type InterviewFilter struct {
	HODID         *uuid.UUID
	StudentID     *uuid.UUID
	ApplicationID *uuid.UUID
	Department    models.Department
	// ScheduledAfter keeps only interviews scheduled strictly after it.
	ScheduledAfter *time.Time
	Result         models.InterviewResult
}

type AssignmentFilter struct {
	HODID      *uuid.UUID
	FacultyID  *uuid.UUID
	StudentID  *uuid.UUID
	Department models.Department
	Status     models.AssignmentStatus
}

type ProjectFilter struct {
	Department models.Department
	ActiveOnly bool
}

type MemberFilter struct {
	Role       models.Role
	Department models.Department
	ActiveOnly bool
}

// Reader serves listings and lookups outside of an atomic unit.
type Reader interface {
	Application(ctx context.Context, id uuid.UUID) (*models.Application, error)
	CurrentApplication(ctx context.Context, studentID uuid.UUID) (*models.Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]models.Application, error)

	Interview(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	ListInterviews(ctx context.Context, filter InterviewFilter) ([]models.Interview, error)

	Assignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error)

	Project(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]models.Project, error)

	Member(ctx context.Context, id uuid.UUID) (*models.Member, error)
	ListMembers(ctx context.Context, filter MemberFilter) ([]models.Member, error)
}

// Store is the Record Store the engine runs against.
type Store interface {
	Reader

	// Atomically runs fn as one unit: either every write made through tx
	// becomes visible or none does. A unit that loses a race against a
	// concurrent one surfaces as Conflict (for uniqueness) or Unavailable
	// (for retries exhausted).
	Atomically(ctx context.Context, fn func(tx Tx) error) error

	SaveMember(ctx context.Context, member *models.Member) error
	SaveProject(ctx context.Context, project *models.Project) error

	Close() error
}
