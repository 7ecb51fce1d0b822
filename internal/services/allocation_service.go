// internal/services/allocation_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/metrics"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

type AllocationService struct {
	store     store.Store
	directory Directory
	notifier  Notifier
	opts      Options
}

// AssignRequest names either a catalog project or a free-text title. Fields
// given alongside a catalog project override its values.
type AssignRequest struct {
	FacultyID          uuid.UUID  `json:"faculty_id" validate:"required"`
	ProjectID          *uuid.UUID `json:"project_id,omitempty"`
	ProjectTitle       string     `json:"project_title,omitempty" validate:"max=200"`
	ProjectDescription string     `json:"project_description,omitempty" validate:"max=4000"`
	ProjectLink        string     `json:"project_link,omitempty" validate:"omitempty,url"`
	StartAt            *time.Time `json:"start_at,omitempty"`
	EndAt              *time.Time `json:"end_at,omitempty"`
}

type AllocationOptions struct {
	Students  []StudentOption  `json:"students"`
	Faculties []FacultyOption  `json:"faculties"`
	Projects  []models.Project `json:"projects"`
}

type StudentOption struct {
	ApplicationID uuid.UUID                `json:"application_id"`
	StudentID     uuid.UUID                `json:"student_id"`
	Name          string                   `json:"name"`
	Email         string                   `json:"email"`
	Status        models.ApplicationStatus `json:"status"`
	FinalResult   models.FinalResult       `json:"final_result"`
}

type FacultyOption struct {
	models.Member
	ActiveAssignments int `json:"active_assignments"`
}

type MirrorReport struct {
	ApplicationID uuid.UUID  `json:"application_id"`
	AssignmentID  *uuid.UUID `json:"assignment_id,omitempty"`
	Repaired      bool       `json:"repaired"`
}

func NewAllocationService(st store.Store, directory Directory, notifier Notifier, opts Options) *AllocationService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &AllocationService{
		store:     st,
		directory: directory,
		notifier:  notifier,
		opts:      opts.withDefaults(),
	}
}

// Assign allocates a faculty member and project to an eligible application.
// The exclusion checks, the new assignment and the application mirror are
// written in one transaction.
func (s *AllocationService) Assign(ctx context.Context, caller models.Identity, applicationID uuid.UUID, req *AssignRequest) (asg *models.Assignment, err error) {
	defer observe("allocation.assign", time.Now(), &err)

	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}
	if err := validateAssign(req); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	faculty, err := s.directory.Member(ctx, req.FacultyID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Validation("invalid faculty")
		}
		return nil, err
	}
	if faculty.Role != models.RoleFaculty || !faculty.Active {
		return nil, apperror.Validation("invalid faculty")
	}
	if !caller.InDepartment(faculty.Department) {
		return nil, apperror.Forbidden("faculty belongs to another department")
	}

	var app *models.Application
	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		app, err = tx.Application(applicationID)
		if err != nil {
			return err
		}
		if !caller.InDepartment(app.Department) {
			return apperror.Forbidden("application belongs to another department")
		}
		if app.SupersededAt != nil {
			return apperror.InvalidState("application has been superseded")
		}
		if app.HasAllocation() {
			return apperror.InvalidState("application is already assigned")
		}
		if !IsEligibleForAllocation(app) {
			return apperror.InvalidState("student is not eligible for allocation")
		}

		asg = &models.Assignment{
			ApplicationID:      app.ID,
			StudentID:          app.StudentID,
			FacultyID:          faculty.ID,
			HODID:              caller.UserID,
			Department:         app.Department,
			ProjectTitle:       req.ProjectTitle,
			ProjectDescription: req.ProjectDescription,
			ProjectLink:        req.ProjectLink,
			StartDate:          utcPtr(req.StartAt),
			EndDate:            utcPtr(req.EndAt),
			Status:             models.AssignmentStatusActive,
			Tasks:              datatypes.JSONSlice[models.Task]{},
		}
		if req.ProjectID != nil {
			if err := applyCatalogProject(tx, asg, *req.ProjectID); err != nil {
				return err
			}
		}
		asg.ProjectTitleKey = models.NormalizeTitle(asg.ProjectTitle)
		if asg.ProjectTitleKey == "" {
			return apperror.Validation("project title is required")
		}

		if err := s.checkExclusion(tx, asg); err != nil {
			return err
		}
		if err := tx.CreateAssignment(asg); err != nil {
			return err
		}

		app.Mirror(asg)
		text := fmt.Sprintf("Assigned project %q with %s", asg.ProjectTitle, faculty.Name)
		app.AppendMessage(string(models.RoleHOD), text, "", "", s.opts.now())
		return tx.UpdateApplication(app)
	})
	if err != nil {
		if apperror.Is(err, apperror.KindConflict) && apperror.ResourceOf(err) != apperror.ResourceApplication {
			metrics.AllocationConflicts.WithLabelValues(apperror.ResourceOf(err)).Inc()
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"assignment_id":  asg.ID,
		"application_id": app.ID,
		"faculty_id":     asg.FacultyID,
		"project_title":  asg.ProjectTitle,
	}).Info("Project allocated")
	s.notifier.Notify(ctx, assignmentNotice(asg.StudentID, asg.ID, fmt.Sprintf("You have been assigned %q", asg.ProjectTitle)))
	s.notifier.Notify(ctx, assignmentNotice(asg.FacultyID, asg.ID, fmt.Sprintf("%s has been assigned to you for %q", app.Name, asg.ProjectTitle)))

	return asg, nil
}

func validateAssign(req *AssignRequest) error {
	req.ProjectTitle = strings.TrimSpace(req.ProjectTitle)
	req.ProjectDescription = strings.TrimSpace(req.ProjectDescription)
	req.ProjectLink = strings.TrimSpace(req.ProjectLink)
	if err := validate(req); err != nil {
		return err
	}

	if (req.StartAt == nil) != (req.EndAt == nil) {
		return apperror.Validation("start and end are required together")
	}
	if req.StartAt != nil && !req.EndAt.After(*req.StartAt) {
		return apperror.Validation("end must be after start")
	}
	if req.ProjectID == nil && req.ProjectTitle == "" {
		return apperror.Validation("a catalog project or a project title is required")
	}
	return nil
}

func applyCatalogProject(tx store.Tx, asg *models.Assignment, projectID uuid.UUID) error {
	project, err := tx.Project(projectID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.Validation("invalid project")
		}
		return err
	}
	if project.Department != asg.Department {
		return apperror.Forbidden("project belongs to another department")
	}
	if !project.Active {
		return apperror.Validation("project is not active")
	}

	id := project.ID
	asg.ProjectID = &id
	if asg.ProjectTitle == "" {
		asg.ProjectTitle = project.Title
	}
	if asg.ProjectDescription == "" {
		asg.ProjectDescription = project.Description
	}
	if asg.ProjectLink == "" {
		asg.ProjectLink = project.DocLink
	}
	return nil
}

// checkExclusion refuses the allocation when the student, the faculty member
// or the project title is already held by an active assignment.
func (s *AllocationService) checkExclusion(tx store.Tx, asg *models.Assignment) error {
	busy, err := tx.ActiveAssignmentsByStudent(asg.StudentID)
	if err != nil {
		return err
	}
	if len(busy) > 0 {
		return apperror.Conflict(apperror.ResourceStudent, "student already has an active assignment")
	}

	if s.opts.ExclusiveFacultyAllocation {
		busy, err = tx.ActiveAssignmentsByFaculty(asg.FacultyID)
		if err != nil {
			return err
		}
		if len(busy) > 0 {
			return apperror.Conflict(apperror.ResourceFaculty, "faculty already has an active assignment")
		}
	}

	busy, err = tx.ActiveAssignmentsByTitle(asg.TitleKey())
	if err != nil {
		return err
	}
	if len(busy) > 0 {
		return apperror.Conflict(apperror.ResourceProject, "project is already assigned")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// OptionsForHOD lists what the caller can still allocate. Availability is
// derived from the same active assignments Assign checks against.
func (s *AllocationService) OptionsForHOD(ctx context.Context, caller models.Identity) (*AllocationOptions, error) {
	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}
	if caller.Department == "" {
		return nil, apperror.Forbidden("HOD has no department")
	}
	dept := caller.Department

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	var (
		apps     []models.Application
		faculty  []models.Member
		projects []models.Project
		active   []models.Assignment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		apps, err = s.store.ListApplications(gctx, store.ApplicationFilter{Department: dept})
		return err
	})
	g.Go(func() (err error) {
		faculty, err = s.store.ListMembers(gctx, store.MemberFilter{Role: models.RoleFaculty, Department: dept, ActiveOnly: true})
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.store.ListProjects(gctx, store.ProjectFilter{Department: dept, ActiveOnly: true})
		return err
	})
	g.Go(func() (err error) {
		active, err = s.store.ListAssignments(gctx, store.AssignmentFilter{Status: models.AssignmentStatusActive})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	busyStudents := make(map[uuid.UUID]bool)
	facultyLoad := make(map[uuid.UUID]int)
	busyTitles := make(map[string]bool)
	for _, asg := range active {
		busyStudents[asg.StudentID] = true
		facultyLoad[asg.FacultyID]++
		busyTitles[asg.TitleKey()] = true
	}

	opts := &AllocationOptions{
		Students:  []StudentOption{},
		Faculties: []FacultyOption{},
		Projects:  []models.Project{},
	}
	for i := range apps {
		app := &apps[i]
		if !IsEligibleForAllocation(app) || busyStudents[app.StudentID] {
			continue
		}
		opts.Students = append(opts.Students, StudentOption{
			ApplicationID: app.ID,
			StudentID:     app.StudentID,
			Name:          app.Name,
			Email:         app.Email,
			Status:        app.Status,
			FinalResult:   app.FinalResult,
		})
	}
	for _, member := range faculty {
		load := facultyLoad[member.ID]
		if s.opts.ExclusiveFacultyAllocation && load > 0 {
			continue
		}
		opts.Faculties = append(opts.Faculties, FacultyOption{Member: member, ActiveAssignments: load})
	}
	for _, project := range projects {
		if busyTitles[models.NormalizeTitle(project.Title)] {
			continue
		}
		opts.Projects = append(opts.Projects, project)
	}
	return opts, nil
}

func (s *AllocationService) ListForHOD(ctx context.Context, caller models.Identity, status models.AssignmentStatus) ([]models.Assignment, error) {
	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}
	if caller.Department == "" {
		return nil, apperror.Forbidden("HOD has no department")
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	return s.store.ListAssignments(ctx, store.AssignmentFilter{Department: caller.Department, Status: status})
}

// ListForFaculty returns the caller's assignments, newest first.
func (s *AllocationService) ListForFaculty(ctx context.Context, caller models.Identity, status models.AssignmentStatus) ([]models.Assignment, error) {
	if err := caller.Require(models.RoleFaculty); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	list, err := s.store.ListAssignments(ctx, store.AssignmentFilter{FacultyID: &caller.UserID, Status: status})
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Tasks = list[i].SortedTasks()
	}
	return list, nil
}

func (s *AllocationService) ActiveForFaculty(ctx context.Context, caller models.Identity) ([]models.Assignment, error) {
	return s.ListForFaculty(ctx, caller, models.AssignmentStatusActive)
}

func (s *AllocationService) GetForFaculty(ctx context.Context, caller models.Identity, assignmentID uuid.UUID) (*models.Assignment, error) {
	if err := caller.Require(models.RoleFaculty); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	asg, err := s.store.Assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if asg.FacultyID != caller.UserID {
		return nil, apperror.Forbidden("assignment belongs to another faculty member")
	}
	asg.Tasks = asg.SortedTasks()
	return asg, nil
}

// Complete closes an active assignment and frees its student, faculty member
// and title. The application mirror keeps the last allocation.
func (s *AllocationService) Complete(ctx context.Context, caller models.Identity, assignmentID uuid.UUID) (asg *models.Assignment, err error) {
	defer observe("allocation.complete", time.Now(), &err)

	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		asg, err = tx.Assignment(assignmentID)
		if err != nil {
			return err
		}
		if !caller.InDepartment(asg.Department) {
			return apperror.Forbidden("assignment belongs to another department")
		}
		if !asg.Active() {
			return apperror.InvalidState("assignment is already completed")
		}

		now := s.opts.now()
		asg.Status = models.AssignmentStatusCompleted
		asg.CompletedAt = &now
		if err := tx.UpdateAssignment(asg); err != nil {
			return err
		}

		app, err := tx.Application(asg.ApplicationID)
		if err != nil {
			return err
		}
		app.AppendMessage(string(models.RoleHOD), fmt.Sprintf("Project %q marked as completed", asg.ProjectTitle), "", "", now)
		return tx.UpdateApplication(app)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("assignment_id", asg.ID).Info("Assignment completed")
	s.notifier.Notify(ctx, assignmentNotice(asg.StudentID, asg.ID, fmt.Sprintf("Project %q marked as completed", asg.ProjectTitle)))

	return asg, nil
}

// VerifyMirror reports whether the application's allocation summary matches
// the student's latest assignment.
func (s *AllocationService) VerifyMirror(ctx context.Context, applicationID uuid.UUID) (bool, error) {
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	app, err := s.store.Application(ctx, applicationID)
	if err != nil {
		return false, err
	}
	list, err := s.store.ListAssignments(ctx, store.AssignmentFilter{StudentID: &app.StudentID})
	if err != nil {
		return false, err
	}
	if len(list) == 0 || list[0].ApplicationID != app.ID {
		return !app.HasAllocation(), nil
	}
	return app.MirrorMatches(&list[0]), nil
}

// ReconcileMirror rewrites the allocation summary from the student's latest
// assignment.
func (s *AllocationService) ReconcileMirror(ctx context.Context, caller models.Identity, applicationID uuid.UUID) (*MirrorReport, error) {
	if err := caller.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.reconcile(ctx, applicationID)
}

// ReconcileAll repairs every current application and returns how many
// needed a change.
func (s *AllocationService) ReconcileAll(ctx context.Context) (int, error) {
	apps, err := s.store.ListApplications(ctx, store.ApplicationFilter{})
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, app := range apps {
		report, err := s.reconcile(ctx, app.ID)
		if err != nil {
			return repaired, fmt.Errorf("reconcile application %s: %w", app.ID, err)
		}
		if report.Repaired {
			repaired++
		}
	}
	return repaired, nil
}

func (s *AllocationService) reconcile(ctx context.Context, applicationID uuid.UUID) (report *MirrorReport, err error) {
	defer observe("allocation.reconcile", time.Now(), &err)

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	report = &MirrorReport{ApplicationID: applicationID}
	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		report.Repaired = false
		report.AssignmentID = nil

		app, err := tx.Application(applicationID)
		if err != nil {
			return err
		}

		latest, err := tx.LatestAssignment(app.StudentID)
		if err != nil && !apperror.Is(err, apperror.KindNotFound) {
			return err
		}

		if latest != nil && latest.ApplicationID == app.ID {
			id := latest.ID
			report.AssignmentID = &id
			if app.MirrorMatches(latest) {
				return nil
			}
			app.Mirror(latest)
		} else {
			if !app.HasAllocation() {
				return nil
			}
			app.ClearMirror()
		}

		report.Repaired = true
		return tx.UpdateApplication(app)
	})
	if err != nil {
		return nil, err
	}

	if report.Repaired {
		logrus.WithField("application_id", applicationID).Warn("Allocation mirror repaired")
	}
	return report, nil
}
