// internal/services/application_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

type ApplicationService struct {
	store     store.Store
	directory Directory
	notifier  Notifier
	opts      Options
}

type SubmitApplicationRequest struct {
	Name           string   `json:"name" validate:"required,max=120"`
	GuardianName   string   `json:"guardian_name" validate:"required,max=120"`
	Email          string   `json:"email" validate:"required,email"`
	GPA            *float64 `json:"gpa,omitempty" validate:"omitempty,gte=0,lte=10"`
	GuardianIncome *float64 `json:"guardian_income,omitempty" validate:"omitempty,gte=0"`
	Department     string   `json:"department" validate:"required,department"`
}

// UpdateApplicationRequest is a partial update; nil fields are left alone.
type UpdateApplicationRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	GuardianName   *string  `json:"guardian_name,omitempty" validate:"omitempty,min=1,max=120"`
	Email          *string  `json:"email,omitempty" validate:"omitempty,email"`
	GPA            *float64 `json:"gpa,omitempty" validate:"omitempty,gte=0,lte=10"`
	GuardianIncome *float64 `json:"guardian_income,omitempty" validate:"omitempty,gte=0"`
	Department     *string  `json:"department,omitempty" validate:"omitempty,department"`
}

type ReviewStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note,omitempty" validate:"max=1000"`
}

// ApplicationView is the full projection of a case shown to its student or HOD.
type ApplicationView struct {
	Application *models.Application `json:"application"`
	Interview   *models.Interview   `json:"interview,omitempty"`
	Assignment  *models.Assignment  `json:"assignment,omitempty"`
}

func NewApplicationService(st store.Store, directory Directory, notifier Notifier, opts Options) *ApplicationService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ApplicationService{
		store:     st,
		directory: directory,
		notifier:  notifier,
		opts:      opts.withDefaults(),
	}
}

func (s *ApplicationService) Submit(ctx context.Context, caller models.Identity, req *SubmitApplicationRequest) (app *models.Application, err error) {
	defer observe("application.submit", time.Now(), &err)

	if err := caller.Require(models.RoleStudent); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.GuardianName = strings.TrimSpace(req.GuardianName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	dept, ok := models.NormalizeDepartment(req.Department)
	if !ok {
		return nil, apperror.Validation("invalid department").WithDetails(models.Departments)
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	hodID, err := s.directory.HODForDepartment(ctx, dept)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	app = &models.Application{
		StudentID:      caller.UserID,
		Name:           req.Name,
		GuardianName:   req.GuardianName,
		Email:          req.Email,
		GPA:            req.GPA,
		GuardianIncome: req.GuardianIncome,
		Department:     dept,
		AssignedHOD:    hodID,
		Status:         models.ApplicationStatusSubmitted,
		FinalResult:    models.FinalResultPending,
		Documents:      datatypes.NewJSONType(models.Documents{}),
	}
	app.AppendMessage(models.AuthorSystem, "Application submitted", "", "", now)

	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		existing, err := tx.CurrentApplication(caller.UserID)
		switch {
		case err == nil:
			if existing.Status != models.ApplicationStatusRejected {
				return apperror.Conflict(apperror.ResourceApplication, "application already exists")
			}
			if !s.opts.AllowResubmitAfterRejection {
				return apperror.Forbidden("application was rejected; a new application cannot be submitted")
			}
			existing.SupersededAt = &now
			if err := tx.UpdateApplication(existing); err != nil {
				return err
			}
		case !apperror.Is(err, apperror.KindNotFound):
			return err
		}
		return tx.CreateApplication(app)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"student_id":     app.StudentID,
		"department":     app.Department,
	}).Info("Application submitted")
	s.notifier.Notify(ctx, applicationSubmittedNotice(hodID, app.ID, app.Name))

	return app, nil
}

func (s *ApplicationService) ReviewStatus(ctx context.Context, caller models.Identity, applicationID uuid.UUID, req *ReviewStatusRequest) (app *models.Application, err error) {
	defer observe("application.review_status", time.Now(), &err)

	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	status := models.ApplicationStatus(req.Status)
	if !status.Valid() {
		return nil, apperror.Validation("invalid status")
	}
	note := strings.TrimSpace(req.Note)

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	var msg models.Message
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
		if app.Status == models.ApplicationStatusRejected {
			return apperror.InvalidState("application was rejected")
		}
		if app.HasAllocation() && status != models.ApplicationStatusAccepted {
			return apperror.InvalidState("application already has a project allocation")
		}

		app.Status = status
		msg = app.AppendMessage(string(models.RoleHOD), reviewMessage(status), string(status), note, s.opts.now())
		return tx.UpdateApplication(app)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"hod_id":         caller.UserID,
		"status":         status,
	}).Info("Application status changed")
	s.notifier.Notify(ctx, applicationStatusNotice(app.StudentID, app.ID, msg.Text))

	return app, nil
}

func reviewMessage(status models.ApplicationStatus) string {
	switch status {
	case models.ApplicationStatusAccepted:
		return "HOD approved the application"
	case models.ApplicationStatusRejected:
		return "HOD rejected the application"
	default:
		return "HOD marked the application as pending"
	}
}

// UpdateOwn applies a student's corrections while the HOD holds the case
// pending.
func (s *ApplicationService) UpdateOwn(ctx context.Context, caller models.Identity, req *UpdateApplicationRequest) (app *models.Application, err error) {
	defer observe("application.update_own", time.Now(), &err)

	if err := caller.Require(models.RoleStudent); err != nil {
		return nil, err
	}

	trimPtr(req.Name)
	trimPtr(req.GuardianName)
	trimPtr(req.Email)
	if req.Email != nil {
		*req.Email = strings.ToLower(*req.Email)
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var dept models.Department
	if req.Department != nil {
		var ok bool
		if dept, ok = models.NormalizeDepartment(*req.Department); !ok {
			return nil, apperror.Validation("invalid department").WithDetails(models.Departments)
		}
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	var hodID uuid.UUID
	if dept != "" {
		if hodID, err = s.directory.HODForDepartment(ctx, dept); err != nil {
			return nil, err
		}
	}

	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		app, err = tx.CurrentApplication(caller.UserID)
		if err != nil {
			return err
		}
		if app.Status != models.ApplicationStatusSubmitted || !app.ReviewedByHOD() {
			return apperror.InvalidState("updates are allowed only while the HOD holds the application pending")
		}

		if req.Name != nil {
			app.Name = *req.Name
		}
		if req.GuardianName != nil {
			app.GuardianName = *req.GuardianName
		}
		if req.Email != nil {
			app.Email = *req.Email
		}
		if req.GPA != nil {
			app.GPA = req.GPA
		}
		if req.GuardianIncome != nil {
			app.GuardianIncome = req.GuardianIncome
		}
		if dept != "" {
			app.Department = dept
			app.AssignedHOD = hodID
		}
		return tx.UpdateApplication(app)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// UploadDocument records the stored file for one document slot, replacing any
// earlier upload for that slot.
func (s *ApplicationService) UploadDocument(ctx context.Context, caller models.Identity, applicationID uuid.UUID, slot models.DocumentSlot, ref *models.FileRef) (docs models.Documents, err error) {
	defer observe("application.upload_document", time.Now(), &err)

	if err := caller.Require(models.RoleStudent); err != nil {
		return docs, err
	}
	if !slot.Valid() {
		return docs, apperror.Validation("invalid document type").WithDetails(models.DocumentSlots)
	}
	if ref == nil || ref.Empty() {
		return docs, apperror.Validation("file is required")
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		app, err := tx.Application(applicationID)
		if err != nil {
			return err
		}
		if app.StudentID != caller.UserID {
			return apperror.Forbidden("application belongs to another student")
		}
		if app.Status == models.ApplicationStatusRejected {
			return apperror.InvalidState("application was rejected")
		}
		if app.Status != models.ApplicationStatusSubmitted || app.SupersededAt != nil {
			return apperror.InvalidState("documents can only be changed while the application is pending")
		}

		docs = app.Documents.Data()
		docs.Set(slot, ref)
		app.Documents = datatypes.NewJSONType(docs)
		return tx.UpdateApplication(app)
	})
	return docs, err
}

// Mine returns the caller's current application with its interview and
// assignment.
func (s *ApplicationService) Mine(ctx context.Context, caller models.Identity) (*ApplicationView, error) {
	if err := caller.Require(models.RoleStudent); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	app, err := s.store.CurrentApplication(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, app)
}

func (s *ApplicationService) ListForHOD(ctx context.Context, caller models.Identity, status string) ([]models.Application, error) {
	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}
	if caller.Department == "" {
		return nil, apperror.Forbidden("HOD has no department")
	}

	filter := store.ApplicationFilter{Department: caller.Department}
	switch status {
	case "", "all":
	case "pending":
		filter.Status = models.ApplicationStatusSubmitted
	default:
		filter.Status = models.ApplicationStatus(status)
		if !filter.Status.Valid() {
			return nil, apperror.Validation("invalid status filter")
		}
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	return s.store.ListApplications(ctx, filter)
}

func (s *ApplicationService) GetForHOD(ctx context.Context, caller models.Identity, applicationID uuid.UUID) (*ApplicationView, error) {
	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	app, err := s.store.Application(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !caller.InDepartment(app.Department) {
		return nil, apperror.Forbidden("application belongs to another department")
	}
	return s.view(ctx, app)
}

func (s *ApplicationService) view(ctx context.Context, app *models.Application) (*ApplicationView, error) {
	view := &ApplicationView{Application: app}

	interviews, err := s.store.ListInterviews(ctx, store.InterviewFilter{ApplicationID: &app.ID})
	if err != nil {
		return nil, err
	}
	view.Interview = pickInterview(interviews, s.opts.now())

	asg, err := s.assignmentFor(ctx, app)
	if err != nil {
		return nil, err
	}
	if asg != nil {
		asg.Tasks = asg.SortedTasks()
		view.Assignment = asg
	}
	return view, nil
}

// pickInterview prefers the next pending interview and otherwise falls back
// to the most recently scheduled one. interviews are sorted by ScheduledAt.
func pickInterview(interviews []models.Interview, now time.Time) *models.Interview {
	for i := range interviews {
		if interviews[i].Pending() && interviews[i].ScheduledAt.After(now) {
			return &interviews[i]
		}
	}
	if len(interviews) == 0 {
		return nil
	}
	return &interviews[len(interviews)-1]
}

// assignmentFor follows the mirror first and falls back to the newest
// assignment recorded for the application.
func (s *ApplicationService) assignmentFor(ctx context.Context, app *models.Application) (*models.Assignment, error) {
	if app.AssignedAssignmentID != nil {
		asg, err := s.store.Assignment(ctx, *app.AssignedAssignmentID)
		if err == nil {
			return asg, nil
		}
		if !apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
	}

	list, err := s.store.ListAssignments(ctx, store.AssignmentFilter{StudentID: &app.StudentID})
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ApplicationID == app.ID {
			return &list[i], nil
		}
	}
	return nil, nil
}
