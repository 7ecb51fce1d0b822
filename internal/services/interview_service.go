// internal/services/interview_service.go
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

type InterviewService struct {
	store    store.Store
	notifier Notifier
	opts     Options
}

type ScheduleInterviewRequest struct {
	ApplicationID uuid.UUID `json:"application_id" validate:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" validate:"required"`
	Mode          string    `json:"mode" validate:"required,oneof=online offline"`
	MeetingURL    string    `json:"meeting_url,omitempty"`
	Location      string    `json:"location,omitempty"`
	Notes         string    `json:"notes,omitempty" validate:"max=1000"`
}

type RecordResultRequest struct {
	Result string `json:"result" validate:"required"`
	Notes  string `json:"notes,omitempty" validate:"max=1000"`
}

type InterviewQuery struct {
	Upcoming  bool
	StudentID *uuid.UUID
}

func NewInterviewService(st store.Store, notifier Notifier, opts Options) *InterviewService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &InterviewService{
		store:    st,
		notifier: notifier,
		opts:     opts.withDefaults(),
	}
}

// Schedule books an interview for an accepted application. An existing
// pending interview is moved instead of adding a second one.
func (s *InterviewService) Schedule(ctx context.Context, caller models.Identity, req *ScheduleInterviewRequest) (iv *models.Interview, created bool, err error) {
	defer observe("interview.schedule", time.Now(), &err)

	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, false, err
	}
	if err := s.validateSchedule(req); err != nil {
		return nil, false, err
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	var app *models.Application
	var msg models.Message
	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		app, err = tx.Application(req.ApplicationID)
		if err != nil {
			return err
		}
		if !caller.InDepartment(app.Department) {
			return apperror.Forbidden("application belongs to another department")
		}
		if app.SupersededAt != nil {
			return apperror.InvalidState("application has been superseded")
		}
		if !IsEligibleForInterview(app) {
			return apperror.InvalidState("application is not accepted")
		}
		if app.HasAllocation() {
			return apperror.InvalidState("application already has a project allocation")
		}
		if app.FinalResult != models.FinalResultPending {
			return apperror.InvalidState("interview result already recorded")
		}

		iv, err = tx.PendingInterview(app.ID)
		switch {
		case err == nil:
			created = false
		case apperror.Is(err, apperror.KindNotFound):
			created = true
			iv = &models.Interview{
				ApplicationID: app.ID,
				StudentID:     app.StudentID,
				Department:    app.Department,
				Result:        models.InterviewResultPending,
			}
		default:
			return err
		}

		iv.HODID = caller.UserID
		iv.ScheduledAt = req.ScheduledAt.UTC()
		iv.Mode = models.InterviewMode(req.Mode)
		iv.MeetingURL = req.MeetingURL
		iv.Location = req.Location
		iv.Notes = req.Notes

		if created {
			err = tx.CreateInterview(iv)
		} else {
			err = tx.UpdateInterview(iv)
		}
		if err != nil {
			return err
		}

		verb := "scheduled"
		if !created {
			verb = "rescheduled"
		}
		text := fmt.Sprintf("Interview %s (%s) on %s", verb, iv.Mode, iv.ScheduledAt.Format(time.RFC3339))
		msg = app.AppendMessage(string(models.RoleHOD), text, "", req.Notes, s.opts.now())
		return tx.UpdateApplication(app)
	})
	if err != nil {
		return nil, false, err
	}

	logrus.WithFields(logrus.Fields{
		"interview_id":   iv.ID,
		"application_id": app.ID,
		"scheduled_at":   iv.ScheduledAt,
		"created":        created,
	}).Info("Interview scheduled")
	s.notifier.Notify(ctx, interviewNotice(app.StudentID, iv.ID, msg.Text))

	return iv, created, nil
}

func (s *InterviewService) validateSchedule(req *ScheduleInterviewRequest) error {
	req.MeetingURL = strings.TrimSpace(req.MeetingURL)
	req.Location = strings.TrimSpace(req.Location)
	req.Notes = strings.TrimSpace(req.Notes)
	if err := validate(req); err != nil {
		return err
	}

	if !req.ScheduledAt.After(s.opts.now()) {
		return apperror.Validation("interview time must be in the future")
	}

	switch models.InterviewMode(req.Mode) {
	case models.InterviewModeOnline:
		if !isAbsoluteURL(req.MeetingURL) {
			return apperror.Validation("a valid meeting URL is required for online interviews")
		}
		req.Location = ""
	case models.InterviewModeOffline:
		if req.Location == "" {
			return apperror.Validation("a location is required for offline interviews")
		}
		req.MeetingURL = ""
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RecordResult scores a pending interview. A fail rejects the application.
func (s *InterviewService) RecordResult(ctx context.Context, caller models.Identity, interviewID uuid.UUID, req *RecordResultRequest) (iv *models.Interview, err error) {
	defer observe("interview.record_result", time.Now(), &err)

	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}
	result := models.InterviewResult(strings.ToLower(strings.TrimSpace(req.Result)))
	if result != models.InterviewResultPass && result != models.InterviewResultFail {
		return nil, apperror.InvalidState("result must be pass or fail")
	}
	note := strings.TrimSpace(req.Notes)

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	var app *models.Application
	var msg models.Message
	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		iv, err = tx.Interview(interviewID)
		if err != nil {
			return err
		}
		if iv.HODID != caller.UserID {
			return apperror.Forbidden("interview belongs to another HOD")
		}
		if !iv.Pending() {
			return apperror.InvalidState("interview result already recorded")
		}

		app, err = tx.Application(iv.ApplicationID)
		if err != nil {
			return err
		}
		if app.Status == models.ApplicationStatusRejected {
			return apperror.InvalidState("application was rejected")
		}
		if app.HasAllocation() {
			return apperror.InvalidState("application already has a project allocation")
		}

		now := s.opts.now()
		scorer := caller.UserID
		iv.Result = result
		iv.ScoredBy = &scorer
		iv.ScoredAt = &now
		if note != "" {
			iv.Notes = note
		}
		if err := tx.UpdateInterview(iv); err != nil {
			return err
		}

		if result == models.InterviewResultPass {
			app.FinalResult = models.FinalResultPass
		} else {
			app.FinalResult = models.FinalResultFail
			app.Status = models.ApplicationStatusRejected
		}

		text := "Interview result: " + strings.ToUpper(string(result))
		if note != "" {
			text += " • Remark: " + note
		}
		msg = app.AppendMessage(string(models.RoleHOD), text, string(app.Status), note, now)
		return tx.UpdateApplication(app)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"interview_id":   iv.ID,
		"application_id": app.ID,
		"result":         result,
	}).Info("Interview result recorded")
	s.notifier.Notify(ctx, interviewNotice(app.StudentID, iv.ID, msg.Text))

	return iv, nil
}

func (s *InterviewService) ListForHOD(ctx context.Context, caller models.Identity, query InterviewQuery) ([]models.Interview, error) {
	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}
	if caller.Department == "" {
		return nil, apperror.Forbidden("HOD has no department")
	}

	filter := store.InterviewFilter{
		Department: caller.Department,
		StudentID:  query.StudentID,
	}
	if query.Upcoming {
		now := s.opts.now()
		filter.ScheduledAfter = &now
		filter.Result = models.InterviewResultPending
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	return s.store.ListInterviews(ctx, filter)
}
