package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/models"
)

func TestSubmitRoutesToDepartmentHOD(t *testing.T) {
	f := newFixture(t)
	student := newStudent()

	app := f.submit(student, " Computer ")

	assert.Equal(t, models.DepartmentCSE, app.Department)
	assert.Equal(t, f.hod.UserID, app.AssignedHOD)
	assert.Equal(t, models.ApplicationStatusSubmitted, app.Status)
	assert.Equal(t, models.FinalResultPending, app.FinalResult)
	assert.Equal(t, []string{"Application submitted"}, messageTexts(app))
	assert.Equal(t, models.AuthorSystem, app.Messages[0].By)
	assert.Len(t, f.notes.to(f.hod.UserID), 1)

	stored := f.current(student)
	assert.Equal(t, app.ID, stored.ID)
}

func TestSubmitRejectsDuplicateApplication(t *testing.T) {
	f := newFixture(t)
	student := newStudent()
	f.submit(student, "cse")

	_, err := f.applications.Submit(f.ctx, student, &SubmitApplicationRequest{
		Name: "Asha", GuardianName: "Ravi", Email: "asha@student.edu", Department: "it",
	})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, apperror.ResourceApplication, apperror.ResourceOf(err))
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.applications.Submit(f.ctx, newStudent(), &SubmitApplicationRequest{
		Name: "Asha", GuardianName: "Ravi", Email: "not-an-email", Department: "cse",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.applications.Submit(f.ctx, newStudent(), &SubmitApplicationRequest{
		Name: "Asha", GuardianName: "Ravi", Email: "asha@student.edu", Department: "arts",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	// No HOD is registered for mechanical.
	_, err = f.applications.Submit(f.ctx, newStudent(), &SubmitApplicationRequest{
		Name: "Asha", GuardianName: "Ravi", Email: "asha@student.edu", Department: "mech",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.applications.Submit(f.ctx, f.hod, &SubmitApplicationRequest{
		Name: "Asha", GuardianName: "Ravi", Email: "asha@student.edu", Department: "cse",
	})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestResubmitAfterRejectionBlockedByDefault(t *testing.T) {
	f := newFixture(t)
	student := newStudent()
	app := f.submit(student, "cse")
	f.review(f.hod, app.ID, models.ApplicationStatusRejected)

	_, err := f.applications.Submit(f.ctx, student, &SubmitApplicationRequest{
		Name: "Asha", GuardianName: "Ravi", Email: "asha@student.edu", Department: "cse",
	})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	assert.Equal(t, app.ID, f.current(student).ID)
}

func TestResubmitAfterRejectionSupersedesWhenAllowed(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.AllowResubmitAfterRejection = true })
	student := newStudent()
	first := f.submit(student, "cse")
	f.review(f.hod, first.ID, models.ApplicationStatusRejected)

	second := f.submit(student, "it")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, f.hodIT.UserID, second.AssignedHOD)
	assert.Equal(t, second.ID, f.current(student).ID)

	old, err := f.store.Application(f.ctx, first.ID)
	require.NoError(t, err)
	assert.NotNil(t, old.SupersededAt)

	// The superseded case no longer shows up in the HOD's queue.
	list, err := f.applications.ListForHOD(f.ctx, f.hod, "all")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.applications.ReviewStatus(f.ctx, f.hod, first.ID, &ReviewStatusRequest{Status: "accepted"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestReviewStatusRules(t *testing.T) {
	f := newFixture(t)
	student := newStudent()
	app := f.submit(student, "cse")

	_, err := f.applications.ReviewStatus(f.ctx, f.hod, app.ID, &ReviewStatusRequest{Status: "approved"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.applications.ReviewStatus(f.ctx, f.hodIT, app.ID, &ReviewStatusRequest{Status: "accepted"})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.applications.ReviewStatus(f.ctx, f.faculty, app.ID, &ReviewStatusRequest{Status: "accepted"})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.applications.ReviewStatus(f.ctx, f.hod, uuid.New(), &ReviewStatusRequest{Status: "accepted"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	accepted, err := f.applications.ReviewStatus(f.ctx, f.hod, app.ID, &ReviewStatusRequest{Status: "accepted", Note: " strong profile "})
	require.NoError(t, err)
	last := accepted.Messages[len(accepted.Messages)-1]
	assert.Equal(t, "HOD approved the application", last.Text)
	assert.Equal(t, "accepted", last.Status)
	assert.Equal(t, "strong profile", last.Note)
	assert.Equal(t, 2, last.Seq)
	assert.Len(t, f.notes.to(student.UserID), 1)

	f.review(f.hod, app.ID, models.ApplicationStatusRejected)
	_, err = f.applications.ReviewStatus(f.ctx, f.hod, app.ID, &ReviewStatusRequest{Status: "accepted"})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestUpdateOwnOnlyWhileHeldPending(t *testing.T) {
	f := newFixture(t)
	student := newStudent()
	app := f.submit(student, "cse")

	name := "Asha K."
	_, err := f.applications.UpdateOwn(f.ctx, student, &UpdateApplicationRequest{Name: &name})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	f.review(f.hod, app.ID, models.ApplicationStatusSubmitted)

	dept := "it"
	updated, err := f.applications.UpdateOwn(f.ctx, student, &UpdateApplicationRequest{Name: &name, Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Asha K.", updated.Name)
	assert.Equal(t, models.DepartmentIT, updated.Department)
	assert.Equal(t, f.hodIT.UserID, updated.AssignedHOD)

	f.review(f.hodIT, app.ID, models.ApplicationStatusAccepted)
	_, err = f.applications.UpdateOwn(f.ctx, student, &UpdateApplicationRequest{Name: &name})
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestUploadDocument(t *testing.T) {
	f := newFixture(t)
	student := newStudent()
	app := f.submit(student, "cse")
	ref := &models.FileRef{Key: "documents/resume.pdf", URL: "https://files.example.com/resume.pdf", Filename: "resume.pdf"}

	docs, err := f.applications.UploadDocument(f.ctx, student, app.ID, models.DocumentResume, ref)
	require.NoError(t, err)
	require.NotNil(t, docs.Resume)
	assert.Equal(t, "documents/resume.pdf", docs.Resume.Key)

	replacement := &models.FileRef{Key: "documents/resume-v2.pdf", URL: "https://files.example.com/resume-v2.pdf"}
	docs, err = f.applications.UploadDocument(f.ctx, student, app.ID, models.DocumentResume, replacement)
	require.NoError(t, err)
	assert.Equal(t, "documents/resume-v2.pdf", docs.Resume.Key)
	assert.Equal(t, "documents/resume-v2.pdf", f.current(student).Documents.Data().Resume.Key)

	_, err = f.applications.UploadDocument(f.ctx, student, app.ID, "passport", ref)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.applications.UploadDocument(f.ctx, student, app.ID, models.DocumentResume, &models.FileRef{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.applications.UploadDocument(f.ctx, newStudent(), app.ID, models.DocumentResume, ref)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	f.review(f.hod, app.ID, models.ApplicationStatusAccepted)
	_, err = f.applications.UploadDocument(f.ctx, student, app.ID, models.DocumentIncomeProof, ref)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))

	f.review(f.hod, app.ID, models.ApplicationStatusRejected)
	_, err = f.applications.UploadDocument(f.ctx, student, app.ID, models.DocumentIncomeProof, ref)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestListForHODFilters(t *testing.T) {
	f := newFixture(t)
	pending := f.submit(newStudent(), "cse")
	accepted := f.accepted(newStudent())
	f.submit(newStudent(), "it")

	all, err := f.applications.ListForHOD(f.ctx, f.hod, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	list, err := f.applications.ListForHOD(f.ctx, f.hod, "pending")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	list, err = f.applications.ListForHOD(f.ctx, f.hod, "accepted")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, accepted.ID, list[0].ID)

	_, err = f.applications.ListForHOD(f.ctx, f.hod, "archived")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.applications.GetForHOD(f.ctx, f.hodIT, pending.ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestMineShowsInterviewAndAssignment(t *testing.T) {
	f := newFixture(t)
	student := newStudent()

	_, err := f.applications.Mine(f.ctx, student)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	app := f.accepted(student)
	iv, _ := f.schedule(app.ID, time.Now().Add(48*time.Hour))

	view, err := f.applications.Mine(f.ctx, student)
	require.NoError(t, err)
	require.NotNil(t, view.Interview)
	assert.Equal(t, iv.ID, view.Interview.ID)
	assert.Nil(t, view.Assignment)

	asg, err := f.assign(app.ID, f.faculty, "Campus Navigation App")
	require.NoError(t, err)

	view, err = f.applications.Mine(f.ctx, student)
	require.NoError(t, err)
	require.NotNil(t, view.Assignment)
	assert.Equal(t, asg.ID, view.Assignment.ID)
	assert.Equal(t, "Campus Navigation App", view.Application.AssignedProjectTitle)
}

func TestPickInterviewPrefersNextPending(t *testing.T) {
	now := time.Now()
	past := models.Interview{ScheduledAt: now.Add(-time.Hour), Result: models.InterviewResultFail}
	next := models.Interview{ScheduledAt: now.Add(time.Hour), Result: models.InterviewResultPending}
	later := models.Interview{ScheduledAt: now.Add(2 * time.Hour), Result: models.InterviewResultPass}

	got := pickInterview([]models.Interview{past, next, later}, now)
	require.NotNil(t, got)
	assert.Equal(t, next.ScheduledAt, got.ScheduledAt)

	got = pickInterview([]models.Interview{past, later}, now)
	require.NotNil(t, got)
	assert.Equal(t, later.ScheduledAt, got.ScheduledAt)

	assert.Nil(t, pickInterview(nil, now))
}
