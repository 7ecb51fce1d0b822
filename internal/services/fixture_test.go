package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store/badgerstore"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) to(userID uuid.UUID) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.notices {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *badgerstore.Store
	notes *recordingNotifier

	applications *ApplicationService
	interviews   *InterviewService
	allocation   *AllocationService
	tasks        *TaskService
	catalog      *CatalogService

	admin     models.Identity
	hod       models.Identity
	hodIT     models.Identity
	faculty   models.Identity
	faculty2  models.Identity
	facultyIT models.Identity
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()

	opts := DefaultOptions()
	for _, fn := range configure {
		fn(&opts)
	}

	st, err := badgerstore.Open(badgerstore.Config{
		InMemory:         true,
		ExclusiveFaculty: opts.ExclusiveFacultyAllocation,
		MaxAttempts:      20,
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: st,
		notes: &recordingNotifier{},
		admin: models.Identity{UserID: uuid.New(), Role: models.RoleAdmin},
	}

	directory := NewStoreDirectory(st)
	f.applications = NewApplicationService(st, directory, f.notes, opts)
	f.interviews = NewInterviewService(st, f.notes, opts)
	f.allocation = NewAllocationService(st, directory, f.notes, opts)
	f.tasks = NewTaskService(st, f.notes, opts)
	f.catalog = NewCatalogService(st, opts)

	f.hod = f.member("Dr. Rao", "rao@college.edu", models.RoleHOD, models.DepartmentCSE)
	f.hodIT = f.member("Dr. Shah", "shah@college.edu", models.RoleHOD, models.DepartmentIT)
	f.faculty = f.member("Prof. Iyer", "iyer@college.edu", models.RoleFaculty, models.DepartmentCSE)
	f.faculty2 = f.member("Prof. Nair", "nair@college.edu", models.RoleFaculty, models.DepartmentCSE)
	f.facultyIT = f.member("Prof. Das", "das@college.edu", models.RoleFaculty, models.DepartmentIT)
	return f
}

func (f *fixture) member(name, email string, role models.Role, dept models.Department) models.Identity {
	f.t.Helper()
	m := &models.Member{Name: name, Email: email, Role: role, Department: dept, Active: true}
	m.ID = uuid.New()
	require.NoError(f.t, f.store.SaveMember(f.ctx, m))
	return models.Identity{UserID: m.ID, Role: role, Department: dept}
}

func newStudent() models.Identity {
	return models.Identity{UserID: uuid.New(), Role: models.RoleStudent}
}

func (f *fixture) submit(student models.Identity, dept string) *models.Application {
	f.t.Helper()
	gpa := 8.4
	app, err := f.applications.Submit(f.ctx, student, &SubmitApplicationRequest{
		Name:         "Asha Kumar",
		GuardianName: "Ravi Kumar",
		Email:        "asha@student.edu",
		GPA:          &gpa,
		Department:   dept,
	})
	require.NoError(f.t, err)
	return app
}

func (f *fixture) review(hod models.Identity, appID uuid.UUID, status models.ApplicationStatus) *models.Application {
	f.t.Helper()
	app, err := f.applications.ReviewStatus(f.ctx, hod, appID, &ReviewStatusRequest{Status: string(status)})
	require.NoError(f.t, err)
	return app
}

// accepted submits an application to CSE and accepts it.
func (f *fixture) accepted(student models.Identity) *models.Application {
	f.t.Helper()
	app := f.submit(student, "cse")
	return f.review(f.hod, app.ID, models.ApplicationStatusAccepted)
}

func (f *fixture) schedule(appID uuid.UUID, at time.Time) (*models.Interview, bool) {
	f.t.Helper()
	iv, created, err := f.interviews.Schedule(f.ctx, f.hod, &ScheduleInterviewRequest{
		ApplicationID: appID,
		ScheduledAt:   at,
		Mode:          "online",
		MeetingURL:    "https://meet.example.com/abc",
	})
	require.NoError(f.t, err)
	return iv, created
}

func (f *fixture) assign(appID uuid.UUID, faculty models.Identity, title string) (*models.Assignment, error) {
	return f.allocation.Assign(f.ctx, f.hod, appID, &AssignRequest{
		FacultyID:    faculty.UserID,
		ProjectTitle: title,
	})
}

func (f *fixture) current(student models.Identity) *models.Application {
	f.t.Helper()
	app, err := f.store.CurrentApplication(f.ctx, student.UserID)
	require.NoError(f.t, err)
	return app
}

func messageTexts(app *models.Application) []string {
	texts := make([]string, len(app.Messages))
	for i, m := range app.Messages {
		texts[i] = m.Text
	}
	return texts
}
