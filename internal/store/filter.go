// internal/store/filter.go
package store

import (
	"github.com/javajoker/placement-backend/internal/models"
)

func (f ApplicationFilter) Matches(app *models.Application) bool {
	if app.SupersededAt != nil && !f.IncludeSuperseded {
		return false
	}
	if f.Department != "" && app.Department != f.Department {
		return false
	}
	if f.HODID != nil && app.AssignedHOD != *f.HODID {
		return false
	}
	if f.StudentID != nil && app.StudentID != *f.StudentID {
		return false
	}
	if f.Status != "" && app.Status != f.Status {
		return false
	}
	return true
}

func (f InterviewFilter) Matches(iv *models.Interview) bool {
	if f.HODID != nil && iv.HODID != *f.HODID {
		return false
	}
	if f.StudentID != nil && iv.StudentID != *f.StudentID {
		return false
	}
	if f.ApplicationID != nil && iv.ApplicationID != *f.ApplicationID {
		return false
	}
	if f.Department != "" && iv.Department != f.Department {
		return false
	}
	if f.ScheduledAfter != nil && !iv.ScheduledAt.After(*f.ScheduledAfter) {
		return false
	}
	if f.Result != "" && iv.Result != f.Result {
		return false
	}
	return true
}

func (f AssignmentFilter) Matches(asg *models.Assignment) bool {
	if f.HODID != nil && asg.HODID != *f.HODID {
		return false
	}
	if f.FacultyID != nil && asg.FacultyID != *f.FacultyID {
		return false
	}
	if f.StudentID != nil && asg.StudentID != *f.StudentID {
		return false
	}
	if f.Department != "" && asg.Department != f.Department {
		return false
	}
	if f.Status != "" && asg.Status != f.Status {
		return false
	}
	return true
}

func (f ProjectFilter) Matches(p *models.Project) bool {
	if f.Department != "" && p.Department != f.Department {
		return false
	}
	if f.ActiveOnly && !p.Active {
		return false
	}
	return true
}

func (f MemberFilter) Matches(m *models.Member) bool {
	if f.Role != "" && m.Role != f.Role {
		return false
	}
	if f.Department != "" && m.Department != f.Department {
		return false
	}
	if f.ActiveOnly && !m.Active {
		return false
	}
	return true
}
