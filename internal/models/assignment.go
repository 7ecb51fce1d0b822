// internal/models/assignment.go
package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Assignment struct {
	BaseModel
	ApplicationID      uuid.UUID        `json:"application_id" gorm:"type:uuid;not null;index"`
	StudentID          uuid.UUID        `json:"student_id" gorm:"type:uuid;not null"`
	FacultyID          uuid.UUID        `json:"faculty_id" gorm:"type:uuid;not null"`
	HODID              uuid.UUID        `json:"hod_id" gorm:"type:uuid;not null;index"`
	Department         Department       `json:"department" gorm:"type:varchar(16);not null"`
	ProjectID          *uuid.UUID       `json:"project_id,omitempty" gorm:"type:uuid"`
	ProjectTitle       string           `json:"project_title" gorm:"not null"`
	ProjectTitleKey    string           `json:"-" gorm:"not null"`
	ProjectDescription string           `json:"project_description,omitempty"`
	ProjectLink        string           `json:"project_link,omitempty"`
	StartDate          *time.Time       `json:"start_date,omitempty"`
	EndDate            *time.Time       `json:"end_date,omitempty"`
	Status             AssignmentStatus `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`

	Tasks datatypes.JSONSlice[Task] `json:"tasks" gorm:"type:jsonb"`

	Version int64 `json:"version" gorm:"not null;default:1"`
}

// TitleKey is the exclusion key of the project title. It is derived from
// ProjectTitle, so records decoded without the stored key still resolve.
func (a *Assignment) TitleKey() string {
	return NormalizeTitle(a.ProjectTitle)
}

type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Details     string       `json:"details,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Status      TaskStatus   `json:"status"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Submissions []Submission `json:"submissions"`
}

type Submission struct {
	ID          uuid.UUID `json:"id"`
	StudentID   uuid.UUID `json:"student_id"`
	Note        string    `json:"note,omitempty"`
	Link        string    `json:"link,omitempty"`
	File        *FileRef  `json:"file,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (a *Assignment) Active() bool {
	return a.Status == AssignmentStatusActive
}

func (a *Assignment) Task(id uuid.UUID) (int, *Task) {
	for i := range a.Tasks {
		if a.Tasks[i].ID == id {
			return i, &a.Tasks[i]
		}
	}
	return -1, nil
}

// SortedTasks returns the tasks ordered by due date; undated tasks first,
// ties broken by creation time.
func (a *Assignment) SortedTasks() []Task {
	tasks := make([]Task, len(a.Tasks))
	copy(tasks, a.Tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		di, dj := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case di == nil && dj == nil:
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		case di == nil:
			return true
		case dj == nil:
			return false
		case di.Equal(*dj):
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		default:
			return di.Before(*dj)
		}
	})
	return tasks
}
