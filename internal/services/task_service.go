// internal/services/task_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

type TaskService struct {
	store    store.Store
	notifier Notifier
	opts     Options
}

type AddTaskRequest struct {
	Title   string     `json:"title" validate:"required,max=200"`
	Details string     `json:"details,omitempty" validate:"max=4000"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest is a partial update; nil fields are left alone.
type UpdateTaskRequest struct {
	Title        *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Details      *string    `json:"details,omitempty" validate:"omitempty,max=4000"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
	Status       *string    `json:"status,omitempty"`
}

type SubmitWorkRequest struct {
	Note string          `json:"note,omitempty" validate:"max=4000"`
	Link string          `json:"link,omitempty" validate:"omitempty,url"`
	File *models.FileRef `json:"file,omitempty"`
}

func NewTaskService(st store.Store, notifier Notifier, opts Options) *TaskService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &TaskService{
		store:    st,
		notifier: notifier,
		opts:     opts.withDefaults(),
	}
}

func (s *TaskService) AddTask(ctx context.Context, caller models.Identity, assignmentID uuid.UUID, req *AddTaskRequest) (task *models.Task, err error) {
	defer observe("task.add", time.Now(), &err)

	if err := caller.Require(models.RoleFaculty); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Details = strings.TrimSpace(req.Details)
	if err := validate(req); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	var asg *models.Assignment
	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		asg, err = s.facultyAssignment(tx, caller, assignmentID)
		if err != nil {
			return err
		}

		now := s.opts.now()
		task = &models.Task{
			ID:          uuid.New(),
			Title:       req.Title,
			Details:     req.Details,
			DueDate:     utcPtr(req.DueDate),
			Status:      models.TaskStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
			Submissions: []models.Submission{},
		}
		asg.Tasks = append(asg.Tasks, *task)
		return tx.UpdateAssignment(asg)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"assignment_id": asg.ID,
		"task_id":       task.ID,
	}).Info("Task added")
	s.notifier.Notify(ctx, taskNotice(asg.StudentID, asg.ID, task.ID, NotificationTask, fmt.Sprintf("New task: %s", task.Title)))

	return task, nil
}

// UpdateTask edits a task in place. Setting a status the task already has is
// a no-op.
func (s *TaskService) UpdateTask(ctx context.Context, caller models.Identity, assignmentID, taskID uuid.UUID, req *UpdateTaskRequest) (task *models.Task, err error) {
	defer observe("task.update", time.Now(), &err)

	if err := caller.Require(models.RoleFaculty); err != nil {
		return nil, err
	}
	trimPtr(req.Title)
	trimPtr(req.Details)
	if err := validate(req); err != nil {
		return nil, err
	}
	var status models.TaskStatus
	if req.Status != nil {
		status = models.TaskStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		if !status.Valid() {
			return nil, apperror.Validation("invalid task status")
		}
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		asg, err := s.facultyAssignment(tx, caller, assignmentID)
		if err != nil {
			return err
		}
		_, current := asg.Task(taskID)
		if current == nil {
			return apperror.NotFound("task not found")
		}

		now := s.opts.now()
		changed := false
		if req.Title != nil && *req.Title != current.Title {
			current.Title = *req.Title
			changed = true
		}
		if req.Details != nil && *req.Details != current.Details {
			current.Details = *req.Details
			changed = true
		}
		if req.ClearDueDate {
			if current.DueDate != nil {
				current.DueDate = nil
				changed = true
			}
		} else if req.DueDate != nil {
			current.DueDate = utcPtr(req.DueDate)
			changed = true
		}
		if status != "" && status != current.Status {
			current.Status = status
			if status == models.TaskStatusCompleted {
				current.CompletedAt = &now
			} else {
				current.CompletedAt = nil
			}
			changed = true
		}

		copied := *current
		task = &copied
		if !changed {
			return nil
		}
		current.UpdatedAt = now
		task.UpdatedAt = now
		return tx.UpdateAssignment(asg)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) SetTaskStatus(ctx context.Context, caller models.Identity, assignmentID, taskID uuid.UUID, status string) (*models.Task, error) {
	return s.UpdateTask(ctx, caller, assignmentID, taskID, &UpdateTaskRequest{Status: &status})
}

// SubmitWork appends a student's submission to a task. Earlier submissions
// are never replaced.
func (s *TaskService) SubmitWork(ctx context.Context, caller models.Identity, assignmentID, taskID uuid.UUID, req *SubmitWorkRequest) (sub *models.Submission, err error) {
	defer observe("task.submit_work", time.Now(), &err)

	if err := caller.Require(models.RoleStudent); err != nil {
		return nil, err
	}
	req.Note = strings.TrimSpace(req.Note)
	req.Link = strings.TrimSpace(req.Link)
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.File != nil && req.File.Empty() {
		req.File = nil
	}
	if req.Note == "" && req.Link == "" && req.File == nil {
		return nil, apperror.Validation("a note, link or file is required")
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	var asg *models.Assignment
	err = s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		asg, err = tx.Assignment(assignmentID)
		if err != nil {
			return err
		}
		if asg.StudentID != caller.UserID {
			return apperror.Forbidden("assignment belongs to another student")
		}
		if !asg.Active() {
			return apperror.InvalidState("assignment is completed")
		}
		_, task := asg.Task(taskID)
		if task == nil {
			return apperror.NotFound("task not found")
		}

		sub = &models.Submission{
			ID:          uuid.New(),
			StudentID:   caller.UserID,
			Note:        req.Note,
			Link:        req.Link,
			File:        req.File,
			SubmittedAt: s.opts.now(),
		}
		task.Submissions = append(task.Submissions, *sub)
		return tx.UpdateAssignment(asg)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"assignment_id": asg.ID,
		"task_id":       taskID,
		"submission_id": sub.ID,
	}).Info("Work submitted")
	s.notifier.Notify(ctx, taskNotice(asg.FacultyID, asg.ID, taskID, NotificationSubmission, "A student submitted work"))

	return sub, nil
}

// ListTasks returns the tasks of an assignment ordered by due date.
func (s *TaskService) ListTasks(ctx context.Context, caller models.Identity, assignmentID uuid.UUID) ([]models.Task, error) {
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	asg, err := s.store.Assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case models.RoleFaculty:
		if asg.FacultyID != caller.UserID {
			return nil, apperror.Forbidden("assignment belongs to another faculty member")
		}
	case models.RoleStudent:
		if asg.StudentID != caller.UserID {
			return nil, apperror.Forbidden("assignment belongs to another student")
		}
	case models.RoleHOD:
		if !caller.InDepartment(asg.Department) {
			return nil, apperror.Forbidden("assignment belongs to another department")
		}
	case models.RoleAdmin:
	default:
		return nil, apperror.Forbidden("role may not view tasks")
	}
	return asg.SortedTasks(), nil
}

func (s *TaskService) facultyAssignment(tx store.Tx, caller models.Identity, assignmentID uuid.UUID) (*models.Assignment, error) {
	asg, err := tx.Assignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if asg.FacultyID != caller.UserID {
		return nil, apperror.Forbidden("assignment belongs to another faculty member")
	}
	if !asg.Active() {
		return nil, apperror.InvalidState("assignment is completed")
	}
	return asg, nil
}
