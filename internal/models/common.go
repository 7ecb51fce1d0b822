// internal/models/common.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. Records are never physically deleted.
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// FileRef points at content held by the external storage collaborator.
type FileRef struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func (f *FileRef) Empty() bool {
	return f == nil || (f.Key == "" && f.URL == "")
}

// NormalizeTitle folds case and collapses whitespace so that project titles
// compare equal regardless of spacing or capitalisation.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// Enums
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleHOD     Role = "hod"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHOD, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// Message authors besides the four roles.
const AuthorSystem = "system"

type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

type FinalResult string

const (
	FinalResultPending FinalResult = "pending"
	FinalResultPass    FinalResult = "pass"
	FinalResultFail    FinalResult = "fail"
)

type InterviewMode string

const (
	InterviewModeOnline  InterviewMode = "online"
	InterviewModeOffline InterviewMode = "offline"
)

type InterviewResult string

const (
	InterviewResultPending InterviewResult = "pending"
	InterviewResultPass    InterviewResult = "pass"
	InterviewResultFail    InterviewResult = "fail"
)

type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}
