// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Application struct {
	BaseModel
	StudentID      uuid.UUID         `json:"student_id" gorm:"type:uuid;not null;index"`
	Name           string            `json:"name" gorm:"not null"`
	GuardianName   string            `json:"guardian_name" gorm:"not null"`
	Email          string            `json:"email" gorm:"not null"`
	GPA            *float64          `json:"gpa,omitempty"`
	GuardianIncome *float64          `json:"guardian_income,omitempty"`
	Department     Department        `json:"department" gorm:"type:varchar(16);not null;index"`
	AssignedHOD    uuid.UUID         `json:"assigned_hod" gorm:"type:uuid;not null;index"`
	Status         ApplicationStatus `json:"status" gorm:"type:varchar(16);not null;default:'submitted'"`
	FinalResult    FinalResult       `json:"final_result" gorm:"type:varchar(16);not null;default:'pending'"`

	Messages  datatypes.JSONSlice[Message]  `json:"messages" gorm:"type:jsonb"`
	Documents datatypes.JSONType[Documents] `json:"documents" gorm:"type:jsonb"`

	// Mirror of the student's latest Assignment.
	AssignedFacultyID          *uuid.UUID `json:"assigned_faculty_id,omitempty" gorm:"type:uuid"`
	AssignedAssignmentID       *uuid.UUID `json:"assigned_assignment_id,omitempty" gorm:"type:uuid"`
	AssignedProjectTitle       string     `json:"assigned_project_title,omitempty"`
	AssignedProjectDescription string     `json:"assigned_project_description,omitempty"`
	AssignedProjectLink        string     `json:"assigned_project_link,omitempty"`
	AssignedAt                 *time.Time `json:"assigned_at,omitempty"`
	AssignmentStartAt          *time.Time `json:"assignment_start_at,omitempty"`
	AssignmentEndAt            *time.Time `json:"assignment_end_at,omitempty"`

	SupersededAt *time.Time `json:"superseded_at,omitempty"`
	Version      int64      `json:"version" gorm:"not null;default:1"`
}

type Message struct {
	Seq    int       `json:"seq"`
	By     string    `json:"by"`
	Text   string    `json:"text"`
	Status string    `json:"status,omitempty"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

type DocumentSlot string

const (
	DocumentIdentityProof DocumentSlot = "identity_proof"
	DocumentIncomeProof   DocumentSlot = "income_proof"
	DocumentResume        DocumentSlot = "resume"
	DocumentResultSheet   DocumentSlot = "result_sheet"
)

var DocumentSlots = []DocumentSlot{
	DocumentIdentityProof, DocumentIncomeProof, DocumentResume, DocumentResultSheet,
}

func (s DocumentSlot) Valid() bool {
	for _, slot := range DocumentSlots {
		if s == slot {
			return true
		}
	}
	return false
}

type Documents struct {
	IdentityProof *FileRef `json:"identity_proof,omitempty"`
	IncomeProof   *FileRef `json:"income_proof,omitempty"`
	Resume        *FileRef `json:"resume,omitempty"`
	ResultSheet   *FileRef `json:"result_sheet,omitempty"`
}

func (d *Documents) Set(slot DocumentSlot, ref *FileRef) {
	switch slot {
	case DocumentIdentityProof:
		d.IdentityProof = ref
	case DocumentIncomeProof:
		d.IncomeProof = ref
	case DocumentResume:
		d.Resume = ref
	case DocumentResultSheet:
		d.ResultSheet = ref
	}
}

func (d Documents) Get(slot DocumentSlot) *FileRef {
	switch slot {
	case DocumentIdentityProof:
		return d.IdentityProof
	case DocumentIncomeProof:
		return d.IncomeProof
	case DocumentResume:
		return d.Resume
	case DocumentResultSheet:
		return d.ResultSheet
	}
	return nil
}

// AppendMessage adds an entry to the action log with the next sequence number.
func (a *Application) AppendMessage(by, text, status, note string, at time.Time) Message {
	msg := Message{
		Seq:    len(a.Messages) + 1,
		By:     by,
		Text:   text,
		Status: status,
		Note:   note,
		At:     at,
	}
	a.Messages = append(a.Messages, msg)
	return msg
}

// ReviewedByHOD reports whether the HOD has acted on the case since it was submitted.
func (a *Application) ReviewedByHOD() bool {
	for _, m := range a.Messages {
		if m.By == string(RoleHOD) {
			return true
		}
	}
	return false
}

func (a *Application) HasAllocation() bool {
	return a.AssignedFacultyID != nil && *a.AssignedFacultyID != uuid.Nil
}

// Mirror copies the allocation summary from the given Assignment.
func (a *Application) Mirror(asg *Assignment) {
	facultyID := asg.FacultyID
	assignmentID := asg.ID
	assignedAt := asg.CreatedAt
	a.AssignedFacultyID = &facultyID
	a.AssignedAssignmentID = &assignmentID
	a.AssignedProjectTitle = asg.ProjectTitle
	a.AssignedProjectDescription = asg.ProjectDescription
	a.AssignedProjectLink = asg.ProjectLink
	a.AssignedAt = &assignedAt
	a.AssignmentStartAt = asg.StartDate
	a.AssignmentEndAt = asg.EndDate
}

// ClearMirror drops the allocation summary.
func (a *Application) ClearMirror() {
	a.AssignedFacultyID = nil
	a.AssignedAssignmentID = nil
	a.AssignedProjectTitle = ""
	a.AssignedProjectDescription = ""
	a.AssignedProjectLink = ""
	a.AssignedAt = nil
	a.AssignmentStartAt = nil
	a.AssignmentEndAt = nil
}

// MirrorMatches reports whether the mirror fields already reflect asg.
func (a *Application) MirrorMatches(asg *Assignment) bool {
	if a.AssignedFacultyID == nil || *a.AssignedFacultyID != asg.FacultyID {
		return false
	}
	if a.AssignedAssignmentID == nil || *a.AssignedAssignmentID != asg.ID {
		return false
	}
	return a.AssignedProjectTitle == asg.ProjectTitle &&
		a.AssignedProjectDescription == asg.ProjectDescription &&
		a.AssignedProjectLink == asg.ProjectLink &&
		sameTime(a.AssignmentStartAt, asg.StartDate) &&
		sameTime(a.AssignmentEndAt, asg.EndDate)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
