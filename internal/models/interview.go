// internal/models/interview.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Interview struct {
	BaseModel
	ApplicationID uuid.UUID       `json:"application_id" gorm:"type:uuid;not null;index"`
	StudentID     uuid.UUID       `json:"student_id" gorm:"type:uuid;not null;index"`
	HODID         uuid.UUID       `json:"hod_id" gorm:"type:uuid;not null;index"`
	Department    Department      `json:"department" gorm:"type:varchar(16);not null"`
	ScheduledAt   time.Time       `json:"scheduled_at" gorm:"not null"`
	Mode          InterviewMode   `json:"mode" gorm:"type:varchar(16);not null"`
	MeetingURL    string          `json:"meeting_url,omitempty"`
	Location      string          `json:"location,omitempty"`
	Result        InterviewResult `json:"result" gorm:"type:varchar(16);not null;default:'pending'"`
	Notes         string          `json:"notes,omitempty"`
	ScoredBy      *uuid.UUID      `json:"scored_by,omitempty" gorm:"type:uuid"`
	ScoredAt      *time.Time      `json:"scored_at,omitempty"`
}

func (i *Interview) Pending() bool {
	return i.Result == InterviewResultPending
}
