// internal/models/catalog.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Project is a department-scoped template HODs can pick from when allocating.
type Project struct {
	BaseModel
	Department  Department     `json:"department" gorm:"type:varchar(16);not null;index"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	WhatToDo    string         `json:"what_to_do,omitempty"`
	TechStack   pq.StringArray `json:"tech_stack" gorm:"type:text[]"`
	DocLink     string         `json:"doc_link,omitempty"`
	Active      bool           `json:"active" gorm:"not null"`
	CreatedBy   uuid.UUID      `json:"created_by" gorm:"type:uuid"`
}

// Member is a directory entry for a staff or student account. The ID is the
// user id issued by the identity provider.
type Member struct {
	BaseModel
	Name       string     `json:"name" gorm:"not null"`
	Email      string     `json:"email" gorm:"uniqueIndex;not null"`
	Role       Role       `json:"role" gorm:"type:varchar(16);not null;index:idx_members_role_department"`
	Department Department `json:"department,omitempty" gorm:"type:varchar(16);index:idx_members_role_department"`
	Active     bool       `json:"active" gorm:"not null"`
}
