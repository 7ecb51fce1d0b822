// internal/services/directory.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

// Directory resolves staff members for the engine.
type Directory interface {
	// HODForDepartment returns the single active HOD of dept.
	HODForDepartment(ctx context.Context, dept models.Department) (uuid.UUID, error)
	Member(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

// StoreDirectory implements Directory over the member records.
type StoreDirectory struct {
	reader store.Reader
}

func NewStoreDirectory(reader store.Reader) *StoreDirectory {
	return &StoreDirectory{reader: reader}
}

func (d *StoreDirectory) HODForDepartment(ctx context.Context, dept models.Department) (uuid.UUID, error) {
	hods, err := d.reader.ListMembers(ctx, store.MemberFilter{
		Role:       models.RoleHOD,
		Department: dept,
		ActiveOnly: true,
	})
	if err != nil {
		return uuid.Nil, err
	}
	switch len(hods) {
	case 0:
		return uuid.Nil, apperror.Validation(fmt.Sprintf("no HOD for department %s", dept))
	case 1:
		return hods[0].ID, nil
	default:
		return uuid.Nil, apperror.Validation(fmt.Sprintf("department %s has more than one HOD", dept))
	}
}

func (d *StoreDirectory) Member(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return d.reader.Member(ctx, id)
}
