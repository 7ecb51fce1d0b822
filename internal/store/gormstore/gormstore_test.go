package gormstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/database"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     apperror.Kind
		resource string
	}{
		{
			name: "nil stays nil",
		},
		{
			name:     "busy faculty index",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: database.IndexActiveFaculty},
			kind:     apperror.KindConflict,
			resource: apperror.ResourceFaculty,
		},
		{
			name:     "busy title index",
			err:      fmt.Errorf("insert assignment: %w", &pgconn.PgError{Code: "23505", ConstraintName: database.IndexActiveTitle}),
			kind:     apperror.KindConflict,
			resource: apperror.ResourceProject,
		},
		{
			name:     "current application index",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: database.IndexCurrentApplication},
			kind:     apperror.KindConflict,
			resource: apperror.ResourceApplication,
		},
		{
			name: "unknown unique index",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			kind: apperror.KindConflict,
		},
		{
			name: "serialization failure",
			err:  &pgconn.PgError{Code: "40001"},
			kind: apperror.KindUnavailable,
		},
		{
			name: "deadlock",
			err:  &pgconn.PgError{Code: "40P01"},
			kind: apperror.KindUnavailable,
		},
		{
			name: "deadline exceeded",
			err:  fmt.Errorf("query: %w", context.DeadlineExceeded),
			kind: apperror.KindUnavailable,
		},
		{
			name: "canceled",
			err:  context.Canceled,
			kind: apperror.KindUnavailable,
		},
		{
			name: "record not found",
			err:  gorm.ErrRecordNotFound,
			kind: apperror.KindNotFound,
		},
		{
			name: "engine error passes through",
			err:  apperror.InvalidState("application is already assigned"),
			kind: apperror.KindInvalidState,
		},
		{
			name: "other driver error",
			err:  &pgconn.PgError{Code: "42P01"},
			kind: apperror.KindInternal,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			kind: apperror.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			_, ok := apperror.As(got)
			assert.True(t, ok)
			assert.Equal(t, tt.kind, apperror.KindOf(got))
			assert.Equal(t, tt.resource, apperror.ResourceOf(got))
		})
	}
}

func TestTranslateKeepsCause(t *testing.T) {
	cause := &pgconn.PgError{Code: "40001"}
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(translate(cause), &pgErr))
	assert.Equal(t, "40001", pgErr.Code)
}

func TestNotFoundNamesRecord(t *testing.T) {
	err := notFound("assignment", gorm.ErrRecordNotFound)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, "assignment not found", err.(*apperror.Error).Message)
}
