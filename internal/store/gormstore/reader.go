// internal/store/gormstore/reader.go
package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

func (s *Store) Application(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := s.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, notFound("application", err)
	}
	return &app, nil
}

func (s *Store) CurrentApplication(ctx context.Context, studentID uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND superseded_at IS NULL", studentID).
		First(&app).Error
	if err != nil {
		return nil, notFound("application", err)
	}
	return &app, nil
}

func (s *Store) ListApplications(ctx context.Context, filter store.ApplicationFilter) ([]models.Application, error) {
	query := s.db.WithContext(ctx).Model(&models.Application{})
	if !filter.IncludeSuperseded {
		query = query.Where("superseded_at IS NULL")
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.HODID != nil {
		query = query.Where("assigned_hod = ?", *filter.HODID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var apps []models.Application
	if err := query.Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, translate(err)
	}
	return apps, nil
}

func (s *Store) Interview(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	var iv models.Interview
	if err := s.db.WithContext(ctx).First(&iv, "id = ?", id).Error; err != nil {
		return nil, notFound("interview", err)
	}
	return &iv, nil
}

func (s *Store) ListInterviews(ctx context.Context, filter store.InterviewFilter) ([]models.Interview, error) {
	query := s.db.WithContext(ctx).Model(&models.Interview{})
	if filter.HODID != nil {
		query = query.Where("hod_id = ?", *filter.HODID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.ApplicationID != nil {
		query = query.Where("application_id = ?", *filter.ApplicationID)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.ScheduledAfter != nil {
		query = query.Where("scheduled_at > ?", *filter.ScheduledAfter)
	}
	if filter.Result != "" {
		query = query.Where("result = ?", filter.Result)
	}

	var list []models.Interview
	if err := query.Order("scheduled_at ASC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (s *Store) Assignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var asg models.Assignment
	if err := s.db.WithContext(ctx).First(&asg, "id = ?", id).Error; err != nil {
		return nil, notFound("assignment", err)
	}
	return &asg, nil
}

func (s *Store) ListAssignments(ctx context.Context, filter store.AssignmentFilter) ([]models.Assignment, error) {
	query := s.db.WithContext(ctx).Model(&models.Assignment{})
	if filter.HODID != nil {
		query = query.Where("hod_id = ?", *filter.HODID)
	}
	if filter.FacultyID != nil {
		query = query.Where("faculty_id = ?", *filter.FacultyID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var list []models.Assignment
	if err := query.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (s *Store) Project(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, notFound("project", err)
	}
	return &project, nil
}

func (s *Store) ListProjects(ctx context.Context, filter store.ProjectFilter) ([]models.Project, error) {
	query := s.db.WithContext(ctx).Model(&models.Project{})
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var list []models.Project
	if err := query.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (s *Store) SaveProject(ctx context.Context, project *models.Project) error {
	return translate(upsert(s.db.WithContext(ctx), project))
}

func (s *Store) Member(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, notFound("member", err)
	}
	return &member, nil
}

func (s *Store) ListMembers(ctx context.Context, filter store.MemberFilter) ([]models.Member, error) {
	query := s.db.WithContext(ctx).Model(&models.Member{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var list []models.Member
	if err := query.Order("name ASC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (s *Store) SaveMember(ctx context.Context, member *models.Member) error {
	return translate(upsert(s.db.WithContext(ctx), member))
}

func upsert(db *gorm.DB, value interface{}) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(value).Error
}
