// internal/services/catalog_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

// CatalogService maintains the member directory and the department project
// catalog.
type CatalogService struct {
	store store.Store
	opts  Options
}

// RegisterMemberRequest mirrors an account that already exists with the
// identity provider. ID is that provider's user id.
type RegisterMemberRequest struct {
	ID         uuid.UUID `json:"id" validate:"required"`
	Name       string    `json:"name" validate:"required,max=120"`
	Email      string    `json:"email" validate:"required,email"`
	Role       string    `json:"role" validate:"required,oneof=admin hod faculty student"`
	Department string    `json:"department,omitempty" validate:"omitempty,department"`
	Active     *bool     `json:"active,omitempty"`
}

type CreateProjectRequest struct {
	Department  string   `json:"department" validate:"required,department"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description,omitempty" validate:"max=4000"`
	WhatToDo    string   `json:"what_to_do,omitempty" validate:"max=4000"`
	TechStack   []string `json:"tech_stack,omitempty" validate:"max=20,dive,max=50"`
	DocLink     string   `json:"doc_link,omitempty" validate:"omitempty,url"`
}

type MemberQuery struct {
	Role       string
	Department string
}

func NewCatalogService(st store.Store, opts Options) *CatalogService {
	return &CatalogService{
		store: st,
		opts:  opts.withDefaults(),
	}
}

func (s *CatalogService) RegisterMember(ctx context.Context, caller models.Identity, req *RegisterMemberRequest) (member *models.Member, err error) {
	defer observe("catalog.register_member", time.Now(), &err)

	if err := caller.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := validate(req); err != nil {
		return nil, err
	}

	role := models.Role(req.Role)
	var dept models.Department
	if strings.TrimSpace(req.Department) != "" {
		var ok bool
		if dept, ok = models.NormalizeDepartment(req.Department); !ok {
			return nil, apperror.Validation("invalid department").WithDetails(models.Departments)
		}
	}
	if dept == "" && (role == models.RoleHOD || role == models.RoleFaculty) {
		return nil, apperror.Validation("department is required for HOD and faculty members")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	if role == models.RoleHOD && active {
		hods, err := s.store.ListMembers(ctx, store.MemberFilter{Role: models.RoleHOD, Department: dept, ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		for _, hod := range hods {
			if hod.ID != req.ID {
				return nil, apperror.Conflict(apperror.ResourceDepartment, "department already has an HOD")
			}
		}
	}

	member = &models.Member{
		Name:       req.Name,
		Email:      req.Email,
		Role:       role,
		Department: dept,
		Active:     active,
	}
	member.ID = req.ID
	if existing, err := s.store.Member(ctx, req.ID); err == nil {
		member.CreatedAt = existing.CreatedAt
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	if err := s.store.SaveMember(ctx, member); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"member_id":  member.ID,
		"role":       member.Role,
		"department": member.Department,
	}).Info("Directory member saved")

	return member, nil
}

func (s *CatalogService) ListMembers(ctx context.Context, caller models.Identity, query MemberQuery) ([]models.Member, error) {
	if err := caller.Require(models.RoleAdmin); err != nil {
		return nil, err
	}

	filter := store.MemberFilter{Role: models.Role(strings.ToLower(query.Role))}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperror.Validation("invalid role filter")
	}
	if query.Department != "" {
		dept, ok := models.NormalizeDepartment(query.Department)
		if !ok {
			return nil, apperror.Validation("invalid department").WithDetails(models.Departments)
		}
		filter.Department = dept
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	return s.store.ListMembers(ctx, filter)
}

// FacultiesForHOD lists the active faculty of the caller's department.
func (s *CatalogService) FacultiesForHOD(ctx context.Context, caller models.Identity) ([]models.Member, error) {
	if err := caller.Require(models.RoleHOD); err != nil {
		return nil, err
	}
	if caller.Department == "" {
		return nil, apperror.Forbidden("HOD has no department")
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	return s.store.ListMembers(ctx, store.MemberFilter{
		Role:       models.RoleFaculty,
		Department: caller.Department,
		ActiveOnly: true,
	})
}

func (s *CatalogService) CreateProject(ctx context.Context, caller models.Identity, req *CreateProjectRequest) (project *models.Project, err error) {
	defer observe("catalog.create_project", time.Now(), &err)

	if err := caller.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.WhatToDo = strings.TrimSpace(req.WhatToDo)
	req.DocLink = strings.TrimSpace(req.DocLink)
	if err := validate(req); err != nil {
		return nil, err
	}
	dept, ok := models.NormalizeDepartment(req.Department)
	if !ok {
		return nil, apperror.Validation("invalid department").WithDetails(models.Departments)
	}

	stack := make([]string, 0, len(req.TechStack))
	for _, item := range req.TechStack {
		if item = strings.TrimSpace(item); item != "" {
			stack = append(stack, item)
		}
	}

	project = &models.Project{
		Department:  dept,
		Title:       req.Title,
		Description: req.Description,
		WhatToDo:    req.WhatToDo,
		TechStack:   stack,
		DocLink:     req.DocLink,
		Active:      true,
		CreatedBy:   caller.UserID,
	}
	project.ID = uuid.New()

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	if err := s.store.SaveProject(ctx, project); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"project_id": project.ID,
		"department": project.Department,
	}).Info("Project created")
	return project, nil
}

// ListProjects lists a department's catalog. HODs always see their own
// department.
func (s *CatalogService) ListProjects(ctx context.Context, caller models.Identity, department string, activeOnly bool) ([]models.Project, error) {
	if err := caller.Require(models.RoleAdmin, models.RoleHOD); err != nil {
		return nil, err
	}

	filter := store.ProjectFilter{ActiveOnly: activeOnly}
	switch {
	case caller.Is(models.RoleHOD):
		filter.Department = caller.Department
	case department != "":
		dept, ok := models.NormalizeDepartment(department)
		if !ok {
			return nil, apperror.Validation("invalid department").WithDetails(models.Departments)
		}
		filter.Department = dept
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	return s.store.ListProjects(ctx, filter)
}

func (s *CatalogService) DeactivateProject(ctx context.Context, caller models.Identity, projectID uuid.UUID) (*models.Project, error) {
	if err := caller.Require(models.RoleAdmin); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	project, err := s.store.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.Active {
		return project, nil
	}
	project.Active = false
	if err := s.store.SaveProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}
