// internal/store/badgerstore/reader.go
package badgerstore

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

func (s *Store) Application(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app *models.Application
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		app, err = (&tx{txn: txn}).Application(id)
		return err
	})
	return app, err
}

func (s *Store) CurrentApplication(ctx context.Context, studentID uuid.UUID) (*models.Application, error) {
	var app *models.Application
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		app, err = (&tx{txn: txn}).CurrentApplication(studentID)
		return err
	})
	return app, err
}

func (s *Store) ListApplications(ctx context.Context, filter store.ApplicationFilter) ([]models.Application, error) {
	var list []models.Application
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, prefixApplication, func(val []byte) error {
			var app models.Application
			if err := json.Unmarshal(val, &app); err != nil {
				return err
			}
			if filter.Matches(&app) {
				list = append(list, app)
			}
			return nil
		})
	})
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, err
}

func (s *Store) Interview(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	var iv *models.Interview
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		iv, err = (&tx{txn: txn}).Interview(id)
		return err
	})
	return iv, err
}

func (s *Store) ListInterviews(ctx context.Context, filter store.InterviewFilter) ([]models.Interview, error) {
	var list []models.Interview
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, prefixInterview, func(val []byte) error {
			var iv models.Interview
			if err := json.Unmarshal(val, &iv); err != nil {
				return err
			}
			if filter.Matches(&iv) {
				list = append(list, iv)
			}
			return nil
		})
	})
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].ScheduledAt.Before(list[j].ScheduledAt)
	})
	return list, err
}

func (s *Store) Assignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var asg *models.Assignment
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		asg, err = (&tx{txn: txn}).Assignment(id)
		return err
	})
	return asg, err
}

func (s *Store) ListAssignments(ctx context.Context, filter store.AssignmentFilter) ([]models.Assignment, error) {
	var list []models.Assignment
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, prefixAssignment, func(val []byte) error {
			var asg models.Assignment
			if err := json.Unmarshal(val, &asg); err != nil {
				return err
			}
			asg.ProjectTitleKey = asg.TitleKey()
			if filter.Matches(&asg) {
				list = append(list, asg)
			}
			return nil
		})
	})
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, err
}

func (s *Store) Project(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project *models.Project
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		project, err = (&tx{txn: txn}).Project(id)
		return err
	})
	return project, err
}

func (s *Store) ListProjects(ctx context.Context, filter store.ProjectFilter) ([]models.Project, error) {
	var list []models.Project
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, prefixProject, func(val []byte) error {
			var project models.Project
			if err := json.Unmarshal(val, &project); err != nil {
				return err
			}
			if filter.Matches(&project) {
				list = append(list, project)
			}
			return nil
		})
	})
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, err
}

func (s *Store) SaveProject(ctx context.Context, project *models.Project) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		touch(&project.BaseModel)
		return setJSON(txn, projectKey(project.ID), project)
	})
}

func (s *Store) Member(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := s.view(ctx, func(txn *badger.Txn) error {
		return lookup(txn, memberKey(id), &member, "member")
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *Store) ListMembers(ctx context.Context, filter store.MemberFilter) ([]models.Member, error) {
	var list []models.Member
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, prefixMember, func(val []byte) error {
			var member models.Member
			if err := json.Unmarshal(val, &member); err != nil {
				return err
			}
			if filter.Matches(&member) {
				list = append(list, member)
			}
			return nil
		})
	})
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list, err
}

func (s *Store) SaveMember(ctx context.Context, member *models.Member) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		touch(&member.BaseModel)
		return setJSON(txn, memberKey(member.ID), member)
	})
}
