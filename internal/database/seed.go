// internal/database/seed.go
package database

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/store"
)

// SeedFile describes directory members and catalog projects to load.
type SeedFile struct {
	Members  []SeedMember  `yaml:"members"`
	Projects []SeedProject `yaml:"projects"`
}

type SeedMember struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Role       string `yaml:"role"`
	Department string `yaml:"department"`
}

type SeedProject struct {
	Department  string   `yaml:"department"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	WhatToDo    string   `yaml:"what_to_do"`
	TechStack   []string `yaml:"tech_stack"`
	DocLink     string   `yaml:"doc_link"`
}

var seedNamespace = uuid.MustParse("6f1d1c1e-2b1a-4f0e-9a53-0c4d7f2b9e11")

func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// SeedInitialData writes the seed into st. Running it twice leaves the same
// records: projects get ids derived from department and title.
func SeedInitialData(ctx context.Context, st store.Store, seed *SeedFile) error {
	logrus.Info("Seeding initial data...")

	for _, m := range seed.Members {
		member, err := m.toModel()
		if err != nil {
			return err
		}
		if err := st.SaveMember(ctx, member); err != nil {
			return fmt.Errorf("failed to save member %s: %w", m.Email, err)
		}
	}

	for _, p := range seed.Projects {
		project, err := p.toModel()
		if err != nil {
			return err
		}
		if err := st.SaveProject(ctx, project); err != nil {
			return fmt.Errorf("failed to save project %q: %w", p.Title, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"members":  len(seed.Members),
		"projects": len(seed.Projects),
	}).Info("Initial data seeding completed")
	return nil
}

func (m SeedMember) toModel() (*models.Member, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("member %s: invalid id %q", m.Email, m.ID)
	}
	role := models.Role(m.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("member %s: invalid role %q", m.Email, m.Role)
	}

	member := &models.Member{
		Name:   m.Name,
		Email:  m.Email,
		Role:   role,
		Active: true,
	}
	member.ID = id

	if m.Department != "" {
		dept, ok := models.NormalizeDepartment(m.Department)
		if !ok {
			return nil, fmt.Errorf("member %s: unknown department %q", m.Email, m.Department)
		}
		member.Department = dept
	}
	return member, nil
}

func (p SeedProject) toModel() (*models.Project, error) {
	dept, ok := models.NormalizeDepartment(p.Department)
	if !ok {
		return nil, fmt.Errorf("project %q: unknown department %q", p.Title, p.Department)
	}

	project := &models.Project{
		Department:  dept,
		Title:       p.Title,
		Description: p.Description,
		WhatToDo:    p.WhatToDo,
		TechStack:   p.TechStack,
		DocLink:     p.DocLink,
		Active:      true,
	}
	project.ID = uuid.NewSHA1(seedNamespace, []byte(string(dept)+"/"+models.NormalizeTitle(p.Title)))
	return project, nil
}
