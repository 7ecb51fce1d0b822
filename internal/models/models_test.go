package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDepartment(t *testing.T) {
	cases := map[string]Department{
		"cse":        DepartmentCSE,
		" CS ":       DepartmentCSE,
		"Computer":   DepartmentCSE,
		"mech":       DepartmentME,
		"E&CE":       DepartmentEC,
		"ai-ml":      DepartmentAIML,
		"civ":        DepartmentCIVIL,
		"IT":         DepartmentIT,
		"electrical": DepartmentEE,
	}
	for raw, want := range cases {
		got, ok := NormalizeDepartment(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := NormalizeDepartment("ARTS")
	assert.False(t, ok)
	_, ok = NormalizeDepartment("  ")
	assert.False(t, ok)
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "campus energy monitor", NormalizeTitle("  Campus   Energy\tMonitor "))
	assert.Equal(t, NormalizeTitle("P"), NormalizeTitle(" p "))
}

func TestAppendMessageSequence(t *testing.T) {
	app := &Application{}
	now := time.Now()
	app.AppendMessage(AuthorSystem, "Application submitted", "", "", now)
	assert.False(t, app.ReviewedByHOD())

	app.AppendMessage(string(RoleHOD), "HOD marked the application as pending", "submitted", "", now)
	require.Len(t, app.Messages, 2)
	assert.Equal(t, 1, app.Messages[0].Seq)
	assert.Equal(t, 2, app.Messages[1].Seq)
	assert.True(t, app.ReviewedByHOD())
}

func TestDocumentsSetGet(t *testing.T) {
	var docs Documents
	ref := &FileRef{Key: "k", Filename: "resume.pdf"}
	docs.Set(DocumentResume, ref)

	assert.Equal(t, ref, docs.Get(DocumentResume))
	assert.Nil(t, docs.Get(DocumentIncomeProof))
	assert.False(t, DocumentSlot("photo").Valid())
}

func TestSortedTasks(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := base.Add(48 * time.Hour)
	sooner := base.Add(24 * time.Hour)
	asg := &Assignment{Tasks: []Task{
		{ID: uuid.New(), Title: "late", DueDate: &later, CreatedAt: base},
		{ID: uuid.New(), Title: "undated", CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), Title: "soon", DueDate: &sooner, CreatedAt: base.Add(2 * time.Minute)},
	}}

	sorted := asg.SortedTasks()
	assert.Equal(t, "undated", sorted[0].Title)
	assert.Equal(t, "soon", sorted[1].Title)
	assert.Equal(t, "late", sorted[2].Title)
	assert.Equal(t, "late", asg.Tasks[0].Title)
}

func TestMirrorMatches(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Hour)
	asg := &Assignment{FacultyID: uuid.New(), ProjectTitle: "P", StartDate: &start, EndDate: &end}
	asg.ID = uuid.New()

	app := &Application{}
	assert.False(t, app.MirrorMatches(asg))
	app.Mirror(asg)
	assert.True(t, app.MirrorMatches(asg))
	assert.True(t, app.HasAllocation())

	asg.ProjectTitle = "Q"
	assert.False(t, app.MirrorMatches(asg))
}
