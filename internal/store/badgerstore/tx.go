// internal/store/badgerstore/tx.go
package badgerstore

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/models"
)

type tx struct {
	txn              *badger.Txn
	exclusiveFaculty bool
}

func lookup(txn *badger.Txn, key []byte, out interface{}, what string) error {
	err := getJSON(txn, key, out)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperror.NotFound(what + " not found")
	}
	return err
}

func (t *tx) Application(id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := lookup(t.txn, applicationKey(id), &app, "application"); err != nil {
		return nil, err
	}
	return &app, nil
}

func (t *tx) CurrentApplication(studentID uuid.UUID) (*models.Application, error) {
	id, err := getID(t.txn, currentAppKey(studentID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperror.NotFound("application not found")
	}
	if err != nil {
		return nil, err
	}
	return t.Application(id)
}

func (t *tx) CreateApplication(app *models.Application) error {
	if _, err := getID(t.txn, currentAppKey(app.StudentID)); err == nil {
		return apperror.Conflict(apperror.ResourceApplication, "application is already taken")
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	touch(&app.BaseModel)
	if app.Version == 0 {
		app.Version = 1
	}
	if err := setJSON(t.txn, applicationKey(app.ID), app); err != nil {
		return err
	}
	if app.SupersededAt == nil {
		return setID(t.txn, currentAppKey(app.StudentID), app.ID)
	}
	return nil
}

func (t *tx) UpdateApplication(app *models.Application) error {
	stored, err := t.Application(app.ID)
	if err != nil {
		return err
	}
	if stored.Version != app.Version {
		return apperror.Conflict(apperror.ResourceApplication, "application was modified concurrently")
	}

	app.Version++
	touch(&app.BaseModel)
	if err := setJSON(t.txn, applicationKey(app.ID), app); err != nil {
		return err
	}

	if stored.SupersededAt == nil && app.SupersededAt != nil {
		current, err := getID(t.txn, currentAppKey(app.StudentID))
		if err == nil && current == app.ID {
			return t.txn.Delete(currentAppKey(app.StudentID))
		}
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}

func (t *tx) Interview(id uuid.UUID) (*models.Interview, error) {
	var iv models.Interview
	if err := lookup(t.txn, interviewKey(id), &iv, "interview"); err != nil {
		return nil, err
	}
	return &iv, nil
}

func (t *tx) PendingInterview(applicationID uuid.UUID) (*models.Interview, error) {
	id, err := getID(t.txn, pendingIVKey(applicationID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperror.NotFound("interview not found")
	}
	if err != nil {
		return nil, err
	}
	return t.Interview(id)
}

func (t *tx) CreateInterview(iv *models.Interview) error {
	if iv.Pending() {
		if _, err := getID(t.txn, pendingIVKey(iv.ApplicationID)); err == nil {
			return apperror.Conflict(apperror.ResourceInterview, "interview is already taken")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
	}

	touch(&iv.BaseModel)
	if err := setJSON(t.txn, interviewKey(iv.ID), iv); err != nil {
		return err
	}
	if iv.Pending() {
		return setID(t.txn, pendingIVKey(iv.ApplicationID), iv.ID)
	}
	return nil
}

func (t *tx) UpdateInterview(iv *models.Interview) error {
	stored, err := t.Interview(iv.ID)
	if err != nil {
		return err
	}

	touch(&iv.BaseModel)
	if err := setJSON(t.txn, interviewKey(iv.ID), iv); err != nil {
		return err
	}
	if stored.Pending() && !iv.Pending() {
		return t.txn.Delete(pendingIVKey(iv.ApplicationID))
	}
	return nil
}

func (t *tx) Assignment(id uuid.UUID) (*models.Assignment, error) {
	var asg models.Assignment
	if err := lookup(t.txn, assignmentKey(id), &asg, "assignment"); err != nil {
		return nil, err
	}
	asg.ProjectTitleKey = asg.TitleKey()
	return &asg, nil
}

func (t *tx) assignmentsAt(key []byte) ([]models.Assignment, error) {
	ids, err := getIDs(t.txn, key)
	if err != nil {
		return nil, err
	}
	list := make([]models.Assignment, 0, len(ids))
	for _, id := range ids {
		asg, err := t.Assignment(id)
		if err != nil {
			return nil, err
		}
		list = append(list, *asg)
	}
	return list, nil
}

func (t *tx) ActiveAssignmentsByStudent(studentID uuid.UUID) ([]models.Assignment, error) {
	return t.assignmentsAt(activeStudentKey(studentID))
}

func (t *tx) ActiveAssignmentsByFaculty(facultyID uuid.UUID) ([]models.Assignment, error) {
	return t.assignmentsAt(activeFacultyKey(facultyID))
}

func (t *tx) ActiveAssignmentsByTitle(titleKey string) ([]models.Assignment, error) {
	return t.assignmentsAt(activeTitleKey(titleKey))
}

func (t *tx) LatestAssignment(studentID uuid.UUID) (*models.Assignment, error) {
	id, err := getID(t.txn, latestAsgKey(studentID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperror.NotFound("assignment not found")
	}
	if err != nil {
		return nil, err
	}
	return t.Assignment(id)
}

// claimActive records asg in the active indexes, refusing any resource that
// is already held.
func (t *tx) claimActive(asg *models.Assignment) error {
	claims := []struct {
		key       []byte
		resource  string
		exclusive bool
	}{
		{activeStudentKey(asg.StudentID), apperror.ResourceStudent, true},
		{activeFacultyKey(asg.FacultyID), apperror.ResourceFaculty, t.exclusiveFaculty},
		{activeTitleKey(asg.TitleKey()), apperror.ResourceProject, true},
	}

	for _, c := range claims {
		ids, err := getIDs(t.txn, c.key)
		if err != nil {
			return err
		}
		if c.exclusive && len(ids) > 0 {
			return apperror.Conflict(c.resource, c.resource+" is already taken")
		}
	}
	for _, c := range claims {
		if err := addID(t.txn, c.key, asg.ID); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) releaseActive(asg *models.Assignment) error {
	keys := [][]byte{
		activeStudentKey(asg.StudentID),
		activeFacultyKey(asg.FacultyID),
		activeTitleKey(asg.TitleKey()),
	}
	for _, key := range keys {
		if err := removeID(t.txn, key, asg.ID); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) CreateAssignment(asg *models.Assignment) error {
	touch(&asg.BaseModel)
	if asg.Version == 0 {
		asg.Version = 1
	}
	if asg.Active() {
		if err := t.claimActive(asg); err != nil {
			return err
		}
	}
	if err := setJSON(t.txn, assignmentKey(asg.ID), asg); err != nil {
		return err
	}
	return setID(t.txn, latestAsgKey(asg.StudentID), asg.ID)
}

func (t *tx) UpdateAssignment(asg *models.Assignment) error {
	stored, err := t.Assignment(asg.ID)
	if err != nil {
		return err
	}
	if stored.Version != asg.Version {
		return apperror.Conflict("assignment", "assignment was modified concurrently")
	}

	switch {
	case stored.Active() && !asg.Active():
		if err := t.releaseActive(stored); err != nil {
			return err
		}
	case !stored.Active() && asg.Active():
		if err := t.claimActive(asg); err != nil {
			return err
		}
	}

	asg.Version++
	touch(&asg.BaseModel)
	return setJSON(t.txn, assignmentKey(asg.ID), asg)
}

func (t *tx) Project(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := lookup(t.txn, projectKey(id), &project, "project"); err != nil {
		return nil, err
	}
	return &project, nil
}
