package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/javajoker/placement-backend/internal/models"
)

func TestEligibility(t *testing.T) {
	facultyID := uuid.New()

	cases := []struct {
		name       string
		app        *models.Application
		interview  bool
		allocation bool
	}{
		{"nil", nil, false, false},
		{"submitted", &models.Application{Status: models.ApplicationStatusSubmitted, FinalResult: models.FinalResultPending}, false, false},
		{"accepted", &models.Application{Status: models.ApplicationStatusAccepted, FinalResult: models.FinalResultPending}, true, true},
		{"passed interview", &models.Application{Status: models.ApplicationStatusSubmitted, FinalResult: models.FinalResultPass}, false, true},
		{"rejected after pass", &models.Application{Status: models.ApplicationStatusRejected, FinalResult: models.FinalResultPass}, false, false},
		{"failed", &models.Application{Status: models.ApplicationStatusRejected, FinalResult: models.FinalResultFail}, false, false},
		{"already allocated", &models.Application{Status: models.ApplicationStatusAccepted, AssignedFacultyID: &facultyID}, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.interview, IsEligibleForInterview(tc.app))
			assert.Equal(t, tc.allocation, IsEligibleForAllocation(tc.app))
		})
	}
}
