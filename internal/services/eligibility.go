// internal/services/eligibility.go
package services

import "github.com/javajoker/placement-backend/internal/models"

// IsEligibleForInterview reports whether an HOD may schedule an interview.
func IsEligibleForInterview(app *models.Application) bool {
	return app != nil && app.Status == models.ApplicationStatusAccepted
}

// IsEligibleForAllocation reports whether a faculty member and project may be
// assigned. Rejection is terminal even when an earlier interview passed.
func IsEligibleForAllocation(app *models.Application) bool {
	if app == nil || app.Status == models.ApplicationStatusRejected {
		return false
	}
	if app.HasAllocation() {
		return false
	}
	return app.Status == models.ApplicationStatusAccepted || app.FinalResult == models.FinalResultPass
}
