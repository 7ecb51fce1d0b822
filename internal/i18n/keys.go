// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyHealthy = "health.ok"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthRoleDenied   = "auth.role_denied"

	// Error kinds
	KeyErrorValidation   = "errors.VALIDATION_ERROR"
	KeyErrorForbidden    = "errors.FORBIDDEN"
	KeyErrorInvalidState = "errors.INVALID_STATE"
	KeyErrorConflict     = "errors.CONFLICT"
	KeyErrorNotFound     = "errors.NOT_FOUND"
	KeyErrorUnavailable  = "errors.UNAVAILABLE"
	KeyErrorInternal     = "errors.INTERNAL_ERROR"

	// Conflicts, suffixed with the contested resource
	KeyConflictPrefix = "conflict."

	// Applications
	KeyApplicationSubmitted = "application.submitted"
	KeyApplicationUpdated   = "application.updated"
	KeyApplicationReviewed  = "application.reviewed"
	KeyDocumentUploaded     = "application.document_uploaded"

	// Interviews
	KeyInterviewScheduled   = "interview.scheduled"
	KeyInterviewRescheduled = "interview.rescheduled"
	KeyInterviewScored      = "interview.scored"

	// Assignments
	KeyAssignmentCreated    = "assignment.created"
	KeyAssignmentCompleted  = "assignment.completed"
	KeyAssignmentReconciled = "assignment.reconciled"

	// Tasks
	KeyTaskCreated       = "task.created"
	KeyTaskUpdated       = "task.updated"
	KeySubmissionCreated = "task.submission_created"

	// Catalog
	KeyMemberSaved        = "catalog.member_saved"
	KeyProjectCreated     = "catalog.project_created"
	KeyProjectDeactivated = "catalog.project_deactivated"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyValidationID      = "validation.invalid_id"

	// File Upload
	KeyFileRequired     = "file.required"
	KeyFileUploadFailed = "file.upload_failed"

	// Rate limiting
	KeyRateLimited = "rate_limit.exceeded"
)
