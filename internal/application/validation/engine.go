// internal/application/validation/engine.go
package validation

import (
	"time"

	"elab-credentialing/internal/models"
)

// FieldError is one violated rule on one draft field. Errors render inline
// next to the field they name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error codes reported by the engine.
const (
	CodeMissingRequired  = "MISSING_REQUIRED"
	CodeInvalidValue     = "INVALID_VALUE"
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeMinAge           = "MIN_AGE"
	CodeExpiresTooSoon   = "EXPIRES_TOO_SOON"
	CodeDocumentsMissing = "DOCUMENTS_MISSING"
	CodeStepIncomplete   = "STEP_INCOMPLETE"
)

// ValidateStep checks the draft against every rule of the given step and
// returns all violations in declaration order. It is a total function: bad
// or missing data yields field errors, never a panic. now anchors the
// age and expiry rules so results are reproducible.
func ValidateStep(step models.Step, d *models.Draft, now time.Time) []FieldError {
	if d == nil {
		return []FieldError{{Field: string(step), Message: "draft is missing", Code: CodeMissingRequired}}
	}

	switch step {
	case models.StepApplicationType:
		return validateApplicationType(d)
	case models.StepPersonalInfo:
		return validatePersonalInfo(d, now)
	case models.StepEducation:
		return validateEducation(d, now)
	case models.StepExperience:
		return validateExperience(d)
	case models.StepDocuments:
		return validateDocuments(d)
	case models.StepReview:
		return validateReview(d)
	default:
		return []FieldError{{Field: string(step), Message: "unknown step", Code: CodeInvalidValue}}
	}
}

// StepComplete reports whether the step currently validates clean.
func StepComplete(step models.Step, d *models.Draft, now time.Time) bool {
	return len(ValidateStep(step, d, now)) == 0
}
