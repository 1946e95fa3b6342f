// internal/application/wizard/steps.go
package wizard

import (
	"time"

	"elab-credentialing/internal/application/validation"
	"elab-credentialing/internal/models"
)

// StepDefinition is one row of the fixed step table.
type StepDefinition struct {
	ID    models.Step
	Title string
}

// stepTable is the single source of the wizard's step order. Adding or
// removing a step is a deployment-time change.
var stepTable = []StepDefinition{
	{ID: models.StepApplicationType, Title: "Application Type"},
	{ID: models.StepPersonalInfo, Title: "Personal Information"},
	{ID: models.StepEducation, Title: "Education"},
	{ID: models.StepExperience, Title: "Work Experience"},
	{ID: models.StepDocuments, Title: "Documents"},
	{ID: models.StepReview, Title: "Review & Submit"},
}

// Steps returns a copy of the step table in wizard order.
func Steps() []StepDefinition {
	return append([]StepDefinition(nil), stepTable...)
}

// TotalSteps is the number of wizard steps.
func TotalSteps() int {
	return len(stepTable)
}

// StepTitle returns the display title, or "" for an unknown step.
func StepTitle(step models.Step) string {
	for _, def := range stepTable {
		if def.ID == step {
			return def.Title
		}
	}
	return ""
}

// RequiredFields answers the step table's required-field predicate: the
// fields of step still failing validation against the draft.
func RequiredFields(step models.Step, d *models.Draft, now time.Time) []string {
	errs := validation.ValidateStep(step, d, now)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func stepIndex(step models.Step) int {
	for i, def := range stepTable {
		if def.ID == step {
			return i
		}
	}
	return -1
}

func firstStep() models.Step { return stepTable[0].ID }
func lastStep() models.Step  { return stepTable[len(stepTable)-1].ID }

// nextStep returns the step after s, or s itself when s is last.
func nextStep(s models.Step) models.Step {
	i := stepIndex(s)
	if i < 0 || i >= len(stepTable)-1 {
		return s
	}
	return stepTable[i+1].ID
}

// prevStep returns the step before s, or s itself when s is first.
func prevStep(s models.Step) models.Step {
	i := stepIndex(s)
	if i <= 0 {
		return s
	}
	return stepTable[i-1].ID
}
