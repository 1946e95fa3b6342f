// internal/application/validation/rules.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"elab-credentialing/internal/application/documents"
	"elab-credentialing/internal/models"
)

const minApplicantAge = 18

// passports must stay valid this long past "now"
const passportMinValidity = 6 // months

var (
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// Minimal phone shape, deliberately not full E.164.
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{5,19}$`)
)

func required(field, value string, errs []FieldError) []FieldError {
	if strings.TrimSpace(value) == "" {
		errs = append(errs, FieldError{
			Field:   field,
			Message: "is required",
			Code:    CodeMissingRequired,
		})
	}
	return errs
}

func validateApplicationType(d *models.Draft) []FieldError {
	var errs []FieldError

	if d.ApplicationType == "" {
		errs = append(errs, FieldError{
			Field:   "applicationType",
			Message: "is required",
			Code:    CodeMissingRequired,
		})
	} else if !d.ApplicationType.IsValid() {
		errs = append(errs, FieldError{
			Field:   "applicationType",
			Message: fmt.Sprintf("unsupported application type %q", d.ApplicationType),
			Code:    CodeInvalidValue,
		})
	}

	errs = required("targetCountry", d.TargetCountry, errs)

	if d.Urgency != models.UrgencyStandard && d.Urgency != models.UrgencyExpedited {
		errs = append(errs, FieldError{
			Field:   "urgency",
			Message: fmt.Sprintf("unsupported urgency %q", d.Urgency),
			Code:    CodeInvalidValue,
		})
	}

	return errs
}

func validatePersonalInfo(d *models.Draft, now time.Time) []FieldError {
	var errs []FieldError
	pi := d.PersonalInfo

	errs = required("personalInfo.firstName", pi.FirstName, errs)
	errs = required("personalInfo.lastName", pi.LastName, errs)

	if strings.TrimSpace(pi.Email) == "" {
		errs = append(errs, FieldError{Field: "personalInfo.email", Message: "is required", Code: CodeMissingRequired})
	} else if !emailRegex.MatchString(pi.Email) {
		errs = append(errs, FieldError{Field: "personalInfo.email", Message: "is not a valid email address", Code: CodeInvalidFormat})
	}

	if strings.TrimSpace(pi.Phone) == "" {
		errs = append(errs, FieldError{Field: "personalInfo.phone", Message: "is required", Code: CodeMissingRequired})
	} else if !phoneRegex.MatchString(pi.Phone) {
		errs = append(errs, FieldError{Field: "personalInfo.phone", Message: "is not a valid phone number", Code: CodeInvalidFormat})
	}

	if strings.TrimSpace(pi.DateOfBirth) == "" {
		errs = append(errs, FieldError{Field: "personalInfo.dateOfBirth", Message: "is required", Code: CodeMissingRequired})
	} else if dob, err := time.Parse("2006-01-02", pi.DateOfBirth); err != nil {
		errs = append(errs, FieldError{Field: "personalInfo.dateOfBirth", Message: "must be a date in YYYY-MM-DD format", Code: CodeInvalidFormat})
	} else if yearsBetween(dob, now) < minApplicantAge {
		errs = append(errs, FieldError{
			Field:   "personalInfo.dateOfBirth",
			Message: fmt.Sprintf("must be at least %d years old", minApplicantAge),
			Code:    CodeMinAge,
		})
	}

	errs = required("personalInfo.nationality", pi.Nationality, errs)
	errs = required("personalInfo.address.street", pi.Address.Street, errs)
	errs = required("personalInfo.address.city", pi.Address.City, errs)
	errs = required("personalInfo.address.country", pi.Address.Country, errs)
	errs = required("personalInfo.passportNumber", pi.PassportNumber, errs)

	if strings.TrimSpace(pi.PassportExpiry) == "" {
		errs = append(errs, FieldError{Field: "personalInfo.passportExpiry", Message: "is required", Code: CodeMissingRequired})
	} else if expiry, err := time.Parse("2006-01-02", pi.PassportExpiry); err != nil {
		errs = append(errs, FieldError{Field: "personalInfo.passportExpiry", Message: "must be a date in YYYY-MM-DD format", Code: CodeInvalidFormat})
	} else if expiry.Before(now.AddDate(0, passportMinValidity, 0)) {
		errs = append(errs, FieldError{
			Field:   "personalInfo.passportExpiry",
			Message: fmt.Sprintf("passport must remain valid for at least %d months", passportMinValidity),
			Code:    CodeExpiresTooSoon,
		})
	}

	for i, lang := range pi.Languages {
		if strings.TrimSpace(lang.Language) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("personalInfo.languages[%d].language", i),
				Message: "is required",
				Code:    CodeMissingRequired,
			})
		}
		switch lang.Proficiency {
		case models.ProficiencyBasic, models.ProficiencyConversational,
			models.ProficiencyFluent, models.ProficiencyNative:
		default:
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("personalInfo.languages[%d].proficiency", i),
				Message: fmt.Sprintf("unsupported proficiency %q", lang.Proficiency),
				Code:    CodeInvalidValue,
			})
		}
	}

	return errs
}

func validateEducation(d *models.Draft, now time.Time) []FieldError {
	var errs []FieldError

	if len(d.Education) == 0 {
		return []FieldError{{
			Field:   "education",
			Message: "at least one education entry is required",
			Code:    CodeMissingRequired,
		}}
	}

	for i, e := range d.Education {
		errs = required(fmt.Sprintf("education[%d].institution", i), e.Institution, errs)
		errs = required(fmt.Sprintf("education[%d].degree", i), e.Degree, errs)
		if e.GraduationYear < 1900 || e.GraduationYear > now.Year() {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("education[%d].graduationYear", i),
				Message: "is not a plausible graduation year",
				Code:    CodeInvalidValue,
			})
		}
		errs = required(fmt.Sprintf("education[%d].country", i), e.Country, errs)
	}

	return errs
}

// Experience entries are optional; the ones present must be well-formed.
func validateExperience(d *models.Draft) []FieldError {
	var errs []FieldError
	for i, e := range d.Experience {
		errs = required(fmt.Sprintf("experience[%d].employer", i), e.Employer, errs)
		errs = required(fmt.Sprintf("experience[%d].title", i), e.Title, errs)
		if e.Years < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("experience[%d].years", i),
				Message: "must not be negative",
				Code:    CodeInvalidValue,
			})
		}
	}
	return errs
}

func validateDocuments(d *models.Draft) []FieldError {
	var errs []FieldError
	for _, cat := range documents.MissingCategories(d) {
		errs = append(errs, FieldError{
			Field:   fmt.Sprintf("documents.%s", cat),
			Message: fmt.Sprintf("a %s document is required", cat),
			Code:    CodeDocumentsMissing,
		})
	}
	return errs
}

// The review step is complete once every earlier step is.
func validateReview(d *models.Draft) []FieldError {
	var errs []FieldError
	for _, step := range []models.Step{
		models.StepApplicationType,
		models.StepPersonalInfo,
		models.StepEducation,
		models.StepExperience,
		models.StepDocuments,
	} {
		if !d.StepCompleted(step) {
			errs = append(errs, FieldError{
				Field:   string(step),
				Message: "step has not been completed",
				Code:    CodeStepIncomplete,
			})
		}
	}
	return errs
}

// yearsBetween is calendar-aware age computation: the difference in years,
// reduced by one if the anniversary has not yet occurred in the later year.
func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	anniversary := from.AddDate(years, 0, 0)
	if anniversary.After(to) {
		years--
	}
	return years
}
