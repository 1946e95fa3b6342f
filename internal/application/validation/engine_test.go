// internal/application/validation/engine_test.go
package validation

import (
	"testing"
	"time"

	"elab-credentialing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func createValidDraft() *models.Draft {
	d := models.NewDraft("applicant-001")
	d.ApplicationType = models.ApplicationTypeLicenseRenewal
	d.TargetCountry = "SA"
	d.PersonalInfo = models.PersonalInfo{
		FirstName:      "Amina",
		LastName:       "Hassan",
		Email:          "amina.hassan@example.com",
		Phone:          "+971501234567",
		DateOfBirth:    "1990-03-15",
		Nationality:    "EG",
		Address:        models.Address{Street: "12 Corniche Rd", City: "Abu Dhabi", Country: "AE"},
		PassportNumber: "A12345678",
		PassportExpiry: "2027-01-01",
	}
	d.Education = []models.EducationEntry{
		{Institution: "Cairo University", Degree: "BSc Nursing", GraduationYear: 2012, Country: "EG"},
	}
	d.Experience = []models.ExperienceEntry{
		{Employer: "Cleveland Clinic Abu Dhabi", Title: "Staff Nurse", Years: 6},
	}
	d.Documents = map[models.DocumentCategory][]models.DocumentRef{
		models.DocumentCategoryPassport: {{ID: "doc-1", Category: models.DocumentCategoryPassport, Status: models.DocumentStatusApproved, Version: 1}},
		models.DocumentCategoryLicense:  {{ID: "doc-2", Category: models.DocumentCategoryLicense, Status: models.DocumentStatusPendingReview, Version: 1}},
	}
	return d
}

func fieldCodes(errs []FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Code
	}
	return out
}

// ==========================
// Step Validation Tests
// ==========================

func TestValidateStep_ApplicationType(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Draft)
		wantErr map[string]string
	}{
		{
			name:    "valid draft passes",
			mutate:  func(d *models.Draft) {},
			wantErr: map[string]string{},
		},
		{
			name:    "missing type",
			mutate:  func(d *models.Draft) { d.ApplicationType = "" },
			wantErr: map[string]string{"applicationType": CodeMissingRequired},
		},
		{
			name:    "unknown type",
			mutate:  func(d *models.Draft) { d.ApplicationType = "visa_run" },
			wantErr: map[string]string{"applicationType": CodeInvalidValue},
		},
		{
			name:    "missing target country",
			mutate:  func(d *models.Draft) { d.TargetCountry = "" },
			wantErr: map[string]string{"targetCountry": CodeMissingRequired},
		},
		{
			name:    "bad urgency",
			mutate:  func(d *models.Draft) { d.Urgency = "sometime" },
			wantErr: map[string]string{"urgency": CodeInvalidValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := createValidDraft()
			tt.mutate(d)
			errs := ValidateStep(models.StepApplicationType, d, testNow)
			assert.Equal(t, tt.wantErr, fieldCodes(errs))
		})
	}
}

func TestValidateStep_PersonalInfo_MinAge(t *testing.T) {
	tests := []struct {
		name        string
		dateOfBirth string
		wantCode    string
	}{
		{"well over eighteen", "2000-01-01", ""},
		{"four years old", "2020-01-01", CodeMinAge},
		{"eighteenth birthday today", "2006-06-01", ""},
		{"eighteen tomorrow", "2006-06-02", CodeMinAge},
		{"garbage date", "not-a-date", CodeInvalidFormat},
		{"empty", "", CodeMissingRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := createValidDraft()
			d.PersonalInfo.DateOfBirth = tt.dateOfBirth
			errs := ValidateStep(models.StepPersonalInfo, d, testNow)

			code, found := fieldCodes(errs)["personalInfo.dateOfBirth"]
			if tt.wantCode == "" {
				assert.False(t, found, "expected no error on dateOfBirth, got %v", errs)
			} else {
				assert.Equal(t, tt.wantCode, code)
			}
		})
	}
}

func TestValidateStep_PersonalInfo_PassportExpiry(t *testing.T) {
	d := createValidDraft()
	// 1st of September 2024 is less than six months past testNow.
	d.PersonalInfo.PassportExpiry = "2024-09-01"

	errs := ValidateStep(models.StepPersonalInfo, d, testNow)
	assert.Equal(t, CodeExpiresTooSoon, fieldCodes(errs)["personalInfo.passportExpiry"])
}

func TestValidateStep_PersonalInfo_ContactFormats(t *testing.T) {
	d := createValidDraft()
	d.PersonalInfo.Email = "not-an-email"
	d.PersonalInfo.Phone = "abc"

	codes := fieldCodes(ValidateStep(models.StepPersonalInfo, d, testNow))
	assert.Equal(t, CodeInvalidFormat, codes["personalInfo.email"])
	assert.Equal(t, CodeInvalidFormat, codes["personalInfo.phone"])
}

func TestValidateStep_PersonalInfo_Languages(t *testing.T) {
	d := createValidDraft()
	d.PersonalInfo.Languages = []models.LanguageSkill{
		{Language: "Arabic", Proficiency: models.ProficiencyNative},
		{Language: "", Proficiency: "superb"},
	}

	codes := fieldCodes(ValidateStep(models.StepPersonalInfo, d, testNow))
	assert.Equal(t, CodeMissingRequired, codes["personalInfo.languages[1].language"])
	assert.Equal(t, CodeInvalidValue, codes["personalInfo.languages[1].proficiency"])
	assert.NotContains(t, codes, "personalInfo.languages[0].language")
}

func TestValidateStep_Education(t *testing.T) {
	d := createValidDraft()
	d.Education = nil
	codes := fieldCodes(ValidateStep(models.StepEducation, d, testNow))
	assert.Equal(t, CodeMissingRequired, codes["education"])

	d.Education = []models.EducationEntry{
		{Institution: "", Degree: "MD", GraduationYear: 2052, Country: "EG"},
	}
	codes = fieldCodes(ValidateStep(models.StepEducation, d, testNow))
	assert.Equal(t, CodeMissingRequired, codes["education[0].institution"])
	assert.Equal(t, CodeInvalidValue, codes["education[0].graduationYear"])
}

func TestValidateStep_Experience_OptionalButWellFormed(t *testing.T) {
	d := createValidDraft()
	d.Experience = nil
	assert.Empty(t, ValidateStep(models.StepExperience, d, testNow))

	d.Experience = []models.ExperienceEntry{{Employer: "", Title: "Nurse", Years: -2}}
	codes := fieldCodes(ValidateStep(models.StepExperience, d, testNow))
	assert.Equal(t, CodeMissingRequired, codes["experience[0].employer"])
	assert.Equal(t, CodeInvalidValue, codes["experience[0].years"])
}

func TestValidateStep_Documents(t *testing.T) {
	d := createValidDraft()
	assert.Empty(t, ValidateStep(models.StepDocuments, d, testNow))

	// A rejected passport no longer counts toward the requirement.
	d.Documents[models.DocumentCategoryPassport][0].Status = models.DocumentStatusRejected
	codes := fieldCodes(ValidateStep(models.StepDocuments, d, testNow))
	assert.Equal(t, CodeDocumentsMissing, codes["documents.passport"])
}

func TestValidateStep_Documents_PendingCountsAsFulfilled(t *testing.T) {
	d := createValidDraft()
	for cat := range d.Documents {
		for i := range d.Documents[cat] {
			d.Documents[cat][i].Status = models.DocumentStatusPendingReview
		}
	}
	assert.Empty(t, ValidateStep(models.StepDocuments, d, testNow))
}

func TestValidateStep_Review(t *testing.T) {
	d := createValidDraft()
	d.CompletedSteps = map[models.Step]bool{
		models.StepApplicationType: true,
		models.StepPersonalInfo:    true,
		models.StepEducation:       true,
		models.StepExperience:      true,
	}

	codes := fieldCodes(ValidateStep(models.StepReview, d, testNow))
	assert.Equal(t, CodeStepIncomplete, codes["documents"])
	assert.Len(t, codes, 1)

	d.CompletedSteps[models.StepDocuments] = true
	assert.Empty(t, ValidateStep(models.StepReview, d, testNow))
}

func TestValidateStep_TotalOnBadInput(t *testing.T) {
	require.NotPanics(t, func() {
		errs := ValidateStep(models.StepPersonalInfo, nil, testNow)
		assert.NotEmpty(t, errs)
	})
	require.NotPanics(t, func() {
		errs := ValidateStep("no_such_step", createValidDraft(), testNow)
		assert.NotEmpty(t, errs)
	})
}

func TestValidateStep_Deterministic(t *testing.T) {
	d := createValidDraft()
	d.PersonalInfo = models.PersonalInfo{}

	first := ValidateStep(models.StepPersonalInfo, d, testNow)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ValidateStep(models.StepPersonalInfo, d, testNow))
	}
}

func TestStepComplete(t *testing.T) {
	d := createValidDraft()
	assert.True(t, StepComplete(models.StepApplicationType, d, testNow))

	d.TargetCountry = ""
	assert.False(t, StepComplete(models.StepApplicationType, d, testNow))
}

func TestYearsBetween(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"exact anniversary", time.Date(2006, 6, 1, 0, 0, 0, 0, time.UTC), testNow, 18},
		{"day before anniversary", time.Date(2006, 6, 2, 0, 0, 0, 0, time.UTC), testNow, 17},
		{"leap day birth", time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC), testNow, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, yearsBetween(tt.from, tt.to))
		})
	}
}
