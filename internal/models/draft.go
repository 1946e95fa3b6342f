// internal/models/draft.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationType selects the credentialing service being applied for. It is
// chosen in the first wizard step and is immutable afterwards except through
// WizardController.UpdateDraft, which resets downstream progress.
type ApplicationType string

const (
	ApplicationTypeDataflow       ApplicationType = "dataflow"
	ApplicationTypeLicenseRenewal ApplicationType = "license_renewal"
	ApplicationTypeMumarisPlus    ApplicationType = "mumaris_plus"
	ApplicationTypeSheryan        ApplicationType = "sheryan"
	ApplicationTypeExamBooking    ApplicationType = "exam_booking"
)

// ValidApplicationTypes lists every supported type in display order.
var ValidApplicationTypes = []ApplicationType{
	ApplicationTypeDataflow,
	ApplicationTypeLicenseRenewal,
	ApplicationTypeMumarisPlus,
	ApplicationTypeSheryan,
	ApplicationTypeExamBooking,
}

func (t ApplicationType) IsValid() bool {
	for _, v := range ValidApplicationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Step identifies one page of the application wizard.
type Step string

const (
	StepApplicationType Step = "application_type"
	StepPersonalInfo    Step = "personal_info"
	StepEducation       Step = "education"
	StepExperience      Step = "experience"
	StepDocuments       Step = "documents"
	StepReview          Step = "review"
)

// Urgency is requested processing speed, priced by the business.
type Urgency string

const (
	UrgencyStandard  Urgency = "standard"
	UrgencyExpedited Urgency = "expedited"
)

// Proficiency grades a declared language skill.
type Proficiency string

const (
	ProficiencyBasic          Proficiency = "basic"
	ProficiencyConversational Proficiency = "conversational"
	ProficiencyFluent         Proficiency = "fluent"
	ProficiencyNative         Proficiency = "native"
)

type LanguageSkill struct {
	Language    string      `json:"language"`
	Proficiency Proficiency `json:"proficiency"`
	Certified   bool        `json:"certified"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// PersonalInfo is the step-2 section of the draft. Dates are ISO-8601 date
// strings ("2006-01-02") because they round-trip through JSONB unchanged.
type PersonalInfo struct {
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	DateOfBirth      string            `json:"dateOfBirth"`
	Nationality      string            `json:"nationality"`
	Address          Address           `json:"address"`
	PassportNumber   string            `json:"passportNumber"`
	PassportExpiry   string            `json:"passportExpiry"`
	Languages        []LanguageSkill   `json:"languages,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
}

type EducationEntry struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	GraduationYear int    `json:"graduationYear"`
	Country        string `json:"country"`
}

type ExperienceEntry struct {
	Employer string  `json:"employer"`
	Title    string  `json:"title"`
	Years    float64 `json:"years"`
}

// Draft is the in-progress application aggregate. It is owned by exactly one
// WizardController for the duration of one session; nothing else mutates it.
type Draft struct {
	ID              string                             `json:"id"`
	ApplicantID     string                             `json:"applicantId"`
	ApplicationType ApplicationType                    `json:"applicationType"`
	TargetCountry   string                             `json:"targetCountry"`
	Urgency         Urgency                            `json:"urgency"`
	PersonalInfo    PersonalInfo                       `json:"personalInfo"`
	Education       []EducationEntry                   `json:"education,omitempty"`
	Experience      []ExperienceEntry                  `json:"experience,omitempty"`
	Documents       map[DocumentCategory][]DocumentRef `json:"documents"`
	CompletedSteps  map[Step]bool                      `json:"completedSteps"`
	CurrentStep     Step                               `json:"currentStep"`
	IsDraftSaved    bool                               `json:"isDraftSaved"`
	LastSavedAt     *time.Time                         `json:"lastSavedAt,omitempty"`
	CreatedAt       time.Time                          `json:"createdAt"`
	UpdatedAt       time.Time                          `json:"updatedAt"`
}

// NewDraft creates an empty draft positioned on the first wizard step.
func NewDraft(applicantID string) *Draft {
	now := time.Now().UTC()
	return &Draft{
		ID:             uuid.New().String(),
		ApplicantID:    applicantID,
		Urgency:        UrgencyStandard,
		Documents:      make(map[DocumentCategory][]DocumentRef),
		CompletedSteps: make(map[Step]bool),
		CurrentStep:    StepApplicationType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// StepCompleted reports whether the given step has been validated and closed.
func (d *Draft) StepCompleted(step Step) bool {
	return d.CompletedSteps[step]
}

// Clone returns a deep copy. Stores snapshot a clone so later controller
// mutations cannot leak into an in-flight save.
func (d *Draft) Clone() *Draft {
	cp := *d

	cp.Education = append([]EducationEntry(nil), d.Education...)
	cp.Experience = append([]ExperienceEntry(nil), d.Experience...)

	cp.PersonalInfo.Languages = append([]LanguageSkill(nil), d.PersonalInfo.Languages...)
	if d.PersonalInfo.EmergencyContact != nil {
		ec := *d.PersonalInfo.EmergencyContact
		cp.PersonalInfo.EmergencyContact = &ec
	}

	cp.Documents = make(map[DocumentCategory][]DocumentRef, len(d.Documents))
	for cat, refs := range d.Documents {
		copied := make([]DocumentRef, len(refs))
		for i, ref := range refs {
			copied[i] = ref.Clone()
		}
		cp.Documents[cat] = copied
	}

	cp.CompletedSteps = make(map[Step]bool, len(d.CompletedSteps))
	for s, ok := range d.CompletedSteps {
		cp.CompletedSteps[s] = ok
	}

	if d.LastSavedAt != nil {
		at := *d.LastSavedAt
		cp.LastSavedAt = &at
	}

	return &cp
}
