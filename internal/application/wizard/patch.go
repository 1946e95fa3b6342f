// internal/application/wizard/patch.go
package wizard

import (
	"fmt"

	"elab-credentialing/internal/models"
)

// DraftPatch is a partial update to the draft. Nil members are untouched;
// set members are merged into their section. List sections use either a
// whole-list replacement or an indexed entry patch, never both silently.
type DraftPatch struct {
	ApplicationType *models.ApplicationType
	TargetCountry   *string
	Urgency         *models.Urgency
	PersonalInfo    *PersonalInfoPatch
	Education       []models.EducationEntry  // replaces the whole list when non-nil
	Experience      []models.ExperienceEntry // replaces the whole list when non-nil
}

// PersonalInfoPatch deep-merges into the personalInfo section.
type PersonalInfoPatch struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	DateOfBirth      *string
	Nationality      *string
	PassportNumber   *string
	PassportExpiry   *string
	Address          *AddressPatch
	Languages        []LanguagePatch
	EmergencyContact *models.EmergencyContact
}

type AddressPatch struct {
	Street     *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
}

// LanguagePatch updates one language entry by index. An Index equal to the
// current list length appends a new entry; out-of-range indexes are ignored.
type LanguagePatch struct {
	Index       int
	Language    *string
	Proficiency *models.Proficiency
	Certified   *bool
}

// apply merges the patch into d and returns the touched field IDs, which the
// controller uses to clear stale field errors. Field IDs match the ones the
// validation engine reports.
func (p DraftPatch) apply(d *models.Draft) []string {
	var touched []string

	if p.ApplicationType != nil {
		d.ApplicationType = *p.ApplicationType
		touched = append(touched, "applicationType")
	}
	if p.TargetCountry != nil {
		d.TargetCountry = *p.TargetCountry
		touched = append(touched, "targetCountry")
	}
	if p.Urgency != nil {
		d.Urgency = *p.Urgency
		touched = append(touched, "urgency")
	}
	if p.PersonalInfo != nil {
		touched = append(touched, p.PersonalInfo.apply(&d.PersonalInfo)...)
	}
	if p.Education != nil {
		d.Education = append([]models.EducationEntry(nil), p.Education...)
		touched = append(touched, "education")
	}
	if p.Experience != nil {
		d.Experience = append([]models.ExperienceEntry(nil), p.Experience...)
		touched = append(touched, "experience")
	}

	return touched
}

func (p PersonalInfoPatch) apply(pi *models.PersonalInfo) []string {
	var touched []string

	setString := func(field string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			touched = append(touched, "personalInfo."+field)
		}
	}

	setString("firstName", &pi.FirstName, p.FirstName)
	setString("lastName", &pi.LastName, p.LastName)
	setString("email", &pi.Email, p.Email)
	setString("phone", &pi.Phone, p.Phone)
	setString("dateOfBirth", &pi.DateOfBirth, p.DateOfBirth)
	setString("nationality", &pi.Nationality, p.Nationality)
	setString("passportNumber", &pi.PassportNumber, p.PassportNumber)
	setString("passportExpiry", &pi.PassportExpiry, p.PassportExpiry)

	if p.Address != nil {
		setString("address.street", &pi.Address.Street, p.Address.Street)
		setString("address.city", &pi.Address.City, p.Address.City)
		setString("address.state", &pi.Address.State, p.Address.State)
		setString("address.postalCode", &pi.Address.PostalCode, p.Address.PostalCode)
		setString("address.country", &pi.Address.Country, p.Address.Country)
	}

	for _, lp := range p.Languages {
		if lp.Index < 0 || lp.Index > len(pi.Languages) {
			continue
		}
		if lp.Index == len(pi.Languages) {
			pi.Languages = append(pi.Languages, models.LanguageSkill{})
		}
		entry := &pi.Languages[lp.Index]
		if lp.Language != nil {
			entry.Language = *lp.Language
		}
		if lp.Proficiency != nil {
			entry.Proficiency = *lp.Proficiency
		}
		if lp.Certified != nil {
			entry.Certified = *lp.Certified
		}
		touched = append(touched,
			fmt.Sprintf("personalInfo.languages[%d].language", lp.Index),
			fmt.Sprintf("personalInfo.languages[%d].proficiency", lp.Index))
	}

	if p.EmergencyContact != nil {
		ec := *p.EmergencyContact
		pi.EmergencyContact = &ec
		touched = append(touched, "personalInfo.emergencyContact")
	}

	return touched
}
