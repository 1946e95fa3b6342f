// internal/application/documents/requirements.go
package documents

import (
	"elab-credentialing/internal/models"
)

// Fulfillment is the per-category completion state shown as a badge next to
// each required document slot.
type Fulfillment string

const (
	Fulfilled Fulfillment = "fulfilled"
	Missing   Fulfillment = "missing"
)

// requirementTable maps each application type to its required document
// categories, in display order. Changing a row is a deployment-time change.
var requirementTable = map[models.ApplicationType][]models.DocumentCategory{
	models.ApplicationTypeDataflow: {
		models.DocumentCategoryPassport,
		models.DocumentCategoryEducation,
		models.DocumentCategoryLicense,
		models.DocumentCategoryExperience,
	},
	models.ApplicationTypeLicenseRenewal: {
		models.DocumentCategoryPassport,
		models.DocumentCategoryLicense,
	},
	models.ApplicationTypeMumarisPlus: {
		models.DocumentCategoryPassport,
		models.DocumentCategoryEducation,
		models.DocumentCategoryLicense,
	},
	models.ApplicationTypeSheryan: {
		models.DocumentCategoryPassport,
		models.DocumentCategoryLicense,
	},
	models.ApplicationTypeExamBooking: {
		models.DocumentCategoryPassport,
		models.DocumentCategoryEducation,
	},
}

// RequiredCategories returns the ordered document categories the given
// application type demands. Unknown types require nothing.
func RequiredCategories(t models.ApplicationType) []models.DocumentCategory {
	cats, ok := requirementTable[t]
	if !ok {
		return nil
	}
	return append([]models.DocumentCategory(nil), cats...)
}

// Requires reports whether category is required for the given type.
func Requires(t models.ApplicationType, category models.DocumentCategory) bool {
	for _, c := range requirementTable[t] {
		if c == category {
			return true
		}
	}
	return false
}

// FulfillmentStatus computes the badge for every required category. A
// category is Fulfilled iff it has at least one uploaded document that is
// neither rejected nor sent back for resubmission; pending review counts.
func FulfillmentStatus(d *models.Draft) map[models.DocumentCategory]Fulfillment {
	status := make(map[models.DocumentCategory]Fulfillment)
	for _, cat := range requirementTable[d.ApplicationType] {
		status[cat] = Missing
		for _, ref := range d.Documents[cat] {
			if ref.Counted() {
				status[cat] = Fulfilled
				break
			}
		}
	}
	return status
}

// MissingCategories returns the required categories not yet fulfilled, in
// requirement order.
func MissingCategories(d *models.Draft) []models.DocumentCategory {
	status := FulfillmentStatus(d)
	var missing []models.DocumentCategory
	for _, cat := range requirementTable[d.ApplicationType] {
		if status[cat] == Missing {
			missing = append(missing, cat)
		}
	}
	return missing
}

// AllFulfilled reports whether every required category is fulfilled.
func AllFulfilled(d *models.Draft) bool {
	return len(MissingCategories(d)) == 0
}

// PruneToRequired drops document entries whose category is not required by
// the draft's current application type, preserving the invariant that the
// documents map keys stay a subset of the required set. Returns the dropped
// categories.
func PruneToRequired(d *models.Draft) []models.DocumentCategory {
	var dropped []models.DocumentCategory
	for cat := range d.Documents {
		if !Requires(d.ApplicationType, cat) {
			dropped = append(dropped, cat)
			delete(d.Documents, cat)
		}
	}
	return dropped
}
