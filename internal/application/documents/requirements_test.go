// internal/application/documents/requirements_test.go
package documents

import (
	"testing"

	"elab-credentialing/internal/models"

	"github.com/stretchr/testify/assert"
)

func draftWithDocs(t models.ApplicationType, docs map[models.DocumentCategory][]models.DocumentRef) *models.Draft {
	d := models.NewDraft("applicant-001")
	d.ApplicationType = t
	if docs != nil {
		d.Documents = docs
	}
	return d
}

func TestRequiredCategories(t *testing.T) {
	tests := []struct {
		appType models.ApplicationType
		want    []models.DocumentCategory
	}{
		{models.ApplicationTypeDataflow, []models.DocumentCategory{
			models.DocumentCategoryPassport,
			models.DocumentCategoryEducation,
			models.DocumentCategoryLicense,
			models.DocumentCategoryExperience,
		}},
		{models.ApplicationTypeLicenseRenewal, []models.DocumentCategory{
			models.DocumentCategoryPassport,
			models.DocumentCategoryLicense,
		}},
		{models.ApplicationTypeExamBooking, []models.DocumentCategory{
			models.DocumentCategoryPassport,
			models.DocumentCategoryEducation,
		}},
		{"unknown_type", nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.appType), func(t *testing.T) {
			assert.Equal(t, tt.want, RequiredCategories(tt.appType))
		})
	}
}

func TestRequires(t *testing.T) {
	assert.True(t, Requires(models.ApplicationTypeDataflow, models.DocumentCategoryExperience))
	assert.False(t, Requires(models.ApplicationTypeLicenseRenewal, models.DocumentCategoryEducation))
	assert.False(t, Requires("unknown_type", models.DocumentCategoryPassport))
}

func TestFulfillmentStatus(t *testing.T) {
	d := draftWithDocs(models.ApplicationTypeLicenseRenewal, map[models.DocumentCategory][]models.DocumentRef{
		models.DocumentCategoryPassport: {
			{ID: "doc-1", Category: models.DocumentCategoryPassport, Status: models.DocumentStatusApproved},
		},
		models.DocumentCategoryLicense: {
			{ID: "doc-2", Category: models.DocumentCategoryLicense, Status: models.DocumentStatusPendingReview},
		},
	})

	status := FulfillmentStatus(d)
	assert.Equal(t, Fulfilled, status[models.DocumentCategoryPassport])
	assert.Equal(t, Fulfilled, status[models.DocumentCategoryLicense], "pending review counts as fulfilled")
	assert.True(t, AllFulfilled(d))
}

func TestFulfillmentStatus_RejectedDoesNotCount(t *testing.T) {
	d := draftWithDocs(models.ApplicationTypeLicenseRenewal, map[models.DocumentCategory][]models.DocumentRef{
		models.DocumentCategoryPassport: {
			{ID: "doc-1", Category: models.DocumentCategoryPassport, Status: models.DocumentStatusRejected},
		},
	})

	status := FulfillmentStatus(d)
	assert.Equal(t, Missing, status[models.DocumentCategoryPassport])
	assert.Equal(t, Missing, status[models.DocumentCategoryLicense])
	assert.Equal(t, []models.DocumentCategory{
		models.DocumentCategoryPassport,
		models.DocumentCategoryLicense,
	}, MissingCategories(d))
}

func TestFulfillmentStatus_ReplacementRestoresFulfillment(t *testing.T) {
	d := draftWithDocs(models.ApplicationTypeLicenseRenewal, map[models.DocumentCategory][]models.DocumentRef{
		models.DocumentCategoryPassport: {
			{ID: "doc-1", Category: models.DocumentCategoryPassport, Status: models.DocumentStatusRejected, Version: 1},
			{ID: "doc-3", Category: models.DocumentCategoryPassport, Status: models.DocumentStatusPendingReview, Version: 2, SupersedesID: "doc-1"},
		},
		models.DocumentCategoryLicense: {
			{ID: "doc-2", Category: models.DocumentCategoryLicense, Status: models.DocumentStatusApproved},
		},
	})

	assert.True(t, AllFulfilled(d))
}

func TestPruneToRequired(t *testing.T) {
	d := draftWithDocs(models.ApplicationTypeDataflow, map[models.DocumentCategory][]models.DocumentRef{
		models.DocumentCategoryPassport:   {{ID: "doc-1", Category: models.DocumentCategoryPassport, Status: models.DocumentStatusApproved}},
		models.DocumentCategoryExperience: {{ID: "doc-2", Category: models.DocumentCategoryExperience, Status: models.DocumentStatusApproved}},
	})

	// License renewal no longer needs the experience letter.
	d.ApplicationType = models.ApplicationTypeLicenseRenewal
	dropped := PruneToRequired(d)

	assert.Equal(t, []models.DocumentCategory{models.DocumentCategoryExperience}, dropped)
	assert.Contains(t, d.Documents, models.DocumentCategoryPassport)
	assert.NotContains(t, d.Documents, models.DocumentCategoryExperience)
}
