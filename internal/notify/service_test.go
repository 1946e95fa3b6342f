// internal/notify/service_test.go
package notify

import (
	"context"
	"testing"
	"time"

	"elab-credentialing/internal/common/config"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/models"
	"elab-credentialing/pkg/registry"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

type mockSES struct {
	sent []*ses.SendEmailInput
	err  error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, params)
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	published []*sns.PublishInput
	err       error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.published = append(m.published, params)
	return &sns.PublishOutput{}, nil
}

func testTemplates() *registry.TemplateRegistry {
	return &registry.TemplateRegistry{
		Version: "test",
		Templates: []registry.Template{
			{
				ID:        "doc-status-applicant",
				Type:      models.NotificationDocumentStatusChanged,
				Recipient: "applicant",
				Subject:   "Your {{category}} document is now {{newStatus}}",
				Body:      "Status changed from {{oldStatus}} to {{newStatus}}.",
				SMSBody:   "{{category}}: {{newStatus}}",
			},
			{
				ID:        "app-submitted-applicant",
				Type:      models.NotificationApplicationSubmitted,
				Recipient: "applicant",
				Subject:   "Application {{applicationId}} received",
				Body:      "We received your {{applicationType}} application for {{targetCountry}}.",
				SMSBody:   "Application {{applicationId}} received",
			},
		},
	}
}

func testConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "noreply@example.com"
	cfg.SMS.Enabled = true
	return cfg
}

func newTestService(t *testing.T, sesClient SESService, snsClient SNSService) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, sesClient, snsClient, testTemplates(), testConfig(), logger.NewTestLogger(t)), mock
}

func expectContactLookup(mock sqlmock.Sqlmock, draftID string) {
	mock.ExpectQuery(`SELECT u.id, u.email, u.phone`).
		WithArgs(draftID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone"}).
			AddRow("user-123", "amina@example.com", "+4915112345678"))
}

func expectRecord(mock sqlmock.Sqlmock, channel, status string) {
	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(
			sqlmock.AnyArg(), "user-123", "applicant", sqlmock.AnyArg(),
			channel, status, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func statusEvent(newStatus models.DocumentStatus) models.DocumentStatusChanged {
	return models.DocumentStatusChanged{
		DraftID:    "draft-1",
		DocumentID: "doc-1",
		Category:   models.DocumentCategoryLicense,
		OldStatus:  models.DocumentStatusPendingReview,
		NewStatus:  newStatus,
		OccurredAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ============================================================================
// DocumentStatusChanged
// ============================================================================

func TestDocumentStatusChanged_ApprovalSendsEmailOnly(t *testing.T) {
	sesClient := &mockSES{}
	snsClient := &mockSNS{}
	svc, mock := newTestService(t, sesClient, snsClient)

	expectContactLookup(mock, "draft-1")
	expectRecord(mock, "email", "sent")

	svc.DocumentStatusChanged(context.Background(), statusEvent(models.DocumentStatusApproved))

	require.Len(t, sesClient.sent, 1)
	assert.Equal(t, "amina@example.com", sesClient.sent[0].Destination.ToAddresses[0])
	assert.Equal(t, "Your license document is now approved", *sesClient.sent[0].Message.Subject.Data)
	assert.Empty(t, snsClient.published, "approval is not actionable, no SMS")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStatusChanged_RejectionAlsoSendsSMS(t *testing.T) {
	sesClient := &mockSES{}
	snsClient := &mockSNS{}
	svc, mock := newTestService(t, sesClient, snsClient)

	expectContactLookup(mock, "draft-1")
	expectRecord(mock, "email", "sent")
	expectRecord(mock, "sms", "sent")

	svc.DocumentStatusChanged(context.Background(), statusEvent(models.DocumentStatusRejected))

	require.Len(t, sesClient.sent, 1)
	require.Len(t, snsClient.published, 1)
	assert.Equal(t, "+4915112345678", *snsClient.published[0].PhoneNumber)
	assert.Equal(t, "license: rejected", *snsClient.published[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentStatusChanged_ContactLookupFailureIsSwallowed(t *testing.T) {
	sesClient := &mockSES{}
	svc, mock := newTestService(t, sesClient, &mockSNS{})

	mock.ExpectQuery(`SELECT u.id, u.email, u.phone`).
		WillReturnError(assert.AnError)

	svc.DocumentStatusChanged(context.Background(), statusEvent(models.DocumentStatusApproved))

	assert.Empty(t, sesClient.sent)
}

func TestDocumentStatusChanged_SendFailureRecordedNotSurfaced(t *testing.T) {
	sesClient := &mockSES{err: assert.AnError}
	svc, mock := newTestService(t, sesClient, &mockSNS{})

	expectContactLookup(mock, "draft-1")
	expectRecord(mock, "email", "failed")

	svc.DocumentStatusChanged(context.Background(), statusEvent(models.DocumentStatusApproved))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================================================
// ApplicationSubmitted
// ============================================================================

func submittedApplication(urgency models.Urgency) *models.Application {
	draft := models.NewDraft("user-123")
	draft.PersonalInfo.Email = "draft-fallback@example.com"
	draft.PersonalInfo.Phone = "+4915100000000"
	return &models.Application{
		ID:              "app-1",
		ApplicantID:     "user-123",
		ApplicationType: models.ApplicationTypeLicenseRenewal,
		TargetCountry:   "DE",
		Urgency:         urgency,
		Status:          models.ApplicationStatusSubmitted,
		Payload:         draft,
		SubmittedAt:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestApplicationSubmitted_StandardUrgencyEmailOnly(t *testing.T) {
	sesClient := &mockSES{}
	snsClient := &mockSNS{}
	svc, mock := newTestService(t, sesClient, snsClient)

	mock.ExpectQuery(`SELECT email, phone FROM users`).
		WithArgs("user-123").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("amina@example.com", "+4915112345678"))
	expectRecord(mock, "email", "sent")

	svc.ApplicationSubmitted(context.Background(), submittedApplication(models.UrgencyStandard))

	require.Len(t, sesClient.sent, 1)
	assert.Equal(t, "Application app-1 received", *sesClient.sent[0].Message.Subject.Data)
	assert.Contains(t, *sesClient.sent[0].Message.Body.Text.Data, "license_renewal")
	assert.Empty(t, snsClient.published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationSubmitted_ExpeditedAlsoSendsSMS(t *testing.T) {
	sesClient := &mockSES{}
	snsClient := &mockSNS{}
	svc, mock := newTestService(t, sesClient, snsClient)

	mock.ExpectQuery(`SELECT email, phone FROM users`).
		WithArgs("user-123").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("amina@example.com", "+4915112345678"))
	expectRecord(mock, "email", "sent")
	expectRecord(mock, "sms", "sent")

	svc.ApplicationSubmitted(context.Background(), submittedApplication(models.UrgencyExpedited))

	require.Len(t, snsClient.published, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationSubmitted_FallsBackToDraftContact(t *testing.T) {
	sesClient := &mockSES{}
	svc, mock := newTestService(t, sesClient, &mockSNS{})

	mock.ExpectQuery(`SELECT email, phone FROM users`).
		WithArgs("user-123").
		WillReturnError(assert.AnError)
	expectRecord(mock, "email", "sent")

	svc.ApplicationSubmitted(context.Background(), submittedApplication(models.UrgencyStandard))

	require.Len(t, sesClient.sent, 1)
	assert.Equal(t, "draft-fallback@example.com", sesClient.sent[0].Destination.ToAddresses[0])
}

func TestDeliver_MissingTemplateSendsNothing(t *testing.T) {
	sesClient := &mockSES{}
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := NewService(db, sesClient, &mockSNS{},
		&registry.TemplateRegistry{Version: "empty"}, testConfig(), logger.NewTestLogger(t))

	expectContactLookup(mock, "draft-1")

	svc.DocumentStatusChanged(context.Background(), statusEvent(models.DocumentStatusApproved))

	assert.Empty(t, sesClient.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
