// internal/notify/service.go

// Package notify delivers review and submission notifications over SES email
// and SNS SMS. Everything in here is fire-and-forget: a delivery failure is
// logged and counted, never surfaced to the flow that triggered it.
package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"elab-credentialing/internal/common/config"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/common/metrics"
	"elab-credentialing/internal/models"
	"elab-credentialing/pkg/registry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

// Interfaces for mocking the AWS clients in tests.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Service struct {
	db        *sql.DB
	sesClient SESService
	snsClient SNSService
	templates *registry.TemplateRegistry
	cfg       config.NotificationConfig
	logger    logger.Logger
}

func NewService(db *sql.DB, sesClient SESService, snsClient SNSService, templates *registry.TemplateRegistry, cfg config.NotificationConfig, log logger.Logger) *Service {
	return &Service{
		db:        db,
		sesClient: sesClient,
		snsClient: snsClient,
		templates: templates,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// DocumentStatusChanged tells the applicant about a review outcome. Rejection
// and resubmission requests additionally go out over SMS since they block the
// application.
func (s *Service) DocumentStatusChanged(ctx context.Context, event models.DocumentStatusChanged) {
	applicantID, email, phone, err := s.draftApplicantContact(ctx, event.DraftID)
	if err != nil {
		s.logger.Warn("applicant contact lookup failed", map[string]interface{}{
			"draftId": event.DraftID,
			"error":   err,
		})
		return
	}

	data := map[string]interface{}{
		"draftId":    event.DraftID,
		"documentId": event.DocumentID,
		"category":   string(event.Category),
		"oldStatus":  string(event.OldStatus),
		"newStatus":  string(event.NewStatus),
	}

	actionable := event.NewStatus == models.DocumentStatusRejected ||
		event.NewStatus == models.DocumentStatusRequiresResubmission

	s.deliver(ctx, delivery{
		notificationType: models.NotificationDocumentStatusChanged,
		recipientID:      applicantID,
		recipientRole:    models.RecipientRoleApplicant,
		email:            email,
		phone:            phone,
		data:             data,
		sendSMS:          actionable,
	})
}

// ApplicationSubmitted confirms a successful submission to the applicant.
func (s *Service) ApplicationSubmitted(ctx context.Context, app *models.Application) {
	email, phone := s.userContact(ctx, app.ApplicantID)
	if email == "" && app.Payload != nil {
		// The draft has contact details even before a user row exists.
		email = app.Payload.PersonalInfo.Email
		phone = app.Payload.PersonalInfo.Phone
	}

	s.deliver(ctx, delivery{
		notificationType: models.NotificationApplicationSubmitted,
		recipientID:      app.ApplicantID,
		recipientRole:    models.RecipientRoleApplicant,
		email:            email,
		phone:            phone,
		data: map[string]interface{}{
			"applicationId":   app.ID,
			"applicationType": string(app.ApplicationType),
			"targetCountry":   app.TargetCountry,
			"urgency":         string(app.Urgency),
		},
		sendSMS: app.Urgency == models.UrgencyExpedited,
	})
}

type delivery struct {
	notificationType string
	recipientID      string
	recipientRole    models.RecipientRole
	email            string
	phone            string
	data             map[string]interface{}
	sendSMS          bool
}

func (s *Service) deliver(ctx context.Context, d delivery) {
	template, err := s.templates.Find(d.notificationType, string(d.recipientRole))
	if err != nil {
		s.logger.Error("notification template missing", map[string]interface{}{
			"type":      d.notificationType,
			"recipient": d.recipientRole,
		})
		return
	}

	subject := renderTemplate(template.Subject, d.data)
	body := renderTemplate(template.Body, d.data)

	if s.cfg.Email.Enabled && d.email != "" {
		if err := s.sendEmail(ctx, d.email, subject, body); err != nil {
			metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
			s.logger.Error("email send failed", map[string]interface{}{
				"type":  d.notificationType,
				"error": err,
			})
			s.record(ctx, d, "email", "failed")
		} else {
			metrics.NotificationsSent.WithLabelValues("email", "sent").Inc()
			s.record(ctx, d, "email", "sent")
		}
	}

	if s.cfg.SMS.Enabled && d.sendSMS && d.phone != "" {
		smsBody := body
		if template.SMSBody != "" {
			smsBody = renderTemplate(template.SMSBody, d.data)
		}
		if err := s.sendSMS(ctx, d.phone, smsBody); err != nil {
			metrics.NotificationsSent.WithLabelValues("sms", "failed").Inc()
			s.logger.Error("SMS send failed", map[string]interface{}{
				"type":  d.notificationType,
				"error": err,
			})
			s.record(ctx, d, "sms", "failed")
		} else {
			metrics.NotificationsSent.WithLabelValues("sms", "sent").Inc()
			s.record(ctx, d, "sms", "sent")
		}
	}
}

func (s *Service) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(s.cfg.Email.FromEmail),
	})
	return err
}

func (s *Service) sendSMS(ctx context.Context, to, message string) error {
	_, err := s.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func (s *Service) draftApplicantContact(ctx context.Context, draftID string) (string, string, string, error) {
	var applicantID, email, phone string
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.phone
		FROM users u
		JOIN application_drafts d ON d.applicant_id = u.id
		WHERE d.id = $1`, draftID).Scan(&applicantID, &email, &phone)
	if err != nil {
		return "", "", "", fmt.Errorf("draft applicant lookup: %w", err)
	}
	return applicantID, email, phone, nil
}

func (s *Service) userContact(ctx context.Context, userID string) (string, string) {
	var email, phone string
	err := s.db.QueryRowContext(ctx, `
		SELECT email, phone FROM users WHERE id = $1`, userID).Scan(&email, &phone)
	if err != nil {
		return "", ""
	}
	return email, phone
}

// record writes the delivery attempt to the notifications table. Non-critical.
func (s *Service) record(ctx context.Context, d delivery, channel, status string) {
	payloadJSON, err := json.Marshal(d.data)
	if err != nil {
		payloadJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, recipient_role, type, channel, status, payload, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New().String(),
		d.recipientID,
		string(d.recipientRole),
		d.notificationType,
		channel,
		status,
		payloadJSON,
		time.Now().UTC(),
	)
	if err != nil {
		s.logger.Warn("notification record insert failed", map[string]interface{}{
			"type":  d.notificationType,
			"error": err,
		})
	}
}
