// internal/application/documents/upload.go
package documents

import (
	"context"
	"time"

	"elab-credentialing/internal/common/config"
	stderrors "elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/common/metrics"
	"elab-credentialing/internal/models"

	"github.com/google/uuid"
)

// FileUpload is one file handed to the upload service by the caller.
type FileUpload struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Store is the document storage collaborator. Durable bytes live behind it.
type Store interface {
	Put(ctx context.Context, ref models.DocumentRef, content []byte) error
	Get(ctx context.Context, id string) (models.DocumentRef, []byte, error)
}

// Policy is checked before the storage collaborator is ever called; a file
// that fails policy is never added to the draft.
type Policy struct {
	MaxSizeBytes int64
	AllowedTypes []string
}

func PolicyFromConfig(cfg config.UploadsConfig) Policy {
	return Policy{
		MaxSizeBytes: cfg.MaxSizeBytes,
		AllowedTypes: append([]string(nil), cfg.AllowedTypes...),
	}
}

// Check validates one upload against the policy.
func (p Policy) Check(u FileUpload) error {
	allowed := false
	for _, t := range p.AllowedTypes {
		if u.ContentType == t {
			allowed = true
			break
		}
	}
	if !allowed {
		metrics.UploadsRejected.WithLabelValues("invalid_type").Inc()
		return stderrors.NewUploadInvalidTypeError(u.ContentType)
	}
	if int64(len(u.Content)) > p.MaxSizeBytes {
		metrics.UploadsRejected.WithLabelValues("too_large").Inc()
		return stderrors.NewUploadTooLargeError(int64(len(u.Content)), p.MaxSizeBytes)
	}
	return nil
}

// Service uploads documents through the storage collaborator and mints the
// server-assigned refs the wizard attaches to the draft.
type Service struct {
	store  Store
	policy Policy
	logger logger.Logger
	now    func() time.Time
}

func NewService(store Store, policy Policy, log logger.Logger) *Service {
	return &Service{
		store:  store,
		policy: policy,
		logger: log.WithFields(map[string]interface{}{"component": "documents"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Upload stores a first-version document and returns its ref in
// pending_review state.
func (s *Service) Upload(ctx context.Context, category models.DocumentCategory, u FileUpload) (models.DocumentRef, error) {
	if err := s.policy.Check(u); err != nil {
		return models.DocumentRef{}, err
	}

	ref := models.DocumentRef{
		ID:          uuid.New().String(),
		Category:    category,
		FileName:    u.FileName,
		ContentType: u.ContentType,
		SizeBytes:   int64(len(u.Content)),
		Version:     1,
		Status:      models.DocumentStatusPendingReview,
		UploadedAt:  s.now(),
	}

	if err := s.store.Put(ctx, ref, u.Content); err != nil {
		s.logger.Error("document upload failed", map[string]interface{}{
			"category": category,
			"fileName": u.FileName,
			"error":    err.Error(),
		})
		return models.DocumentRef{}, stderrors.NewUploadFailedError(err)
	}

	s.logger.Info("document uploaded", map[string]interface{}{
		"documentId": ref.ID,
		"category":   category,
		"sizeBytes":  ref.SizeBytes,
	})
	return ref, nil
}

// Reupload stores a replacement for a document that was rejected or sent
// back for resubmission. The new ref starts over in pending_review; the
// previous ref is left untouched for audit.
func (s *Service) Reupload(ctx context.Context, previous models.DocumentRef, u FileUpload) (models.DocumentRef, error) {
	if previous.Status != models.DocumentStatusRejected &&
		previous.Status != models.DocumentStatusRequiresResubmission {
		return models.DocumentRef{}, stderrors.NewReviewTransitionInvalidError(
			string(previous.Status), string(models.DocumentStatusPendingReview))
	}
	if err := s.policy.Check(u); err != nil {
		return models.DocumentRef{}, err
	}

	ref := models.DocumentRef{
		ID:           uuid.New().String(),
		Category:     previous.Category,
		FileName:     u.FileName,
		ContentType:  u.ContentType,
		SizeBytes:    int64(len(u.Content)),
		Version:      previous.Version + 1,
		SupersedesID: previous.ID,
		Status:       models.DocumentStatusPendingReview,
		UploadedAt:   s.now(),
	}

	if err := s.store.Put(ctx, ref, u.Content); err != nil {
		return models.DocumentRef{}, stderrors.NewUploadFailedError(err)
	}

	s.logger.Info("document re-uploaded", map[string]interface{}{
		"documentId":   ref.ID,
		"supersedesId": previous.ID,
		"version":      ref.Version,
	})
	return ref, nil
}

// Download fetches the stored bytes for a ref.
func (s *Service) Download(ctx context.Context, id string) ([]byte, error) {
	_, content, err := s.store.Get(ctx, id)
	return content, err
}
