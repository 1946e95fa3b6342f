// internal/application/documents/upload_test.go
package documents

import (
	"context"
	"errors"
	"testing"

	stderrors "elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	put    map[string][]byte
	failed bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{put: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, ref models.DocumentRef, content []byte) error {
	if f.failed {
		return errors.New("storage unavailable")
	}
	f.put[ref.ID] = content
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (models.DocumentRef, []byte, error) {
	content, ok := f.put[id]
	if !ok {
		return models.DocumentRef{}, nil, errors.New("not found")
	}
	return models.DocumentRef{ID: id}, content, nil
}

func testPolicy() Policy {
	return Policy{
		MaxSizeBytes: 1024,
		AllowedTypes: []string{"application/pdf", "image/png"},
	}
}

func pdfUpload(size int) FileUpload {
	return FileUpload{
		FileName:    "passport.pdf",
		ContentType: "application/pdf",
		Content:     make([]byte, size),
	}
}

func TestPolicy_Check(t *testing.T) {
	tests := []struct {
		name     string
		upload   FileUpload
		wantCode stderrors.ErrorCode
	}{
		{"allowed pdf", pdfUpload(512), ""},
		{"at the size limit", pdfUpload(1024), ""},
		{"over the size limit", pdfUpload(1025), stderrors.ErrCodeUploadTooLarge},
		{"disallowed type", FileUpload{FileName: "scan.tiff", ContentType: "image/tiff", Content: make([]byte, 10)}, stderrors.ErrCodeUploadInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testPolicy().Check(tt.upload)
			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantCode, stderrors.CodeOf(err))
			}
		})
	}
}

func TestService_Upload(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testPolicy(), logger.NewTestLogger(t))

	ref, err := svc.Upload(context.Background(), models.DocumentCategoryPassport, pdfUpload(100))
	require.NoError(t, err)

	assert.NotEmpty(t, ref.ID)
	assert.Equal(t, models.DocumentCategoryPassport, ref.Category)
	assert.Equal(t, models.DocumentStatusPendingReview, ref.Status)
	assert.Equal(t, 1, ref.Version)
	assert.Empty(t, ref.SupersedesID)
	assert.Contains(t, store.put, ref.ID)
}

func TestService_Upload_PolicyRejectionNeverStores(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testPolicy(), logger.NewTestLogger(t))

	_, err := svc.Upload(context.Background(), models.DocumentCategoryPassport, pdfUpload(4096))
	assert.Equal(t, stderrors.ErrCodeUploadTooLarge, stderrors.CodeOf(err))
	assert.Empty(t, store.put)
}

func TestService_Upload_StorageFailure(t *testing.T) {
	store := newFakeStore()
	store.failed = true
	svc := NewService(store, testPolicy(), logger.NewTestLogger(t))

	_, err := svc.Upload(context.Background(), models.DocumentCategoryPassport, pdfUpload(100))
	assert.Equal(t, stderrors.ErrCodeUploadFailed, stderrors.CodeOf(err))
	assert.True(t, stderrors.IsRetryable(err))
}

func TestService_Reupload(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testPolicy(), logger.NewTestLogger(t))

	previous := models.DocumentRef{
		ID:       "doc-1",
		Category: models.DocumentCategoryLicense,
		Version:  1,
		Status:   models.DocumentStatusRejected,
	}

	ref, err := svc.Reupload(context.Background(), previous, pdfUpload(100))
	require.NoError(t, err)

	assert.Equal(t, 2, ref.Version)
	assert.Equal(t, "doc-1", ref.SupersedesID)
	assert.Equal(t, models.DocumentStatusPendingReview, ref.Status)
	assert.Equal(t, models.DocumentCategoryLicense, ref.Category)
}

func TestService_Reupload_OnlyFromRejectedStates(t *testing.T) {
	svc := NewService(newFakeStore(), testPolicy(), logger.NewTestLogger(t))

	for _, status := range []models.DocumentStatus{
		models.DocumentStatusPendingReview,
		models.DocumentStatusApproved,
	} {
		previous := models.DocumentRef{ID: "doc-1", Category: models.DocumentCategoryLicense, Version: 1, Status: status}
		_, err := svc.Reupload(context.Background(), previous, pdfUpload(100))
		assert.Equal(t, stderrors.ErrCodeReviewTransitionInvalid, stderrors.CodeOf(err), "status %s", status)
	}
}

func TestService_Download(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testPolicy(), logger.NewTestLogger(t))

	ref, err := svc.Upload(context.Background(), models.DocumentCategoryPassport, FileUpload{
		FileName:    "passport.pdf",
		ContentType: "application/pdf",
		Content:     []byte("scan bytes"),
	})
	require.NoError(t, err)

	content, err := svc.Download(context.Background(), ref.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("scan bytes"), content)
}
