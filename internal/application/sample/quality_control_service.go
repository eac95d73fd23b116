package sample

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultDownloadExpiry = 15 * time.Minute

var (
	ErrQualityControlNotFound = shared.NewDomainError("QUALITY_CONTROL_NOT_FOUND", "Quality control not found")
	ErrQualityControlUpload   = shared.NewDomainError("QUALITY_CONTROL_UPLOAD_FAILED", "Quality control could not be stored")
)

// QualityControlService stores quality control reports of projects
type QualityControlService struct {
	records   sample.QualityControlRepository
	storage   shared.ObjectStorage
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewQualityControlService creates a new QualityControlService. publisher may be nil.
func NewQualityControlService(records sample.QualityControlRepository, storage shared.ObjectStorage, publisher shared.EventPublisher, logger *zap.Logger) *QualityControlService {
	return &QualityControlService{
		records:   records,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

// AddQualityControls uploads the files and records their metadata. Files
// stored before a failure are removed again.
func (s *QualityControlService) AddQualityControls(ctx context.Context, projectID uuid.UUID, uploads []QualityControlUpload) ([]QualityControlResponse, error) {
	stored := make([]*sample.QualityControl, 0, len(uploads))
	rollback := func() {
		for _, qc := range stored {
			if err := s.storage.DeleteObject(ctx, qc.StorageKey); err != nil {
				s.logger.Warn("Failed to remove quality control file", zap.String("key", qc.StorageKey), zap.Error(err))
			}
			if err := s.records.Delete(ctx, qc.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("Failed to remove quality control record", zap.String("id", qc.ID.String()), zap.Error(err))
			}
		}
	}

	for _, upload := range uploads {
		contentType := upload.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(upload.Content)
		}
		qc, err := sample.NewQualityControl(projectID, upload.ExperimentID, upload.FileName, contentType, int64(len(upload.Content)))
		if err != nil {
			rollback()
			return nil, err
		}
		if err := s.storage.Upload(ctx, qc.StorageKey, upload.Content, contentType); err != nil {
			rollback()
			return nil, fmt.Errorf("%w: %v", ErrQualityControlUpload, err)
		}
		if err := s.records.Save(ctx, qc); err != nil {
			if delErr := s.storage.DeleteObject(ctx, qc.StorageKey); delErr != nil {
				s.logger.Warn("Failed to remove quality control file", zap.String("key", qc.StorageKey), zap.Error(delErr))
			}
			rollback()
			return nil, fmt.Errorf("%w: %v", ErrQualityControlUpload, err)
		}
		stored = append(stored, qc)
	}

	out := make([]QualityControlResponse, 0, len(stored))
	for _, qc := range stored {
		out = append(out, ToQualityControlResponse(qc))
	}
	if len(stored) > 0 {
		s.projectChanged(ctx, projectID)
	}
	return out, nil
}

// List returns the quality control records of a project
func (s *QualityControlService) List(ctx context.Context, projectID uuid.UUID) ([]QualityControlResponse, error) {
	records, err := s.records.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]QualityControlResponse, 0, len(records))
	for i := range records {
		out = append(out, ToQualityControlResponse(&records[i]))
	}
	return out, nil
}

// Get returns a record with a presigned download URL
func (s *QualityControlService) Get(ctx context.Context, projectID, id uuid.UUID, expiry time.Duration) (*QualityControlResponse, error) {
	qc, err := s.find(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if expiry <= 0 {
		expiry = defaultDownloadExpiry
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, qc.StorageKey, expiry)
	if err != nil {
		return nil, err
	}
	resp := ToQualityControlResponse(qc)
	resp.DownloadURL = url
	resp.URLExpiresAt = &expiresAt
	return &resp, nil
}

// Content returns the stored file of a record
func (s *QualityControlService) Content(ctx context.Context, projectID, id uuid.UUID) (*QualityControlResponse, []byte, error) {
	qc, err := s.find(ctx, projectID, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.storage.Download(ctx, qc.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	resp := ToQualityControlResponse(qc)
	return &resp, data, nil
}

// Delete removes a record and its file
func (s *QualityControlService) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	qc, err := s.find(ctx, projectID, id)
	if err != nil {
		return err
	}
	if err := s.records.Delete(ctx, qc.ID); err != nil {
		return err
	}
	if err := s.storage.DeleteObject(ctx, qc.StorageKey); err != nil {
		s.logger.Warn("Failed to remove quality control file", zap.String("key", qc.StorageKey), zap.Error(err))
	}
	s.projectChanged(ctx, projectID)
	return nil
}

func (s *QualityControlService) find(ctx context.Context, projectID, id uuid.UUID) (*sample.QualityControl, error) {
	qc, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrQualityControlNotFound
		}
		return nil, err
	}
	if qc.ProjectID != projectID {
		return nil, ErrQualityControlNotFound
	}
	return qc, nil
}

func (s *QualityControlService) projectChanged(ctx context.Context, projectID uuid.UUID) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, project.NewProjectChangedEvent(projectID, "quality_control")); err != nil {
		s.logger.Warn("Failed to publish project change", zap.Error(err))
	}
}
