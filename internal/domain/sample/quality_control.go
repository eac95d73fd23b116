package sample

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// QualityControl is an uploaded quality control report of a project
type QualityControl struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	ExperimentID *uuid.UUID
	FileName     string
	StorageKey   string
	ContentType  string
	Size         int64
	UploadedAt   time.Time
}

// NewQualityControl creates a record for a file stored under
// projects/<project>/qc/<id>-<file name>
func NewQualityControl(projectID uuid.UUID, experimentID *uuid.UUID, fileName, contentType string, size int64) (*QualityControl, error) {
	fileName = path.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "Quality control file name must not be empty")
	}
	id := uuid.New()
	return &QualityControl{
		ID:           id,
		ProjectID:    projectID,
		ExperimentID: experimentID,
		FileName:     fileName,
		StorageKey:   "projects/" + projectID.String() + "/qc/" + id.String() + "-" + fileName,
		ContentType:  contentType,
		Size:         size,
		UploadedAt:   time.Now(),
	}, nil
}
