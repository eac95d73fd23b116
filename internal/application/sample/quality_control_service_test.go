package sample

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeQualityControls struct {
	byID    map[uuid.UUID]*sample.QualityControl
	saveErr error
}

func (r *fakeQualityControls) Save(_ context.Context, qc *sample.QualityControl) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byID[qc.ID] = qc
	return nil
}

func (r *fakeQualityControls) FindByID(_ context.Context, id uuid.UUID) (*sample.QualityControl, error) {
	qc, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return qc, nil
}

func (r *fakeQualityControls) FindByProject(_ context.Context, projectID uuid.UUID) ([]sample.QualityControl, error) {
	var out []sample.QualityControl
	for _, qc := range r.byID {
		if qc.ProjectID == projectID {
			out = append(out, *qc)
		}
	}
	return out, nil
}

func (r *fakeQualityControls) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func newQualityControlService() (*QualityControlService, *fakeQualityControls, *storage.InMemoryObjectStorage, *recordingPublisher) {
	records := &fakeQualityControls{byID: make(map[uuid.UUID]*sample.QualityControl)}
	store := storage.NewInMemoryObjectStorage()
	publisher := &recordingPublisher{}
	return NewQualityControlService(records, store, publisher, zap.NewNop()), records, store, publisher
}

func TestQualityControlService_AddAndList(t *testing.T) {
	svc, _, store, publisher := newQualityControlService()
	ctx := context.Background()
	projectID := uuid.New()
	experimentID := uuid.New()

	added, err := svc.AddQualityControls(ctx, projectID, []QualityControlUpload{
		{FileName: "multiqc_report.html", Content: []byte("<html></html>")},
		{FileName: "../qc.pdf", ContentType: "application/pdf", ExperimentID: &experimentID, Content: []byte("%PDF-1.7")},
	})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, "qc.pdf", added[1].FileName)
	assert.Equal(t, &experimentID, added[1].ExperimentID)
	assert.True(t, strings.HasPrefix(added[0].ContentType, "text/html"))
	assert.Equal(t, int64(8), added[1].Size)
	assert.Equal(t, 1, publisher.count(project.EventTypeProjectChanged))

	listed, err := svc.List(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	resp, data, err := svc.Content(ctx, projectID, added[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)
	assert.Equal(t, "qc.pdf", resp.FileName)

	exists, err := store.ObjectExists(ctx, "projects/"+projectID.String()+"/qc/"+added[1].ID.String()+"-qc.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestQualityControlService_AddRollsBack(t *testing.T) {
	svc, records, _, publisher := newQualityControlService()
	records.saveErr = errors.New("db down")
	ctx := context.Background()

	_, err := svc.AddQualityControls(ctx, uuid.New(), []QualityControlUpload{
		{FileName: "report.html", Content: []byte("x")},
	})
	assert.ErrorIs(t, err, ErrQualityControlUpload)
	assert.Empty(t, records.byID)
	assert.Empty(t, publisher.events)

	_, err = svc.AddQualityControls(ctx, uuid.New(), []QualityControlUpload{{FileName: " ", Content: []byte("x")}})
	assert.Equal(t, "INVALID_FILE_NAME", shared.ErrorCode(err))
}

func TestQualityControlService_GetAndDelete(t *testing.T) {
	svc, records, store, publisher := newQualityControlService()
	ctx := context.Background()
	projectID := uuid.New()

	added, err := svc.AddQualityControls(ctx, projectID, []QualityControlUpload{
		{FileName: "fastqc.zip", ContentType: "application/zip", Content: []byte("PK")},
	})
	require.NoError(t, err)
	id := added[0].ID

	got, err := svc.Get(ctx, projectID, id, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, got.DownloadURL, "fastqc.zip")
	require.NotNil(t, got.URLExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Minute), *got.URLExpiresAt, 5*time.Second)

	_, err = svc.Get(ctx, uuid.New(), id, time.Minute)
	assert.ErrorIs(t, err, ErrQualityControlNotFound)

	key := records.byID[id].StorageKey
	require.NoError(t, svc.Delete(ctx, projectID, id))
	assert.Empty(t, records.byID)
	exists, err := store.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 2, publisher.count(project.EventTypeProjectChanged))

	assert.ErrorIs(t, svc.Delete(ctx, projectID, id), ErrQualityControlNotFound)
}
