package sample

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
)

// Batch groups samples registered together
type Batch struct {
	shared.BaseAggregateRoot
	ProjectID uuid.UUID
	Label     string
	Pilot     bool
	SampleIDs []uuid.UUID
}

// NewBatch creates an empty batch for a project
func NewBatch(projectID uuid.UUID, label string, pilot bool) (*Batch, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch label must not be empty")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch needs a project")
	}
	return &Batch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		Label:             label,
		Pilot:             pilot,
		SampleIDs:         make([]uuid.UUID, 0),
	}, nil
}

// Registered records the registration event once the batch holds its samples
func (b *Batch) Registered(projectTitle string) {
	b.AddDomainEvent(NewBatchRegisteredEvent(b, projectTitle))
}

// AddSample adds a sample; adding it twice has no effect
func (b *Batch) AddSample(sampleID uuid.UUID) {
	if b.Contains(sampleID) {
		return
	}
	b.SampleIDs = append(b.SampleIDs, sampleID)
	b.changed()
}

// RemoveSample removes a sample if present
func (b *Batch) RemoveSample(sampleID uuid.UUID) {
	n := len(b.SampleIDs)
	b.SampleIDs = slices.DeleteFunc(b.SampleIDs, func(id uuid.UUID) bool { return id == sampleID })
	if len(b.SampleIDs) != n {
		b.changed()
	}
}

// Contains reports whether the sample belongs to the batch
func (b *Batch) Contains(sampleID uuid.UUID) bool {
	return slices.Contains(b.SampleIDs, sampleID)
}

// Rename changes the batch label
func (b *Batch) Rename(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return shared.NewDomainError("INVALID_BATCH", "Batch label must not be empty")
	}
	if label != b.Label {
		b.Label = label
		b.changed()
	}
	return nil
}

// SetPilot flags the batch as pilot or regular batch
func (b *Batch) SetPilot(pilot bool) {
	if pilot != b.Pilot {
		b.Pilot = pilot
		b.changed()
	}
}

func (b *Batch) changed() {
	b.Touch()
	b.IncrementVersion()
}
