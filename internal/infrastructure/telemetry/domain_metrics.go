package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/qbic/datamanager"

// DomainMetrics counts what researchers register in the data manager. A
// nil *DomainMetrics is valid and records nothing.
type DomainMetrics struct {
	projectsCreated        *Counter
	samplesRegistered      *Counter
	measurementsRegistered *Counter
	exportDuration         *Histogram
	emailsDispatched       *Counter
}

// NewDomainMetrics creates the instruments on meter
func NewDomainMetrics(meter metric.Meter) (*DomainMetrics, error) {
	var (
		m   DomainMetrics
		err error
	)
	if m.projectsCreated, err = NewCounter(meter, "dm_projects_created_total", "Projects created", "{project}"); err != nil {
		return nil, err
	}
	if m.samplesRegistered, err = NewCounter(meter, "dm_samples_registered_total", "Samples registered in batches", "{sample}"); err != nil {
		return nil, err
	}
	if m.measurementsRegistered, err = NewCounter(meter, "dm_measurements_registered_total", "Measurements registered", "{measurement}"); err != nil {
		return nil, err
	}
	if m.exportDuration, err = NewHistogram(meter, "dm_export_duration_seconds", "RO-Crate export duration", "s", ExportDurationBuckets); err != nil {
		return nil, err
	}
	if m.emailsDispatched, err = NewCounter(meter, "dm_emails_dispatched_total", "Notification emails dispatched", "{email}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// ProjectCreated counts a new project
func (m *DomainMetrics) ProjectCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.projectsCreated.Add(ctx, 1)
}

// SamplesRegistered counts the samples of a registered batch
func (m *DomainMetrics) SamplesRegistered(ctx context.Context, projectCode string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.samplesRegistered.Add(ctx, int64(count), AttrProjectCode.String(projectCode))
}

// MeasurementsRegistered counts measurements of one domain, NGS or PxP
func (m *DomainMetrics) MeasurementsRegistered(ctx context.Context, domain string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.measurementsRegistered.Add(ctx, int64(count), AttrDomain.String(domain))
}

// ExportFinished records how long an export took
func (m *DomainMetrics) ExportFinished(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.exportDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome(err)))
}

// EmailDispatched counts an attempt to send a notification email
func (m *DomainMetrics) EmailDispatched(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.emailsDispatched.Add(ctx, 1, AttrEmailOutcome.String(outcome(err)))
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
