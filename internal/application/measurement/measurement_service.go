// Package measurement registers, updates and deletes genomics and
// proteomics measurements of project samples.
package measurement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/qbic/datamanager/internal/domain/ontology"
	"github.com/qbic/datamanager/internal/domain/sample"
	"github.com/qbic/datamanager/internal/domain/shared"
	tsvimport "github.com/qbic/datamanager/internal/infrastructure/import"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrFailed                 = shared.NewDomainError("FAILED", "Measurement operation failed")
	ErrUnknownOrganisation    = shared.NewDomainError("UNKNOWN_ORGANISATION_ROR_ID", "Unknown organisation ROR id")
	ErrUnknownOntologyTerm    = shared.NewDomainError("UNKNOWN_ONTOLOGY_TERM", "Unknown ontology term")
	ErrWrongExperiment        = shared.NewDomainError("WRONG_EXPERIMENT", "There are samples that do not belong to this experiment")
	ErrMissingMeasurementID   = shared.NewDomainError("MISSING_MEASUREMENT_ID", "Measurement id is missing")
	ErrSampleNotFromProject   = shared.NewDomainError("SAMPLECODE_NOT_FROM_PROJECT", "Sample does not belong to the project")
	ErrUnknownMeasurement     = shared.NewDomainError("UNKNOWN_MEASUREMENT", "Unknown measurement")
	ErrDataAttached           = shared.NewDomainError("DATA_ATTACHED", "Raw data is registered for the measurements")
	ErrMeasurementCodeExists  = shared.NewDomainError("MEASUREMENT_CODE_EXISTS", "A measurement with this code already exists")
	ErrNoMeasurements         = shared.NewDomainError("NO_MEASUREMENTS", "No measurement metadata provided")
	ErrInvalidInjectionVolume = shared.NewDomainError("INVALID_MEASUREMENT", "Injection volume must be a number")
	ErrInvalidMetadata        = shared.NewDomainError("INVALID_MEASUREMENT_METADATA", "Invalid measurement metadata")
	ErrInvalidSheet           = shared.NewDomainError("INVALID_MEASUREMENT_SHEET", "Measurement sheet could not be read")
)

// ValidationFailedError carries the failures of a rejected measurement sheet
type ValidationFailedError struct {
	Result sample.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return "Invalid measurement metadata: " + strings.Join(e.Result.Failures, "; ")
}

// Unwrap exposes ErrInvalidMetadata
func (e *ValidationFailedError) Unwrap() error {
	return ErrInvalidMetadata
}

// OrganisationResolver resolves ROR IRIs to organisations
type OrganisationResolver interface {
	Resolve(ctx context.Context, iri string) (measurement.Organisation, error)
}

// Metrics records measurement registrations
type Metrics interface {
	MeasurementsRegistered(ctx context.Context, domain string, count int)
}

// MeasurementService handles measurement business operations
type MeasurementService struct {
	measurements  measurement.MeasurementRepository
	samples       SampleFinder
	terms         TermResolver
	organisations OrganisationResolver
	rawData       measurement.RawDataLookup
	validator     *Validator
	publisher     shared.EventPublisher
	metrics       Metrics
	logger        *zap.Logger
}

// NewMeasurementService creates a new MeasurementService. publisher and
// metrics may be nil.
func NewMeasurementService(
	measurements measurement.MeasurementRepository,
	samples SampleFinder,
	terms TermResolver,
	organisations OrganisationResolver,
	rawData measurement.RawDataLookup,
	publisher shared.EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
) *MeasurementService {
	return &MeasurementService{
		measurements:  measurements,
		samples:       samples,
		terms:         terms,
		organisations: organisations,
		rawData:       rawData,
		validator:     NewValidator(samples, terms),
		publisher:     publisher,
		metrics:       metrics,
		logger:        logger,
	}
}

// resolvedRow holds what a metadata row references
type resolvedRow struct {
	sampleIDs    map[string]uuid.UUID
	orderedIDs   []uuid.UUID
	firstCode    string
	organisation measurement.Organisation
	instrument   ontology.Term
}

// RegisterNGS registers genomics measurements. Rows sharing a sample pool
// group become one pooled measurement.
func (s *MeasurementService) RegisterNGS(ctx context.Context, projectID uuid.UUID, rows []measurement.NGSMetadata) ([]MeasurementResponse, error) {
	if len(rows) == 0 {
		return nil, ErrNoMeasurements
	}
	if err := requireMandatory(rows, ngsMandatory); err != nil {
		return nil, err
	}
	merged, err := measurement.MergeByPool(rows)
	if err != nil {
		return nil, err
	}

	created := make([]*measurement.NGSMeasurement, 0, len(merged))
	seen := make(map[string]bool, len(merged))
	for _, row := range merged {
		ref, err := s.resolve(ctx, projectID, row.SampleCodes(), row.OrganisationID, row.InstrumentCURIE)
		if err != nil {
			return nil, err
		}
		code := measurement.NewNGSCode(ref.firstCode)
		if err := s.checkCodeFree(ctx, code, seen); err != nil {
			return nil, err
		}
		method := measurement.NGSMethod{
			Instrument:            ref.instrument,
			Facility:              row.Facility,
			SequencingReadType:    row.SequencingReadType,
			LibraryKit:            row.LibraryKit,
			FlowCell:              row.FlowCell,
			SequencingRunProtocol: row.SequencingRunProtocol,
		}
		m, err := measurement.NewNGSMeasurement(code, projectID, ref.orderedIDs, ref.organisation, method, ngsSpecific(row, ref))
		if err != nil {
			return nil, err
		}
		m.SetSamplePoolGroup(row.PoolGroup())
		created = append(created, m)
	}

	if err := s.measurements.SaveNGS(ctx, created...); err != nil {
		return nil, s.saveError(err)
	}
	out := make([]MeasurementResponse, 0, len(created))
	for _, m := range created {
		s.publish(ctx, m)
		out = append(out, ToNGSResponse(m))
	}
	s.recordRegistered(ctx, KindNGS, len(created))
	s.logger.Info("NGS measurements registered",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(created)))
	return out, nil
}

// RegisterPxP registers proteomics measurements. Rows sharing a sample pool
// group become one pooled measurement.
func (s *MeasurementService) RegisterPxP(ctx context.Context, projectID uuid.UUID, rows []measurement.PxPMetadata) ([]MeasurementResponse, error) {
	if len(rows) == 0 {
		return nil, ErrNoMeasurements
	}
	if err := requireMandatory(rows, pxpMandatory); err != nil {
		return nil, err
	}
	merged, err := measurement.MergeByPool(rows)
	if err != nil {
		return nil, err
	}

	created := make([]*measurement.ProteomicsMeasurement, 0, len(merged))
	seen := make(map[string]bool, len(merged))
	for _, row := range merged {
		ref, err := s.resolve(ctx, projectID, row.SampleCodes(), row.OrganisationID, row.InstrumentCURIE)
		if err != nil {
			return nil, err
		}
		code := measurement.NewMSCode(ref.firstCode)
		if err := s.checkCodeFree(ctx, code, seen); err != nil {
			return nil, err
		}
		method, err := pxpMethod(row, ref.instrument)
		if err != nil {
			return nil, err
		}
		m, err := measurement.NewProteomicsMeasurement(code, projectID, ref.orderedIDs, ref.organisation, method, pxpSpecific(row, ref))
		if err != nil {
			return nil, err
		}
		m.SetSamplePoolGroup(row.PoolGroup())
		created = append(created, m)
	}

	if err := s.measurements.SavePxP(ctx, created...); err != nil {
		return nil, s.saveError(err)
	}
	out := make([]MeasurementResponse, 0, len(created))
	for _, m := range created {
		s.publish(ctx, m)
		out = append(out, ToPxPResponse(m))
	}
	s.recordRegistered(ctx, KindPxP, len(created))
	s.logger.Info("Proteomics measurements registered",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(created)))
	return out, nil
}

// UpdateNGS replaces the metadata of existing genomics measurements,
// matched by measurement code
func (s *MeasurementService) UpdateNGS(ctx context.Context, projectID uuid.UUID, rows []measurement.NGSMetadata) ([]MeasurementResponse, error) {
	if len(rows) == 0 {
		return nil, ErrNoMeasurements
	}
	if err := requireMandatory(rows, ngsMandatory); err != nil {
		return nil, err
	}
	merged, err := mergeByMeasurement(rows, func(r measurement.NGSMetadata) string { return r.MeasurementCode })
	if err != nil {
		return nil, err
	}

	updated := make([]*measurement.NGSMeasurement, 0, len(merged))
	for _, row := range merged {
		code, err := parseMeasurementCode(row.MeasurementCode)
		if err != nil {
			return nil, err
		}
		m, err := s.measurements.FindNGSByCode(ctx, code)
		if err != nil {
			return nil, s.findError(err)
		}
		if m.ProjectID != projectID {
			return nil, ErrUnknownMeasurement
		}
		ref, err := s.resolve(ctx, projectID, row.SampleCodes(), row.OrganisationID, row.InstrumentCURIE)
		if err != nil {
			return nil, err
		}
		m.Update(ref.organisation, measurement.NGSMethod{
			Instrument:            ref.instrument,
			Facility:              row.Facility,
			SequencingReadType:    row.SequencingReadType,
			LibraryKit:            row.LibraryKit,
			FlowCell:              row.FlowCell,
			SequencingRunProtocol: row.SequencingRunProtocol,
		}, ngsSpecific(row, ref))
		updated = append(updated, m)
	}

	if err := s.measurements.SaveNGS(ctx, updated...); err != nil {
		return nil, s.saveError(err)
	}
	out := make([]MeasurementResponse, 0, len(updated))
	for _, m := range updated {
		s.publish(ctx, m)
		out = append(out, ToNGSResponse(m))
	}
	return out, nil
}

// UpdatePxP replaces the metadata of existing proteomics measurements,
// matched by measurement code
func (s *MeasurementService) UpdatePxP(ctx context.Context, projectID uuid.UUID, rows []measurement.PxPMetadata) ([]MeasurementResponse, error) {
	if len(rows) == 0 {
		return nil, ErrNoMeasurements
	}
	if err := requireMandatory(rows, pxpMandatory); err != nil {
		return nil, err
	}
	merged, err := mergeByMeasurement(rows, func(r measurement.PxPMetadata) string { return r.MeasurementCode })
	if err != nil {
		return nil, err
	}

	updated := make([]*measurement.ProteomicsMeasurement, 0, len(merged))
	for _, row := range merged {
		code, err := parseMeasurementCode(row.MeasurementCode)
		if err != nil {
			return nil, err
		}
		m, err := s.measurements.FindPxPByCode(ctx, code)
		if err != nil {
			return nil, s.findError(err)
		}
		if m.ProjectID != projectID {
			return nil, ErrUnknownMeasurement
		}
		ref, err := s.resolve(ctx, projectID, row.SampleCodes(), row.OrganisationID, row.InstrumentCURIE)
		if err != nil {
			return nil, err
		}
		method, err := pxpMethod(row, ref.instrument)
		if err != nil {
			return nil, err
		}
		if err := m.Update(ref.organisation, method, pxpSpecific(row, ref)); err != nil {
			return nil, err
		}
		updated = append(updated, m)
	}

	if err := s.measurements.SavePxP(ctx, updated...); err != nil {
		return nil, s.saveError(err)
	}
	out := make([]MeasurementResponse, 0, len(updated))
	for _, m := range updated {
		s.publish(ctx, m)
		out = append(out, ToPxPResponse(m))
	}
	return out, nil
}

// Delete removes measurements of a project. Measurements with registered
// raw data are kept and the whole request is rejected.
func (s *MeasurementService) Delete(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.measurements.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if len(found) != len(uniqueIDs(ids)) {
		return ErrUnknownMeasurement
	}
	codes := make([]string, 0, len(found))
	for _, m := range found {
		if m.ProjectID != projectID {
			return ErrUnknownMeasurement
		}
		codes = append(codes, m.Code.String())
	}
	attached, err := s.rawData.CountByMeasurementCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if attached > 0 {
		return ErrDataAttached
	}
	if err := s.measurements.DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("%w: %v", ErrFailed, err)
	}

	if s.publisher != nil {
		events := make([]shared.DomainEvent, 0, len(found))
		for i := range found {
			events = append(events, measurement.NewMeasurementDeletedEvent(&found[i]))
		}
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish measurement deletions", zap.Error(err))
		}
	}
	s.logger.Info("Measurements deleted",
		zap.String("project_id", projectID.String()),
		zap.Strings("codes", codes))
	return nil
}

// ListNGS returns the genomics measurements of a project
func (s *MeasurementService) ListNGS(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]MeasurementResponse, error) {
	found, err := s.measurements.FindNGSByProject(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]MeasurementResponse, 0, len(found))
	for i := range found {
		out = append(out, ToNGSResponse(&found[i]))
	}
	return out, nil
}

// ListPxP returns the proteomics measurements of a project
func (s *MeasurementService) ListPxP(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]MeasurementResponse, error) {
	found, err := s.measurements.FindPxPByProject(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]MeasurementResponse, 0, len(found))
	for i := range found {
		out = append(out, ToPxPResponse(&found[i]))
	}
	return out, nil
}

// ValidateNGS checks rows without registering them
func (s *MeasurementService) ValidateNGS(ctx context.Context, projectID uuid.UUID, rows []measurement.NGSMetadata) (sample.ValidationResult, error) {
	result := sample.ValidationResult{}
	for _, row := range rows {
		r, err := s.validator.ValidateNGS(ctx, projectID, row)
		if err != nil {
			return sample.ValidationResult{}, fmt.Errorf("%w: %v", ErrFailed, err)
		}
		result = result.Combine(r)
	}
	return result, nil
}

// ValidatePxP checks rows without registering them
func (s *MeasurementService) ValidatePxP(ctx context.Context, projectID uuid.UUID, rows []measurement.PxPMetadata) (sample.ValidationResult, error) {
	result := sample.ValidationResult{}
	for _, row := range rows {
		r, err := s.validator.ValidatePxP(ctx, projectID, row)
		if err != nil {
			return sample.ValidationResult{}, fmt.Errorf("%w: %v", ErrFailed, err)
		}
		result = result.Combine(r)
	}
	return result, nil
}

// Import reads a tab separated measurement sheet, validates it and
// registers its rows. A sheet whose rows all carry a measurement id updates
// the referenced measurements instead. Row level parse problems are returned
// as *tsvimport.ErrorCollection.
func (s *MeasurementService) Import(ctx context.Context, projectID uuid.UUID, r io.Reader) (*ImportResponse, error) {
	sheet, err := tsvimport.ReadMeasurements(r, tsvimport.DefaultOptions())
	if err != nil {
		if _, ok := tsvimport.IsRowErrors(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
	}

	var (
		kind   string
		result sample.ValidationResult
		out    []MeasurementResponse
	)
	switch sheet.Domain {
	case tsvimport.DomainNGS:
		kind = KindNGS
		if result, err = s.ValidateNGS(ctx, projectID, sheet.NGS); err != nil {
			return nil, err
		}
		if result.ContainsFailures() {
			return nil, &ValidationFailedError{Result: result}
		}
		if allHaveCode(sheet.NGS, func(r measurement.NGSMetadata) string { return r.MeasurementCode }) {
			out, err = s.UpdateNGS(ctx, projectID, sheet.NGS)
		} else {
			out, err = s.RegisterNGS(ctx, projectID, sheet.NGS)
		}
	default:
		kind = KindPxP
		if result, err = s.ValidatePxP(ctx, projectID, sheet.PxP); err != nil {
			return nil, err
		}
		if result.ContainsFailures() {
			return nil, &ValidationFailedError{Result: result}
		}
		if allHaveCode(sheet.PxP, func(r measurement.PxPMetadata) string { return r.MeasurementCode }) {
			out, err = s.UpdatePxP(ctx, projectID, sheet.PxP)
		} else {
			out, err = s.RegisterPxP(ctx, projectID, sheet.PxP)
		}
	}
	if err != nil {
		return nil, err
	}
	return &ImportResponse{Kind: kind, Rows: sheet.Rows(), Measurements: out}, nil
}

// resolve checks the samples, instrument and organisation a row references
func (s *MeasurementService) resolve(ctx context.Context, projectID uuid.UUID, sampleCodes []string, organisationID, instrument string) (*resolvedRow, error) {
	codes := nonBlank(sampleCodes)
	if len(codes) == 0 {
		return nil, measurement.ErrMissingSample
	}
	parsed := make([]sample.Code, 0, len(codes))
	for _, c := range codes {
		code, err := sample.ParseCode(c)
		if err != nil {
			return nil, measurement.ErrMissingSample.Withf(unknownSampleMessage, c)
		}
		parsed = append(parsed, code)
	}
	found, err := s.samples.FindByCodes(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	byCode := make(map[string]sample.Sample, len(found))
	for _, smp := range found {
		byCode[smp.Code.String()] = smp
	}

	ref := &resolvedRow{sampleIDs: make(map[string]uuid.UUID, len(parsed)), firstCode: parsed[0].String()}
	var experimentID uuid.UUID
	for _, code := range parsed {
		smp, ok := byCode[code.String()]
		if !ok {
			return nil, measurement.ErrMissingSample.Withf(unknownSampleMessage, code)
		}
		if smp.ProjectID != projectID {
			return nil, ErrSampleNotFromProject
		}
		if experimentID == uuid.Nil {
			experimentID = smp.ExperimentID
		} else if smp.ExperimentID != experimentID {
			return nil, ErrWrongExperiment
		}
		if _, dup := ref.sampleIDs[code.String()]; !dup {
			ref.orderedIDs = append(ref.orderedIDs, smp.ID)
		}
		ref.sampleIDs[code.String()] = smp.ID
	}

	term, err := s.terms.FindByCURIE(ctx, instrumentCURIE(instrument))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if term == nil {
		return nil, ErrUnknownOntologyTerm.Withf(unknownInstrumentMessage, instrument)
	}
	ref.instrument = *term

	org, err := s.organisations.Resolve(ctx, organisationID)
	if err != nil {
		if errors.Is(err, ErrUnknownOrganisation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	ref.organisation = org
	return ref, nil
}

func (s *MeasurementService) checkCodeFree(ctx context.Context, code measurement.Code, seen map[string]bool) error {
	if seen[code.String()] {
		return ErrMeasurementCodeExists.Withf("Duplicate measurement code in request: %s", code.String())
	}
	seen[code.String()] = true
	exists, err := s.measurements.ExistsCode(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if exists {
		return ErrMeasurementCodeExists.Withf("Measurement already registered: %s", code.String())
	}
	return nil
}

func (s *MeasurementService) findError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return ErrUnknownMeasurement
	}
	return fmt.Errorf("%w: %v", ErrFailed, err)
}

func (s *MeasurementService) saveError(err error) error {
	if errors.Is(err, shared.ErrAlreadyExists) {
		return ErrMeasurementCodeExists
	}
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrFailed, err)
}

func (s *MeasurementService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.publisher, agg); err != nil {
		s.logger.Warn("Failed to publish measurement events", zap.Error(err))
	}
}

func (s *MeasurementService) recordRegistered(ctx context.Context, kind string, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.MeasurementsRegistered(ctx, kind, n)
	}
}

// requireMandatory rejects the request when any row lacks mandatory
// metadata. References are checked afterwards, when rows are resolved.
func requireMandatory[T any](rows []T, fields func(T) []mandatoryField) error {
	var result sample.ValidationResult
	for _, row := range rows {
		if missing := missingMandatory(fields(row)); len(missing) > 0 {
			result = result.Combine(sample.Failure(missing...))
		} else {
			result = result.Combine(sample.Success())
		}
	}
	if result.ContainsFailures() {
		return &ValidationFailedError{Result: result}
	}
	return nil
}

func parseMeasurementCode(value string) (measurement.Code, error) {
	if strings.TrimSpace(value) == "" {
		return measurement.Code{}, ErrMissingMeasurementID
	}
	code, err := measurement.ParseCode(value)
	if err != nil {
		return measurement.Code{}, ErrUnknownMeasurement.Withf("Unknown measurement: %s", value)
	}
	return code, nil
}

// mergeByMeasurement combines update rows of the same measurement, which
// is how pooled measurements appear in an edited sheet
func mergeByMeasurement[T measurement.Metadata[T]](rows []T, codeOf func(T) string) ([]T, error) {
	merged := make([]T, 0, len(rows))
	index := make(map[string]int)
	for _, row := range rows {
		code := strings.ToUpper(strings.TrimSpace(codeOf(row)))
		if code == "" {
			return nil, ErrMissingMeasurementID
		}
		i, ok := index[code]
		if !ok {
			index[code] = len(merged)
			merged = append(merged, row)
			continue
		}
		m, err := merged[i].Merge(row)
		if err != nil {
			return nil, err
		}
		merged[i] = m
	}
	return merged, nil
}

func allHaveCode[T any](rows []T, codeOf func(T) string) bool {
	for _, r := range rows {
		if strings.TrimSpace(codeOf(r)) == "" {
			return false
		}
	}
	return len(rows) > 0
}

func ngsSpecific(row measurement.NGSMetadata, ref *resolvedRow) []measurement.NGSSpecificMetadata {
	out := make([]measurement.NGSSpecificMetadata, 0, len(row.Samples))
	for _, e := range row.Samples {
		id, ok := ref.sampleIDs[strings.ToUpper(strings.TrimSpace(e.SampleCode))]
		if !ok {
			continue
		}
		out = append(out, measurement.NGSSpecificMetadata{
			SampleID: id,
			Label:    strings.TrimSpace(e.Label),
			IndexI7:  strings.TrimSpace(e.IndexI7),
			IndexI5:  strings.TrimSpace(e.IndexI5),
			Comment:  strings.TrimSpace(e.Comment),
		})
	}
	return out
}

func pxpSpecific(row measurement.PxPMetadata, ref *resolvedRow) []measurement.PxPSpecificMetadata {
	out := make([]measurement.PxPSpecificMetadata, 0, len(row.Samples))
	for _, e := range row.Samples {
		id, ok := ref.sampleIDs[strings.ToUpper(strings.TrimSpace(e.SampleCode))]
		if !ok {
			continue
		}
		out = append(out, measurement.PxPSpecificMetadata{
			SampleID:     id,
			Label:        strings.TrimSpace(e.Label),
			FractionName: strings.TrimSpace(e.FractionName),
			Comment:      strings.TrimSpace(e.Comment),
		})
	}
	return out
}

func pxpMethod(row measurement.PxPMetadata, instrument ontology.Term) (measurement.PxPMethod, error) {
	volume, err := decimal.NewFromString(strings.TrimSpace(row.InjectionVolume))
	if err != nil {
		return measurement.PxPMethod{}, shared.NewDomainError(ErrInvalidInjectionVolume.Code,
			fmt.Sprintf("Injection volume must be a number: %q", row.InjectionVolume))
	}
	return measurement.PxPMethod{
		Instrument:       instrument,
		Facility:         row.Facility,
		DigestionEnzyme:  row.DigestionEnzyme,
		DigestionMethod:  row.DigestionMethod,
		EnrichmentMethod: row.EnrichmentMethod,
		InjectionVolume:  volume.InexactFloat64(),
		LCColumn:         row.LCColumn,
		LCMSMethod:       row.LCMSMethod,
		LabelingType:     row.LabelingType,
	}, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
