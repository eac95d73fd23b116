package tsvimport

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qbic/datamanager/internal/domain/measurement"
)

// Domain is the kind of measurement a sheet describes
type Domain string

const (
	DomainNGS Domain = "NGS"
	DomainPxP Domain = "PxP"
)

// Header labels of the measurement templates, normalized
const (
	HeaderMeasurementID   = "measurement id"
	HeaderSampleIDs       = "qbic sample ids"
	HeaderSampleLabel     = "sample label"
	HeaderOrganisationID  = "organisation id"
	HeaderFacility        = "facility"
	HeaderInstrument      = "instrument"
	HeaderSamplePoolGroup = "sample pool group"
	HeaderComment         = "comment"

	HeaderReadType    = "sequencing read type"
	HeaderLibraryKit  = "library kit"
	HeaderFlowCell    = "flow cell"
	HeaderRunProtocol = "sequencing run protocol"
	HeaderIndexI7     = "index i7"
	HeaderIndexI5     = "index i5"

	HeaderFractionName     = "cycle/fraction name"
	HeaderDigestionMethod  = "digestion method"
	HeaderDigestionEnzyme  = "digestion enzyme"
	HeaderEnrichmentMethod = "enrichment method"
	HeaderInjectionVolume  = "injection volume (ul)"
	HeaderLCColumn         = "lc column"
	HeaderLCMSMethod       = "lcms method"
	HeaderLabelingType     = "labeling type"
	HeaderLabel            = "label"
)

var ngsMandatory = []string{
	HeaderSampleIDs, HeaderOrganisationID, HeaderFacility, HeaderInstrument, HeaderReadType,
}

var pxpMandatory = []string{
	HeaderSampleIDs, HeaderOrganisationID, HeaderFacility, HeaderInstrument,
	HeaderDigestionEnzyme, HeaderDigestionMethod, HeaderInjectionVolume, HeaderLCColumn, HeaderLCMSMethod,
}

// InferDomain decides from a header set which measurement template was
// filled in. The mandatory columns of exactly one domain must be present.
func InferDomain(headers []string) (Domain, error) {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[NormalizeHeader(h)] = true
	}
	containsAll := func(required []string) bool {
		for _, r := range required {
			if !present[r] {
				return false
			}
		}
		return true
	}
	ngs, pxp := containsAll(ngsMandatory), containsAll(pxpMandatory)
	switch {
	case ngs && !pxp:
		return DomainNGS, nil
	case pxp && !ngs:
		return DomainPxP, nil
	default:
		return "", ErrUnknownDomain
	}
}

// Options limits what a single import may contain
type Options struct {
	MaxRows   int
	MaxErrors int
}

// DefaultOptions returns the limits used by the HTTP import endpoint
func DefaultOptions() Options {
	return Options{MaxRows: 2000, MaxErrors: 100}
}

// Result is a parsed measurement sheet. Exactly one of NGS and PxP is set.
type Result struct {
	Domain Domain
	NGS    []measurement.NGSMetadata
	PxP    []measurement.PxPMetadata
}

// Rows returns the number of parsed metadata rows
func (r *Result) Rows() int {
	return len(r.NGS) + len(r.PxP)
}

// ReadMeasurements parses a measurement sheet. Row level problems are
// returned together as an *ErrorCollection.
func ReadMeasurements(r io.Reader, opts Options) (*Result, error) {
	p, err := NewParser(r)
	if err != nil {
		return nil, err
	}
	if err := p.ParseHeader(); err != nil {
		return nil, err
	}
	domain, err := InferDomain(p.Headers())
	if err != nil {
		return nil, err
	}
	rows, err := p.ReadAllRows(opts.MaxRows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}

	errs := NewErrorCollection(opts.MaxErrors)
	result := &Result{Domain: domain}
	for _, row := range rows {
		if domain == DomainNGS {
			if m, ok := ngsRow(row, errs); ok {
				result.NGS = append(result.NGS, m)
			}
			continue
		}
		if m, ok := pxpRow(row, errs); ok {
			result.PxP = append(result.PxP, m)
		}
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return result, nil
}

func requireColumns(row *Row, columns []string, errs *ErrorCollection) bool {
	ok := true
	for _, c := range columns {
		if row.Get(c) == "" {
			errs.AddRequired(row.LineNumber, c)
			ok = false
		}
	}
	return ok
}

func ngsRow(row *Row, errs *ErrorCollection) (measurement.NGSMetadata, bool) {
	if !requireColumns(row, ngsMandatory, errs) {
		return measurement.NGSMetadata{}, false
	}
	return measurement.NGSMetadata{
		MeasurementCode: row.Get(HeaderMeasurementID),
		Samples: []measurement.NGSSampleEntry{{
			SampleCode: strings.ToUpper(row.Get(HeaderSampleIDs)),
			Label:      row.Get(HeaderSampleLabel),
			IndexI7:    row.Get(HeaderIndexI7),
			IndexI5:    row.Get(HeaderIndexI5),
			Comment:    row.Get(HeaderComment),
		}},
		OrganisationID:        row.Get(HeaderOrganisationID),
		InstrumentCURIE:       row.Get(HeaderInstrument),
		Facility:              row.Get(HeaderFacility),
		SequencingReadType:    row.Get(HeaderReadType),
		LibraryKit:            row.Get(HeaderLibraryKit),
		FlowCell:              row.Get(HeaderFlowCell),
		SequencingRunProtocol: row.Get(HeaderRunProtocol),
		SamplePoolGroup:       row.Get(HeaderSamplePoolGroup),
	}, true
}

func pxpRow(row *Row, errs *ErrorCollection) (measurement.PxPMetadata, bool) {
	if !requireColumns(row, pxpMandatory, errs) {
		return measurement.PxPMetadata{}, false
	}
	volume := row.Get(HeaderInjectionVolume)
	if _, err := decimal.NewFromString(volume); err != nil {
		errs.AddInvalid(row.LineNumber, HeaderInjectionVolume,
			fmt.Sprintf("Injection volume must be a number: %q", volume), volume)
		return measurement.PxPMetadata{}, false
	}
	return measurement.PxPMetadata{
		MeasurementCode: row.Get(HeaderMeasurementID),
		Samples: []measurement.PxPSampleEntry{{
			SampleCode:   strings.ToUpper(row.Get(HeaderSampleIDs)),
			Label:        row.Get(HeaderLabel),
			FractionName: row.Get(HeaderFractionName),
			Comment:      row.Get(HeaderComment),
		}},
		OrganisationID:   row.Get(HeaderOrganisationID),
		InstrumentCURIE:  row.Get(HeaderInstrument),
		Facility:         row.Get(HeaderFacility),
		DigestionEnzyme:  row.Get(HeaderDigestionEnzyme),
		DigestionMethod:  row.Get(HeaderDigestionMethod),
		EnrichmentMethod: row.Get(HeaderEnrichmentMethod),
		InjectionVolume:  volume,
		LCColumn:         row.Get(HeaderLCColumn),
		LCMSMethod:       row.Get(HeaderLCMSMethod),
		LabelingType:     row.Get(HeaderLabelingType),
		SamplePoolGroup:  row.Get(HeaderSamplePoolGroup),
	}, true
}

// IsRowErrors reports whether err carries row level import errors
func IsRowErrors(err error) (*ErrorCollection, bool) {
	var ec *ErrorCollection
	ok := errors.As(err, &ec)
	return ec, ok
}
