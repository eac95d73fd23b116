// Package lookup resolves organisations and ontology terms against the
// local store and the external registries.
package lookup

import (
	"context"

	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrUnknownOrganisation is returned when an IRI does not resolve to a ROR entry
var ErrUnknownOrganisation = shared.NewDomainError("UNKNOWN_ORGANISATION_ROR_ID", "Unknown organisation ROR id")

// OrganisationFinder queries the ROR registry
type OrganisationFinder interface {
	FindOrganisation(ctx context.Context, rorID string) (measurement.Organisation, bool, error)
}

// OrganisationCache caches resolved organisations by ROR id
type OrganisationCache interface {
	Get(ctx context.Context, rorID string) (measurement.Organisation, bool)
	Set(ctx context.Context, rorID string, org measurement.Organisation)
}

// OrganisationLookup resolves ROR IRIs to organisations
type OrganisationLookup struct {
	finder OrganisationFinder
	cache  OrganisationCache
	logger *zap.Logger
}

// NewOrganisationLookup creates an OrganisationLookup. cache may be nil.
func NewOrganisationLookup(finder OrganisationFinder, cache OrganisationCache, logger *zap.Logger) *OrganisationLookup {
	return &OrganisationLookup{finder: finder, cache: cache, logger: logger}
}

// Resolve returns the organisation for a ROR IRI or bare ROR id
func (l *OrganisationLookup) Resolve(ctx context.Context, iri string) (measurement.Organisation, error) {
	rorID, ok := measurement.ExtractRORID(iri)
	if !ok {
		return measurement.Organisation{}, ErrUnknownOrganisation.Withf("Not a ROR identifier: %s", iri)
	}
	if l.cache != nil {
		if org, found := l.cache.Get(ctx, rorID); found {
			return org, nil
		}
	}

	org, found, err := l.finder.FindOrganisation(ctx, rorID)
	if err != nil {
		l.logger.Error("ROR lookup failed", zap.String("ror_id", rorID), zap.Error(err))
		return measurement.Organisation{}, err
	}
	if !found {
		return measurement.Organisation{}, ErrUnknownOrganisation.Withf("Unknown ROR id: %s", rorID)
	}
	if l.cache != nil {
		l.cache.Set(ctx, rorID, org)
	}
	return org, nil
}

// Exists reports whether iri resolves to an organisation. Registry outages
// are returned as errors rather than as false.
func (l *OrganisationLookup) Exists(ctx context.Context, iri string) (bool, error) {
	_, err := l.Resolve(ctx, iri)
	if err == nil {
		return true, nil
	}
	if shared.ErrorCode(err) == ErrUnknownOrganisation.Code {
		return false, nil
	}
	return false, err
}
