package export

import (
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/infrastructure/signposting"
)

// ProjectLinks returns the signposting links of a project landing page
func ProjectLinks(baseURL string, projectID uuid.UUID) []signposting.WebLink {
	root := strings.TrimRight(baseURL, "/")
	landing := root + "/projects/" + projectID.String()
	crate := root + "/api/v1/projects/" + projectID.String() + "/export/ro-crate"
	return []signposting.WebLink{
		signposting.NewWebLink(landing, "cite-as"),
		signposting.NewWebLink(crate, "describedby").With("type", "application/zip").
			With("profile", CrateSpecification),
		signposting.NewWebLink(LicenseCCBY4, "license"),
		signposting.NewWebLink(crate, "item").With("type", "application/zip"),
	}
}

// LinkHeader renders the project links as a Link header value
func (s *Service) LinkHeader(projectID uuid.UUID) string {
	return signposting.Format(ProjectLinks(s.baseURL, projectID)...)
}
