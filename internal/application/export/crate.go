package export

import (
	"encoding/json"
	"fmt"
	"time"
)

// RO-Crate constants
const (
	CrateContext         = "https://w3id.org/ro/crate/1.1/context"
	CrateSpecification   = "https://w3id.org/ro/crate/1.1"
	MetadataFileName     = "ro-crate-metadata.json"
	SummaryYAMLFileName  = "project-summary.yml"
	SummaryPDFFileName   = "project-summary.pdf"
	LicenseCCBY4         = "https://creativecommons.org/licenses/by/4.0/"
	PublisherROR         = "https://ror.org/00v34f693"
	PublisherName        = "Quantitative Biology Center"
	mimeYAML             = "application/yaml"
	mimePDF              = "application/pdf"
	licenseName          = "Attribution-4.0 International (CC BY 4.0)"
	licenseDescription   = "This work is licensed under the Creative Commons Attribution 4.0 International License. To view a copy of this license, visit https://creativecommons.org/licenses/by/4.0/ ."
	summaryEntityName    = "Project Summary"
	crateRootID          = "./"
	crateNameTemplate    = "QBiC-project-%s-ro-crate"
	crateDescriptionText = "Description of the project %s with the title '%s', funded by %s."
)

type entity map[string]any

func ref(id string) entity {
	return entity{"@id": id}
}

// crateFile is a data entity of the crate
type crateFile struct {
	name     string
	mimeType string
	content  []byte
}

// CrateName returns the name of the root dataset of a project crate
func CrateName(projectCode string) string {
	return fmt.Sprintf(crateNameTemplate, projectCode)
}

// buildMetadata renders ro-crate-metadata.json for the project and files
func buildMetadata(rp ResearchProject, files []crateFile, published time.Time) ([]byte, error) {
	parts := make([]entity, 0, len(files))
	for _, f := range files {
		parts = append(parts, ref(f.name))
	}
	authors := make([]entity, 0, len(rp.ContactPoints))
	people := make([]entity, 0, len(rp.ContactPoints))
	seen := make(map[string]bool)
	for _, c := range rp.ContactPoints {
		if c.Role == RoleResponsiblePerson {
			continue
		}
		id := "mailto:" + c.Email
		authors = append(authors, ref(id))
		if seen[id] {
			continue
		}
		seen[id] = true
		people = append(people, entity{"@id": id, "@type": "Person", "name": c.Name, "email": c.Email})
	}

	root := entity{
		"@id":           crateRootID,
		"@type":         "Dataset",
		"name":          CrateName(rp.Identifier),
		"description":   fmt.Sprintf(crateDescriptionText, rp.Identifier, rp.Name, rp.FundingText()),
		"datePublished": published.UTC().Format(time.DateOnly),
		"license":       ref(LicenseCCBY4),
		"publisher":     ref(PublisherROR),
		"author":        authors,
		"hasPart":       parts,
	}

	graph := []entity{
		{
			"@id":        MetadataFileName,
			"@type":      "CreativeWork",
			"conformsTo": ref(CrateSpecification),
			"about":      ref(crateRootID),
		},
		root,
		{
			"@id":         LicenseCCBY4,
			"@type":       "CreativeWork",
			"identifier":  LicenseCCBY4,
			"name":        licenseName,
			"description": licenseDescription,
		},
		{
			"@id":        PublisherROR,
			"@type":      "Organization",
			"identifier": PublisherROR,
			"name":       PublisherName,
		},
	}
	for _, f := range files {
		graph = append(graph, entity{
			"@id":            f.name,
			"@type":          "File",
			"name":           summaryEntityName,
			"encodingFormat": f.mimeType,
			"contentSize":    fmt.Sprintf("%d", len(f.content)),
		})
	}
	graph = append(graph, people...)

	return json.MarshalIndent(entity{"@context": CrateContext, "@graph": graph}, "", "  ")
}
