package ontology

import "strings"

// Ontology describes a supported ontology
type Ontology struct {
	Abbreviation string
	Name         string
}

// Supported ontologies. The remote terminology service is queried for these only.
var (
	NCBITaxon = Ontology{"ncbitaxon", "NCBI organismal classification"}
	BAO       = Ontology{"bao", "BioAssay Ontology"}
	BTO       = Ontology{"bto", "The BRENDA Tissue Ontology"}
	CHEBI     = Ontology{"chebi", "Chemical Entities of Biological Interest"}
	EDAM      = Ontology{"edam", "EDAM"}
	EFO       = Ontology{"efo", "Experimental Factor Ontology"}
	ENVO      = Ontology{"envo", "Environment Ontology"}
	GO        = Ontology{"go", "Gene Ontology"}
	MI        = Ontology{"mi", "Molecular Interactions Controlled Vocabulary"}
	MS        = Ontology{"ms", "Mass spectrometry ontology"}
	NCIT      = Ontology{"ncit", "NCI Thesaurus"}
	PO        = Ontology{"po", "Plant Ontology"}
	CLO       = Ontology{"clo", "Cell Line Ontology"}
	UBERON    = Ontology{"uberon", "Uber-anatomy ontology"}
)

var known = []Ontology{NCBITaxon, BAO, BTO, CHEBI, EDAM, EFO, ENVO, GO, MI, MS, NCIT, PO, CLO, UBERON}

// RemoteWhitelist lists the ontologies forwarded to the remote terminology service
func RemoteWhitelist() []string {
	return []string{"bao", "bto", "chebi", "edam", "efo", "envo", "go", "mi", "ms", "ncit", "po"}
}

// FindOntology looks up an ontology by abbreviation, case-insensitively.
// Unknown abbreviations return an Ontology named after the abbreviation.
func FindOntology(abbreviation string) Ontology {
	for _, o := range known {
		if strings.EqualFold(o.Abbreviation, abbreviation) {
			return o
		}
	}
	return Ontology{Abbreviation: abbreviation, Name: abbreviation}
}
