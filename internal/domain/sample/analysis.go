package sample

import (
	"strings"

	"github.com/qbic/datamanager/internal/domain/shared"
)

// AnalysisMethod is the analysis a sample is registered for
type AnalysisMethod struct {
	Abbreviation string `json:"abbreviation"`
	Label        string `json:"label"`
	Description  string `json:"description"`
}

// Known analysis methods
var (
	SixteenS            = AnalysisMethod{"16S", "16S amplicon sequencing", "Amplicon sequencing targeting the V4 region of the 16S rRNA gene"}
	CustomAmplicon      = AnalysisMethod{"CUSTOM-AMPLICON", "Custom amplicon sequencing", "Amplicon sequencing from DNA using custom primers"}
	Metatranscriptomics = AnalysisMethod{"METATRANSCRIPTOMICS", "Metatranscriptomics", "Sequencing of the total RNA content in a community present in a sample"}
	Metagenomic         = AnalysisMethod{"METAGENOMIC", "Metagenomics", "Sequencing of the entire genetic content in a community present in a sample"}
	WGS                 = AnalysisMethod{"WGS", "Genome sequencing", "Sequencing of the entire genome of an organism"}
	WES                 = AnalysisMethod{"WES", "Exome sequencing", "Sequencing of all exons of protein-coding genes of an organism"}
	ATACSeq             = AnalysisMethod{"ATAC-SEQ", "ATAC sequencing", "Assay for transposase-accessible chromatin with sequencing"}
	RNASeq              = AnalysisMethod{"RNA-SEQ", "RNA sequencing", "Detection and quantitative analysis of RNA in a sample"}
	SCATACSeq           = AnalysisMethod{"SC-ATAC-SEQ", "Single-cell ATAC sequencing", "Assay for transposase-accessible chromatin with sequencing at single-cell resolution"}
	SCRNASeq            = AnalysisMethod{"SC-RNA-SEQ", "Single-cell RNA sequencing", "RNA sequencing at single-cell resolution"}
	SCAmpliconSeq       = AnalysisMethod{"SC-AMPLICON-SEQ", "Single-cell amplicon sequencing", "Amplicon sequencing at single-cell resolution"}
	ONTMetagenomic      = AnalysisMethod{"ONT-METAGENOMIC", "Nanopore metagenomics", "Sequencing of the entire genetic content in a community present in a sample with Nanopore technology"}
	ONTWGS              = AnalysisMethod{"ONT-WGS", "Nanopore genome sequencing", "Sequencing of the entire genome of an organism with Nanopore technology"}
	ONTRNA              = AnalysisMethod{"ONT-RNA", "Nanopore RNA sequencing", "Detection and quantitative analysis of RNA in a sample with Nanopore technology"}
	ONTAmplicon         = AnalysisMethod{"ONT-AMPLICON", "Nanopore amplicon sequencing", "Amplicon sequencing with Nanopore technology"}
	PacBioHiFi          = AnalysisMethod{"PACBIO-HIFI", "PacBio HiFi", "Sequencing of the entire genome of an organism with PacBio technology"}
	PacBioIsoSeq        = AnalysisMethod{"PACBIO-ISOSEQ", "PacBio IsoSeq", "Detection and quantitative analysis of RNA in a sample with PacBio technology"}
	IsolationOnly       = AnalysisMethod{"ISOLATION-ONLY", "Isolation only", "DNA and RNA isolation only, no sequencing"}
	QCOnly              = AnalysisMethod{"QC-ONLY", "QC only", "Quality control only, no sequencing"}
	SeqOnly             = AnalysisMethod{"SEQ-ONLY", "Sequencing only", "Processing of ready-to-sequence pools"}
	Proteomics          = AnalysisMethod{"PROTEOMICS", "Proteomics", ""}
	PhosphoProteomics   = AnalysisMethod{"PHOSPHO", "Phosphoproteomics", ""}
	Peptidomics         = AnalysisMethod{"PEPTIDOMICS", "Peptidomics", ""}
	Interactors         = AnalysisMethod{"INTERACTORS", "Interactors", ""}
	PTMs                = AnalysisMethod{"PTMS", "Posttransductional mutations", ""}
	UntargetedMx        = AnalysisMethod{"UNTARGETED-MX", "Untargeted metabolomics", ""}
	TargetedAminoAcids  = AnalysisMethod{"TARGETED-AA", "Targeted amino acids", ""}
	TargetedNucleotides = AnalysisMethod{"TARGETED-NUCLEOTIDES", "Targeted nucleotides", ""}
	TargetedCetoAcids   = AnalysisMethod{"TARGETED-CETO-ACIDS", "Targeted ceto acids", ""}
	TargetedAllMx       = AnalysisMethod{"TARGETED-ALL-MX", "Targeted all metabolites", ""}
)

var analysisMethods = []AnalysisMethod{
	SixteenS, CustomAmplicon, Metatranscriptomics, Metagenomic, WGS, WES, ATACSeq, RNASeq,
	SCATACSeq, SCRNASeq, SCAmpliconSeq, ONTMetagenomic, ONTWGS, ONTRNA, ONTAmplicon,
	PacBioHiFi, PacBioIsoSeq, IsolationOnly, QCOnly, SeqOnly,
	Proteomics, PhosphoProteomics, Peptidomics, Interactors, PTMs,
	UntargetedMx, TargetedAminoAcids, TargetedNucleotides, TargetedCetoAcids, TargetedAllMx,
}

// AnalysisMethods returns all known analysis methods in display order
func AnalysisMethods() []AnalysisMethod {
	methods := make([]AnalysisMethod, len(analysisMethods))
	copy(methods, analysisMethods)
	return methods
}

// ParseAnalysisMethod finds a method by abbreviation or label, ignoring case
func ParseAnalysisMethod(s string) (AnalysisMethod, error) {
	s = strings.TrimSpace(s)
	for _, m := range analysisMethods {
		if strings.EqualFold(m.Abbreviation, s) || strings.EqualFold(m.Label, s) {
			return m, nil
		}
	}
	return AnalysisMethod{}, shared.NewDomainError("UNKNOWN_ANALYSIS_METHOD", "Unknown analysis: "+s)
}

// IsZero reports whether the method is unset
func (m AnalysisMethod) IsZero() bool {
	return m.Abbreviation == ""
}
