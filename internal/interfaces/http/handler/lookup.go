package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qbic/datamanager/internal/application/lookup"
	"github.com/qbic/datamanager/internal/domain/ontology"
)

// LookupHandler searches ontology terms and resolves organisations
type LookupHandler struct {
	BaseHandler
	ontology      *lookup.OntologyLookup
	organisations *lookup.OrganisationLookup
}

// NewLookupHandler creates a lookup handler
func NewLookupHandler(ontology *lookup.OntologyLookup, organisations *lookup.OrganisationLookup) *LookupHandler {
	return &LookupHandler{ontology: ontology, organisations: organisations}
}

// TermSearchRequest holds the ontology search parameters
type TermSearchRequest struct {
	Query    string `form:"q"`
	Category string `form:"category" binding:"omitempty,oneof=species specimen analyte instrument"`
	Offset   int    `form:"offset" binding:"min=0"`
	Limit    int    `form:"limit" binding:"min=0,max=100"`
}

// SearchTerms godoc
// @Summary      Search ontology terms
// @Description  Curated terms first; the terminology service fills up uncategorised searches
// @Tags         ontology
// @Produce      json
// @Param        q query string true "Search text"
// @Param        category query string false "Term category" Enums(species, specimen, analyte, instrument)
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]ontology.Term}
// @Security     BearerAuth
// @Router       /ontology/search [get]
func (h *LookupHandler) SearchTerms(c *gin.Context) {
	var req TermSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	terms, err := h.ontology.Search(c.Request.Context(), req.Query, ontology.Category(req.Category), req.Offset, req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, terms)
}

// GetTerm godoc
// @Summary      Get ontology term
// @Tags         ontology
// @Produce      json
// @Param        curie path string true "CURIE" example(NCBITaxon:9606)
// @Success      200 {object} dto.Response{data=ontology.Term}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ontology/terms/{curie} [get]
func (h *LookupHandler) GetTerm(c *gin.Context) {
	curie := c.Param("curie")
	term, err := h.ontology.FindByCURIE(c.Request.Context(), curie)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if term == nil {
		h.NotFound(c, "Unknown ontology term: "+curie)
		return
	}
	h.Success(c, term)
}

// OrganisationQuery names the organisation to resolve
type OrganisationQuery struct {
	IRI string `form:"iri" binding:"required,ror"`
}

// ResolveOrganisation godoc
// @Summary      Resolve organisation
// @Description  Look up a research organisation by ROR IRI or id
// @Tags         organisations
// @Produce      json
// @Param        iri query string true "ROR IRI" example(https://ror.org/03a1kwz48)
// @Success      200 {object} dto.Response{data=measurement.Organisation}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /organisations/resolve [get]
func (h *LookupHandler) ResolveOrganisation(c *gin.Context) {
	var q OrganisationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	org, err := h.organisations.Resolve(c.Request.Context(), q.IRI)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, org)
}
