package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	projectapp "github.com/qbic/datamanager/internal/application/project"
	"github.com/qbic/datamanager/internal/interfaces/http/dto"
)

const offerDocumentExpiry = 15 * time.Minute

// OfferHandler serves offers of the order management
type OfferHandler struct {
	BaseHandler
	offers *projectapp.OfferService
}

// NewOfferHandler creates an offer handler
func NewOfferHandler(offers *projectapp.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

// Search godoc
// @Summary      Search offers
// @Description  Search by offer code or project title
// @Tags         offers
// @Produce      json
// @Param        search query string false "Search term"
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Page size" default(50)
// @Success      200 {object} dto.Response{data=[]offer.Preview}
// @Security     BearerAuth
// @Router       /offers [get]
func (h *OfferHandler) Search(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	previews, err := h.offers.Search(c.Request.Context(), req.Search, req.Offset, req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, previews)
}

// Get godoc
// @Summary      Get offer
// @Tags         offers
// @Produce      json
// @Param        code path string true "Offer code"
// @Success      200 {object} dto.Response{data=projectapp.OfferResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /offers/{code} [get]
func (h *OfferHandler) Get(c *gin.Context) {
	o, err := h.offers.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// UploadDocument godoc
// @Summary      Upload offer document
// @Description  Replaces an earlier document. Admins only.
// @Tags         offers
// @Accept       multipart/form-data
// @Param        code path string true "Offer code"
// @Param        file formData file true "Document"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /offers/{code}/document [post]
func (h *OfferHandler) UploadDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file field")
		return
	}
	data, err := readFormFile(fh)
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if err := h.offers.UploadDocument(c.Request.Context(), c.Param("code"), fh.Filename, contentType, data); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Document godoc
// @Summary      Download offer document
// @Description  Redirects to a short lived download link
// @Tags         offers
// @Param        code path string true "Offer code"
// @Success      302
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /offers/{code}/document [get]
func (h *OfferHandler) Document(c *gin.Context) {
	url, err := h.offers.DocumentURL(c.Request.Context(), c.Param("code"), offerDocumentExpiry)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}
