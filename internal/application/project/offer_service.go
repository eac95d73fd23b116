package project

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/offer"
	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultOfferSearchLimit = 20

var ErrOfferDocumentMissing = shared.NewDomainError("OFFER_DOCUMENT_MISSING", "No document is attached to the offer")

// OfferResponse is the detailed view of an offer
type OfferResponse struct {
	ID                 uuid.UUID `json:"id"`
	Code               string    `json:"code"`
	ProjectTitle       string    `json:"project_title"`
	ProjectObjective   string    `json:"project_objective"`
	ExperimentalDesign string    `json:"experimental_design,omitempty"`
	NetPrice           string    `json:"net_price"`
	VAT                string    `json:"vat"`
	TotalPrice         string    `json:"total_price"`
	Currency           string    `json:"currency"`
	HasDocument        bool      `json:"has_document"`
}

func toOfferResponse(o *offer.Offer) OfferResponse {
	return OfferResponse{
		ID:                 o.ID,
		Code:               o.Code,
		ProjectTitle:       o.ProjectTitle,
		ProjectObjective:   o.ProjectObjective,
		ExperimentalDesign: o.ExperimentalDesign,
		NetPrice:           o.NetPrice.Amount().StringFixed(2),
		VAT:                o.VAT.String(),
		TotalPrice:         o.TotalPrice().Amount().StringFixed(2),
		Currency:           string(o.NetPrice.Currency()),
		HasDocument:        o.DocumentKey != "",
	}
}

// OfferService looks up offers and stores their documents
type OfferService struct {
	offers  offer.OfferRepository
	storage shared.ObjectStorage
	logger  *zap.Logger
}

// NewOfferService creates a new OfferService
func NewOfferService(offers offer.OfferRepository, storage shared.ObjectStorage, logger *zap.Logger) *OfferService {
	return &OfferService{offers: offers, storage: storage, logger: logger}
}

// Search finds offers by code or project title
func (s *OfferService) Search(ctx context.Context, term string, offset, limit int) ([]offer.Preview, error) {
	if limit <= 0 {
		limit = defaultOfferSearchLimit
	}
	return s.offers.Search(ctx, strings.TrimSpace(term), offset, limit)
}

// Get returns an offer by code
func (s *OfferService) Get(ctx context.Context, code string) (*OfferResponse, error) {
	o, err := s.find(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := toOfferResponse(o)
	return &resp, nil
}

// UploadDocument stores the offer document and attaches it to the offer
func (s *OfferService) UploadDocument(ctx context.Context, code, fileName, contentType string, data []byte) error {
	o, err := s.find(ctx, code)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("offers/%s/%s", o.Code, path.Base(fileName))
	if err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		return fmt.Errorf("upload offer document: %w", err)
	}
	previous := o.DocumentKey
	o.AttachDocument(key)
	if err := s.offers.Save(ctx, o); err != nil {
		return err
	}
	if previous != "" && previous != key {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete replaced offer document", zap.String("key", previous), zap.Error(err))
		}
	}
	return nil
}

// DocumentURL returns a temporary download link of the offer document
func (s *OfferService) DocumentURL(ctx context.Context, code string, expiry time.Duration) (string, error) {
	o, err := s.find(ctx, code)
	if err != nil {
		return "", err
	}
	if o.DocumentKey == "" {
		return "", ErrOfferDocumentMissing
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, o.DocumentKey, expiry)
	return url, err
}

func (s *OfferService) find(ctx context.Context, code string) (*offer.Offer, error) {
	o, err := s.offers.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUnknownOffer
		}
		return nil, err
	}
	return o, nil
}
