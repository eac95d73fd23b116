package project

import (
	"strings"

	"github.com/qbic/datamanager/internal/domain/shared"
)

// Contact is a person involved in a project
type Contact struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	OIDC       string `json:"oidc,omitempty"`
	OIDCIssuer string `json:"oidc_issuer,omitempty"`
}

// NewContact creates a validated contact
func NewContact(fullName, email string) (Contact, error) {
	c := Contact{FullName: strings.TrimSpace(fullName), Email: strings.TrimSpace(email)}
	if err := c.Validate(); err != nil {
		return Contact{}, err
	}
	return c, nil
}

// WithOIDC returns a copy of the contact linked to an OpenID Connect identity
func (c Contact) WithOIDC(issuer, subject string) Contact {
	c.OIDCIssuer = issuer
	c.OIDC = subject
	return c
}

// Validate checks the name and email address
func (c Contact) Validate() error {
	if c.FullName == "" {
		return shared.NewDomainError("INVALID_CONTACT", "Contact name must not be empty")
	}
	if err := shared.ValidateEmail(c.Email); err != nil {
		return shared.NewDomainError("INVALID_CONTACT", "Contact email is not valid: "+c.Email)
	}
	return nil
}

// Funding names the grant a project is funded by
type Funding struct {
	Label       string `json:"label"`
	ReferenceID string `json:"reference_id"`
}

// NewFunding creates a funding entry; both fields are required
func NewFunding(label, referenceID string) (Funding, error) {
	label, referenceID = strings.TrimSpace(label), strings.TrimSpace(referenceID)
	if label == "" || referenceID == "" {
		return Funding{}, shared.NewDomainError("INVALID_FUNDING", "Grant label and grant id are required")
	}
	return Funding{Label: label, ReferenceID: referenceID}, nil
}

// OfferIdentifier references an offer linked to the project
type OfferIdentifier string

// NewOfferIdentifier validates a non-blank offer identifier
func NewOfferIdentifier(s string) (OfferIdentifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", shared.NewDomainError("INVALID_OFFER", "Offer identifier must not be empty")
	}
	return OfferIdentifier(s), nil
}
