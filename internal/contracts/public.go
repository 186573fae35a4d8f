package contracts

import (
	"time"

	"dealdesk/internal/models"
)

// PublicView is the strict subset of a contract exposed through the access
// token. The token itself, the owner id and signature image payloads never
// appear here.
type PublicView struct {
	Title          string            `json:"title"`
	ClientName     string            `json:"client_name"`
	ClientCompany  string            `json:"client_company,omitempty"`
	ClientEmail    string            `json:"client_email,omitempty"`
	ClientAddress  string            `json:"client_address,omitempty"`
	Content        string            `json:"content"`
	Term           string            `json:"term,omitempty"`
	TotalValue     float64           `json:"total_value"`
	Status         string            `json:"status"`
	SentAt         *time.Time        `json:"sent_at,omitempty"`
	ClientSignedAt *time.Time        `json:"client_signed_at,omitempty"`
	UserSignedAt   *time.Time        `json:"user_signed_at,omitempty"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	Deliverables   []PublicLineItem  `json:"deliverables"`
	Signatures     []PublicSignature `json:"signatures"`
}

type PublicLineItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	PriceType   string  `json:"price_type"`
}

type PublicSignature struct {
	SignerType string    `json:"signer_type"`
	SignerName string    `json:"signer_name"`
	SignedAt   time.Time `json:"signed_at"`
}

func publicView(c *models.Contract, sigs []models.Signature) *PublicView {
	v := &PublicView{
		Title:          c.Title,
		ClientName:     c.ClientName,
		ClientCompany:  c.ClientCompany,
		ClientEmail:    c.ClientEmail,
		ClientAddress:  c.ClientAddress,
		Content:        c.Content,
		Term:           c.Term,
		TotalValue:     c.TotalValue,
		Status:         c.Status,
		SentAt:         c.SentAt,
		ClientSignedAt: c.ClientSignedAt,
		UserSignedAt:   c.UserSignedAt,
		ExpiresAt:      c.ExpiresAt,
		Deliverables:   make([]PublicLineItem, 0, len(c.Deliverables)),
		Signatures:     make([]PublicSignature, 0, len(sigs)),
	}
	for _, d := range c.Deliverables {
		v.Deliverables = append(v.Deliverables, PublicLineItem{
			Name:        d.Name,
			Description: d.Description,
			Price:       d.Price,
			PriceType:   d.PriceType,
		})
	}
	for _, s := range sigs {
		v.Signatures = append(v.Signatures, PublicSignature{
			SignerType: s.SignerType,
			SignerName: s.SignerName,
			SignedAt:   s.CreatedAt,
		})
	}
	return v
}
