package models

import (
	"time"

	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusSent      ContractStatus = "sent"
	ContractStatusSigned    ContractStatus = "signed"
	ContractStatusPaid      ContractStatus = "paid"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// IsTerminal reports whether no further status transitions are allowed.
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusCancelled
}

// BrandingKey is the reserved sub-key of FieldValues holding presentation
// settings. Writes to it are gated by the company's subscription tier.
const BrandingKey = "_branding"

// Contract is the central entity. Status moves along
// draft -> sent -> signed -> paid -> completed, with cancelled reachable from
// any non-terminal state. The signing token is only ever persisted hashed;
// SigningToken is the legacy plaintext column kept for contracts issued before
// hashing was introduced.
type Contract struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CompanyID    string `gorm:"index;type:varchar(36);not null" json:"company_id"`
	ContractorID string `gorm:"index;type:varchar(36);not null" json:"contractor_id"`
	ClientID     *string `gorm:"index;type:varchar(36)" json:"client_id,omitempty"`

	Title       string         `gorm:"not null" json:"title"`
	FieldValues JSON           `gorm:"type:text" json:"field_values"`
	Status      ContractStatus `gorm:"index;default:draft" json:"status"`

	// Amounts are in cents. 0 <= DepositAmount <= TotalAmount.
	DepositAmount int64 `gorm:"not null;default:0" json:"deposit_amount"`
	TotalAmount   int64 `gorm:"not null;default:0" json:"total_amount"`

	SigningTokenHash      string     `gorm:"index;type:varchar(64)" json:"-"`
	SigningToken          string     `gorm:"type:varchar(64)" json:"-"` // legacy plaintext, migration debt
	SigningTokenExpiresAt *time.Time `json:"signing_token_expires_at,omitempty"`
	PasswordHash          string     `json:"-"`

	// RequireCountersign controls the required signature set: when false a
	// client signature alone completes signing.
	RequireCountersign bool `gorm:"default:false" json:"require_countersign"`

	PDFPath string `json:"pdf_path,omitempty"`

	PaymentIntentID string `gorm:"index" json:"-"`

	SentAt      *time.Time `json:"sent_at,omitempty"`
	SignedAt    *time.Time `json:"signed_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Client     *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Signatures []Signature `gorm:"foreignKey:ContractID" json:"signatures,omitempty"`
}

// Terms is the portion of the contract covered by the signature content hash.
// Any change to these fields after signing is detectable by hash mismatch.
type Terms struct {
	Title         string `json:"title"`
	FieldValues   JSON   `json:"field_values"`
	DepositAmount int64  `json:"deposit_amount"`
	TotalAmount   int64  `json:"total_amount"`
}

// CurrentTerms snapshots the hashable contract terms.
func (c *Contract) CurrentTerms() Terms {
	return Terms{
		Title:         c.Title,
		FieldValues:   c.FieldValues,
		DepositAmount: c.DepositAmount,
		TotalAmount:   c.TotalAmount,
	}
}

// HasSignature reports whether the given party already signed.
func (c *Contract) HasSignature(party SignatureParty) bool {
	for _, sig := range c.Signatures {
		if sig.Party == party {
			return true
		}
	}
	return false
}

// SignaturesComplete reports whether the required signature set is present.
func (c *Contract) SignaturesComplete() bool {
	if !c.HasSignature(SignaturePartyClient) {
		return false
	}
	if c.RequireCountersign && !c.HasSignature(SignaturePartyContractor) {
		return false
	}
	return true
}
