package models

import (
	"time"
)

type SignatureParty string

const (
	SignaturePartyContractor SignatureParty = "contractor"
	SignaturePartyClient     SignatureParty = "client"
)

// Signature records one party's signature on a contract. Records are
// append-only; the unique index on (contract_id, party) rejects re-signing at
// the storage layer.
type Signature struct {
	ID         string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ContractID string         `gorm:"uniqueIndex:idx_contract_party;type:varchar(36);not null" json:"contract_id"`
	Party      SignatureParty `gorm:"uniqueIndex:idx_contract_party;type:varchar(16);not null" json:"party"`

	FullName  string `gorm:"not null" json:"full_name"`
	ImageData string `gorm:"type:text" json:"image_data,omitempty"`

	// ContentHash binds the signature to the contract terms at signing time.
	ContentHash string `gorm:"type:varchar(80);not null" json:"content_hash"`

	IPAddress string `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent string `gorm:"type:varchar(512)" json:"user_agent"`

	SignedAt  time.Time `json:"signed_at"`
	CreatedAt time.Time `json:"created_at"`
}
