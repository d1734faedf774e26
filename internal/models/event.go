package models

import (
	"time"
)

type EventType string

const (
	EventContractSent       EventType = "contract_sent"
	EventContractorSigned   EventType = "contractor_signed"
	EventClientSigned       EventType = "client_signed"
	EventPaymentMethodSaved EventType = "payment_method_saved"
	EventPaymentConfirmed   EventType = "payment_confirmed"
	EventContractCompleted  EventType = "contract_completed"
	EventContractCancelled  EventType = "contract_cancelled"
	EventPasswordSet        EventType = "password_set"
	EventPasswordCleared    EventType = "password_cleared"
)

type ActorType string

const (
	ActorContractor ActorType = "contractor"
	ActorClient     ActorType = "client"
	ActorSystem     ActorType = "system"
)

// ContractEvent is an append-only audit log entry. Rows are never updated or
// deleted.
type ContractEvent struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ContractID string    `gorm:"index;type:varchar(36);not null" json:"contract_id"`
	EventType  EventType `gorm:"type:varchar(32);not null" json:"event_type"`
	ActorType  ActorType `gorm:"type:varchar(16);not null" json:"actor_type"`
	ActorID    string    `gorm:"type:varchar(36)" json:"actor_id,omitempty"`
	Metadata   JSON      `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
