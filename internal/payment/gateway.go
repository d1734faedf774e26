// Package payment defines the narrow contract the lifecycle has with the
// payment processor. The service never talks to the processor SDK directly;
// it creates intents, saves payment methods, and consumes webhook
// confirmations.
package payment

import (
	"context"
)

type IntentStatus string

const (
	IntentStatusRequiresPayment IntentStatus = "requires_payment"
	IntentStatusProcessing      IntentStatus = "processing"
	IntentStatusSucceeded       IntentStatus = "succeeded"
	IntentStatusFailed          IntentStatus = "failed"
)

// Intent is a payment intent as reported by the gateway.
type Intent struct {
	ID           string       `json:"id"`
	Amount       int64        `json:"amount"` // cents
	Currency     string       `json:"currency"`
	Status       IntentStatus `json:"status"`
	ClientSecret string       `json:"client_secret,omitempty"`
	ContractID   string       `json:"contract_id,omitempty"`
}

// SavedMethod is a stored payment method to be charged later.
type SavedMethod struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Brand      string `json:"brand,omitempty"`
	Last4      string `json:"last4,omitempty"`
}

type Gateway interface {
	// CreateIntent registers a payment intent for a contract deposit.
	CreateIntent(ctx context.Context, contractID string, amount int64, currency string) (*Intent, error)
	// GetIntent retrieves a previously created intent.
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
	// SavePaymentMethod stores a payment method for deferred charging.
	SavePaymentMethod(ctx context.Context, contractID, methodToken string) (*SavedMethod, error)
}
