package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryGateway is an in-process gateway for local development and tests.
// Intents succeed when marked via Settle.
type MemoryGateway struct {
	mu      sync.Mutex
	intents map[string]*Intent
	methods map[string]*SavedMethod
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		intents: make(map[string]*Intent),
		methods: make(map[string]*SavedMethod),
	}
}

func (g *MemoryGateway) CreateIntent(ctx context.Context, contractID string, amount int64, currency string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent := &Intent{
		ID:           "pi_" + uuid.New().String(),
		Amount:       amount,
		Currency:     currency,
		Status:       IntentStatusRequiresPayment,
		ClientSecret: "secret_" + uuid.New().String(),
		ContractID:   contractID,
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *MemoryGateway) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("intent %s not found", intentID)
	}
	copied := *intent
	return &copied, nil
}

func (g *MemoryGateway) SavePaymentMethod(ctx context.Context, contractID, methodToken string) (*SavedMethod, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	method := &SavedMethod{
		ID:         "pm_" + uuid.New().String(),
		CustomerID: contractID,
		Brand:      "visa",
		Last4:      "4242",
	}
	g.methods[method.ID] = method
	return method, nil
}

// Settle marks an intent succeeded, standing in for an external confirmation.
func (g *MemoryGateway) Settle(intentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[intentID]
	if !ok {
		return fmt.Errorf("intent %s not found", intentID)
	}
	intent.Status = IntentStatusSucceeded
	return nil
}
