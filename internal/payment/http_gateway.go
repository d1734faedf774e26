package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPGateway talks to the payment processor's REST API. Requests are bounded
// by the client timeout; callers treat every error as DependencyFailed.
type HTTPGateway struct {
	baseURL string
	secret  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, secret string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, contractID string, amount int64, currency string) (*Intent, error) {
	payload := map[string]interface{}{
		"contract_id": contractID,
		"amount":      amount,
		"currency":    currency,
	}
	var intent Intent
	if err := g.post(ctx, "/v1/intents", payload, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (g *HTTPGateway) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	var intent Intent
	if err := g.get(ctx, "/v1/intents/"+intentID, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (g *HTTPGateway) SavePaymentMethod(ctx context.Context, contractID, methodToken string) (*SavedMethod, error) {
	payload := map[string]interface{}{
		"contract_id":  contractID,
		"method_token": methodToken,
	}
	var method SavedMethod
	if err := g.post(ctx, "/v1/payment_methods", payload, &method); err != nil {
		return nil, err
	}
	return &method, nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.secret)
	return g.do(req, out)
}

func (g *HTTPGateway) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secret)
	return g.do(req, out)
}

func (g *HTTPGateway) do(req *http.Request, out interface{}) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
