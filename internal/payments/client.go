package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// IntentRequest is what the application sends to the payment processor to
// open a payment intent. Amount is in the currency's major unit.
type IntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	OrderID  string  `json:"orderId,omitempty"`
}

// Intent is the processor's response. ClientSecret is handed to the browser
// to complete the payment; Reference identifies the intent server-side.
type Intent struct {
	Reference    string `json:"reference"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
}

// IClient defines the interface for the payment processor.
type IClient interface {
	CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error)
}

// Client talks to the external payment processor over HTTPS. The processor
// holds all card data; this application only ever sees opaque references.
type Client struct {
	apiURL     string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a payment client for the given processor endpoint.
func NewClient(apiURL, secretKey string) *Client {
	return &Client{
		apiURL:    apiURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

var _ IClient = (*Client)(nil)

// CreateIntent opens a payment intent with the processor.
func (c *Client) CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error) {
	if c.apiURL == "" {
		return nil, fmt.Errorf("payment processor is not configured")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment intent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v1/intents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build payment intent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment intent request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("payment processor returned status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent response: %w", err)
	}
	if intent.Reference == "" {
		return nil, fmt.Errorf("payment processor returned no intent reference")
	}
	return &intent, nil
}
