package webpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Well-known Webpay Plus integration environment credentials published by
// Transbank for sandbox testing.
const (
	IntegrationCommerceCode = "597055555532"
	IntegrationAPIKey       = "579B532A7440BB0C9079DED94D31EA1615BACEB56610332264630D42D0A36B1C"

	IntegrationBaseURL = "https://webpay3gint.transbank.cl"
	ProductionBaseURL  = "https://webpay3g.transbank.cl"

	transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"
)

// Client is a Webpay Plus REST API client. Every call is a single
// synchronous round trip; there are no retries and no caching.
type Client struct {
	// commerceCode identifies the merchant (Tbk-Api-Key-Id header).
	commerceCode string

	// apiKey is the merchant API secret (Tbk-Api-Key-Secret header).
	apiKey string

	// baseURL is the base URL for API requests.
	baseURL string

	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
}

// CreateResponse is the provider's answer to a create-transaction call.
type CreateResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// CommitResponse is the provider's answer to a commit call. Raw carries the
// full payload as decoded, for audit storage.
type CommitResponse struct {
	VCI                string  `json:"vci"`
	Amount             float64 `json:"amount"`
	Status             string  `json:"status"`
	BuyOrder           string  `json:"buy_order"`
	SessionID          string  `json:"session_id"`
	AuthorizationCode  string  `json:"authorization_code"`
	PaymentTypeCode    string  `json:"payment_type_code"`
	ResponseCode       int     `json:"response_code"`
	InstallmentsNumber int     `json:"installments_number"`

	Raw map[string]any `json:"-"`
}

// Create opens a transaction with the provider and returns the checkout
// token plus the hosted payment page URL.
func (c *Client) Create(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (*CreateResponse, error) {
	payload := map[string]any{
		"buy_order":  buyOrder,
		"session_id": sessionID,
		"amount":     amount,
		"return_url": returnURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	reqURL := c.baseURL + transactionsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(rbody))
	}

	var result CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// Commit confirms a created transaction and returns its authorization
// outcome.
func (c *Client) Commit(ctx context.Context, token string) (*CommitResponse, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}

	reqURL := fmt.Sprintf("%s%s/%s", c.baseURL, transactionsPath, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	rbody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(rbody))
	}

	var result CommitResponse
	if err := json.Unmarshal(rbody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(rbody, &result.Raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// Status queries the current state of a transaction without altering it.
// The payload is returned as-is.
func (c *Client) Status(ctx context.Context, token string) (map[string]any, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}

	reqURL := fmt.Sprintf("%s%s/%s", c.baseURL, transactionsPath, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(rbody))
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// NewClient creates a Webpay Plus client for the given merchant credentials.
// The base URL defaults to the integration host; production callers pass
// WithBaseURL(ProductionBaseURL).
func NewClient(commerceCode, apiKey string, opts ...Option) (*Client, error) {
	if commerceCode == "" {
		return nil, errors.New("commerce code is required")
	}
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		commerceCode: commerceCode,
		apiKey:       apiKey,
		baseURL:      o.baseURL,
		httpClient:   httpClient,
	}, nil
}
