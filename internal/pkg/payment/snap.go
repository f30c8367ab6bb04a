package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mahendrapn/GajiHub/internal/pkg/env"
)

const defaultSnapBaseURL = "https://app.sandbox.midtrans.com"

// SessionRequest carries what the gateway needs to open a hosted checkout.
type SessionRequest struct {
	OrderID       string
	GrossAmount   int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// Session is the hosted-payment reference handed back to the tenant.
type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// SessionCreator opens a hosted checkout for an order. The gateway keys the
// session on the order id, so the engine never retries a create itself.
type SessionCreator interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// SnapClient talks to the gateway's Snap API over HTTP.
type SnapClient struct {
	BaseURL   string
	ServerKey string

	HTTPClient *http.Client
}

// NewSnapClientFromEnv builds a Snap client from PAYMENT_* environment keys.
func NewSnapClientFromEnv() *SnapClient {
	return &SnapClient{
		BaseURL:   strings.TrimRight(env.GetEnv("PAYMENT_SNAP_BASE_URL", defaultSnapBaseURL), "/"),
		ServerKey: strings.TrimSpace(env.GetEnv("PAYMENT_SERVER_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *SnapClient) CreateSession(ctx context.Context, in SessionRequest) (*Session, error) {
	if strings.TrimSpace(c.ServerKey) == "" {
		return nil, errors.New("PAYMENT_SERVER_KEY is not configured")
	}
	if strings.TrimSpace(in.OrderID) == "" || in.GrossAmount <= 0 {
		return nil, errors.New("order id and a positive gross amount are required")
	}

	payload := map[string]any{
		"transaction_details": map[string]any{
			"order_id":     in.OrderID,
			"gross_amount": in.GrossAmount,
		},
		"customer_details": map[string]any{
			"first_name": in.CustomerName,
			"email":      in.CustomerEmail,
			"phone":      in.CustomerPhone,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.ServerKey+":")))

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment session create failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("invalid payment session response: %w", err)
	}
	if session.Token == "" {
		return nil, errors.New("payment session response missing token")
	}
	return &session, nil
}
