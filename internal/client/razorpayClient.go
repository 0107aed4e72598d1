package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SaumyaSingh04/Chow-Back/internal/config"
)

// RazorpayClient is the payment provider boundary: order creation so the
// client can open checkout, and payment fetch so reconciliation can read the
// captured/failed truth instead of trusting a caller's claim.
type RazorpayClient interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*ProviderOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*ProviderPayment, error)
}

type ProviderOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type ProviderPayment struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"` // created, authorized, captured, refunded, failed
	Amount  int64  `json:"amount"`
	Method  string `json:"method"`
}

// PaymentCaptured is the only provider status that counts as money received.
const PaymentCaptured = "captured"

type razorpayClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	keyID      string
	keySecret  string
}

func NewRazorpayClient(cfg *config.Razorpay) RazorpayClient {
	return &razorpayClientImpl{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseApiURL: cfg.BaseApiURL,
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
	}
}

func (c *razorpayClientImpl) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*ProviderOrder, error) {
	payload := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  receipt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("razorpay error %d: %s", resp.StatusCode, string(b))
	}

	var result ProviderOrder
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode razorpay response: %w", err)
	}

	return &result, nil
}

func (c *razorpayClientImpl) FetchPayment(ctx context.Context, paymentID string) (*ProviderPayment, error) {
	url := fmt.Sprintf("%s/v1/payments/%s", c.baseApiURL, paymentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay fetch payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("razorpay error %d: %s", resp.StatusCode, string(b))
	}

	var result ProviderPayment
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode razorpay response: %w", err)
	}

	return &result, nil
}
