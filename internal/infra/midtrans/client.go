package midtrans

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
)

// Sandbox のベースURL
const SandboxBaseURL = "https://app.sandbox.midtrans.com"

// Client は Midtrans Snap の transaction API を呼ぶ。
type Client struct {
	baseURL    string
	serverKey  string
	httpClient *http.Client
}

func NewClient(baseURL, serverKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = SandboxBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serverKey:  serverKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type transactionDetails struct {
	OrderID     string      `json:"order_id"`
	GrossAmount json.Number `json:"gross_amount"`
}

type customerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email,omitempty"`
}

type itemDetail struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int64       `json:"quantity"`
}

type snapRequest struct {
	TransactionDetails transactionDetails `json:"transaction_details"`
	CustomerDetails    customerDetails    `json:"customer_details"`
	ItemDetails        []itemDetail       `json:"item_details"`
}

type snapResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages"`
}

// CreateSession は POST {base}/snap/v1/transactions を呼び Snap token を受け取る。
func (c *Client) CreateSession(ctx context.Context, req model.SessionRequest) (model.Session, error) {
	body := snapRequest{
		TransactionDetails: transactionDetails{
			OrderID:     req.OrderRef,
			GrossAmount: json.Number(req.GrossAmount.String()),
		},
		CustomerDetails: customerDetails{
			FirstName: req.BuyerName,
			Email:     req.BuyerEmail,
		},
	}
	for _, it := range req.Items {
		body.ItemDetails = append(body.ItemDetails, itemDetail{
			ID:       it.ID,
			Name:     it.Name,
			Price:    json.Number(it.Price.String()),
			Quantity: it.Qty,
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return model.Session{}, fmt.Errorf("midtrans: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/snap/v1/transactions", bytes.NewReader(payload))
	if err != nil {
		return model.Session{}, fmt.Errorf("midtrans: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	// server key をユーザー名、パスワード空の Basic 認証
	httpReq.SetBasicAuth(c.serverKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.Session{}, fmt.Errorf("midtrans: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.Session{}, fmt.Errorf("midtrans: read response: %w", err)
	}

	var out snapResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return model.Session{}, fmt.Errorf("midtrans: decode response (status %d): %w", resp.StatusCode, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(out.ErrorMessages) > 0 {
			return model.Session{}, fmt.Errorf("midtrans: status %d: %s", resp.StatusCode, strings.Join(out.ErrorMessages, "; "))
		}
		return model.Session{}, fmt.Errorf("midtrans: status %d", resp.StatusCode)
	}

	return model.Session{Token: out.Token, RedirectURL: out.RedirectURL}, nil
}
