package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
)

const ordersPath = "orders"

// StatusError is returned when the order service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("order service returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
}

var _ port.OrderSubmitter = (*Client)(nil)

// NewClient targets the REST API rooted at baseURL, e.g. http://localhost:5000/api.
// A non-empty token is sent as a bearer token.
func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url[%s] must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: u, http: httpClient, token: token}, nil
}

func (c *Client) SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderConfirmation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("json.Marshal: %w", err)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: ordersPath})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.ID.String())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("io.ReadAll: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.OrderConfirmation{}, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	var confirmation domain.OrderConfirmation
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &confirmation); err != nil {
			return domain.OrderConfirmation{}, fmt.Errorf("json.Unmarshal: %w", err)
		}
	}
	if confirmation.OrderID == "" {
		confirmation.OrderID = req.ID.String()
	}

	return confirmation, nil
}

func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(data))
}
