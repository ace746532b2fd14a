package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"retail-dashboard/internal/models"
)

// Client is the dashboard's data-fetch layer: thin typed wrappers around
// the REST backend, one method per resource.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

func NewClient(base string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// APIError carries a non-2xx response: the decoded server error message
// when present, otherwise the stringified body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

func (c *Client) Countries(ctx context.Context) ([]string, error) {
	var out []string
	err := c.get(ctx, "/countries", "", &out)
	return out, err
}

func (c *Client) Summary(ctx context.Context, f Filter) (models.Summary, error) {
	var out models.Summary
	err := c.get(ctx, "/summary", f.Query(), &out)
	return out, err
}

func (c *Client) RevenueByCountry(ctx context.Context, f Filter) ([]models.CountryRevenue, error) {
	var out []models.CountryRevenue
	err := c.get(ctx, "/revenue_by_country", f.Query(), &out)
	return out, err
}

func (c *Client) TopProducts(ctx context.Context, f Filter, limit int) ([]models.ProductAggregate, error) {
	query := f.Query()
	v, _ := url.ParseQuery(query)
	v.Set("limit", fmt.Sprint(limit))

	var out []models.ProductAggregate
	err := c.get(ctx, "/top_products", v.Encode(), &out)
	return out, err
}

func (c *Client) MonthlyTrend(ctx context.Context, f Filter) ([]models.MonthlyPoint, error) {
	var out []models.MonthlyPoint
	err := c.get(ctx, "/monthly_trend", f.Query(), &out)
	return out, err
}

func (c *Client) Transactions(ctx context.Context, f Filter) ([]models.Transaction, error) {
	var out []models.Transaction
	err := c.get(ctx, "/transactions", f.Query(), &out)
	return out, err
}

func (c *Client) RFM(ctx context.Context, k int) ([]models.RFMRecord, error) {
	var out []models.RFMRecord
	err := c.get(ctx, "/rfm", fmt.Sprintf("k=%d", k), &out)
	return out, err
}

func (c *Client) CreateTransaction(ctx context.Context, in models.TransactionInput) error {
	return c.send(ctx, http.MethodPost, "/transactions", in, nil)
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, in models.TransactionInput) error {
	return c.send(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), in, nil)
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil)
}

func (c *Client) get(ctx context.Context, path, query string, dest any) error {
	target := c.base + path
	if query != "" {
		target += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, dest)
}

func (c *Client) send(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && len(payload.Error) > 0 {
		var msg string
		if json.Unmarshal(payload.Error, &msg) == nil && msg != "" {
			return &APIError{Status: resp.StatusCode, Message: msg}
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &obj) == nil && obj.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: obj.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: string(payload.Error)}
	}
	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}
