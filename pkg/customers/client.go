// Package customers is a Go client for the customer records API.
package customers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hanssonfredrik/customers/pkg/res"
)

const defaultTimeout = 10 * time.Second

// API is the set of customer operations. Client and CachedClient implement it.
type API interface {
	ListCustomers(ctx context.Context, params ListParams) (*Page, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	UpdateCustomer(ctx context.Context, id int64, in CustomerInput) error
	DeleteCustomer(ctx context.Context, id int64) error
}

// Client calls the customer API over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "customers-go-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ API = (*Client)(nil)

// ListCustomers fetches one page of customers.
func (c *Client) ListCustomers(ctx context.Context, params ListParams) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/customers", params.Values(), nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []Customer{}
	}
	return &page, nil
}

// GetCustomer fetches a single customer.
func (c *Client) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodGet, customerPath(id), nil, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCustomer creates a customer and returns it with its assigned id.
func (c *Client) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers", nil, in, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer replaces a customer's fields.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, in CustomerInput) error {
	return c.do(ctx, http.MethodPut, customerPath(id), nil, in, nil)
}

// DeleteCustomer removes a customer.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, customerPath(id), nil, nil, nil)
}

func customerPath(id int64) string {
	return "/customers/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, "+res.ProblemContentType)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeProblem(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeProblem(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == res.ProblemContentType || mediaType == "application/json" {
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err == nil && len(data) > 0 {
			if jsonErr := json.Unmarshal(data, &apiErr.Problem); jsonErr != nil {
				apiErr.Problem = res.ProblemDetails{}
			}
		}
	}
	if apiErr.Problem.Status == 0 {
		apiErr.Problem.Status = resp.StatusCode
	}
	if apiErr.Problem.Title == "" {
		apiErr.Problem.Title = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// IsRetryable reports whether a failed call may succeed when repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
