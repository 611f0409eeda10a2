package customers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachedClient caches reads of an API and invalidates them on writes.
//
// Lists are keyed by their canonical query string and details by id.
// Concurrent identical reads share one request. Every successful mutation
// evicts the mutated record's detail entry and all cached lists, and a read
// that began before a mutation never stores its result afterwards. Failed
// reads are not cached.
type CachedClient struct {
	api   API
	group singleflight.Group

	mu      sync.Mutex
	gen     uint64
	lists   map[string]Page
	details map[int64]Customer
}

// NewCachedClient wraps api with a read cache.
func NewCachedClient(api API) *CachedClient {
	return &CachedClient{
		api:     api,
		lists:   make(map[string]Page),
		details: make(map[int64]Customer),
	}
}

var _ API = (*CachedClient)(nil)

// ListCustomers returns a cached page or fetches it.
func (c *CachedClient) ListCustomers(ctx context.Context, params ListParams) (*Page, error) {
	key := "list?" + params.Values().Encode()

	c.mu.Lock()
	if page, ok := c.lists[key]; ok {
		c.mu.Unlock()
		out := page.clone()
		return &out, nil
	}
	gen := c.gen
	c.mu.Unlock()

	v, err := c.shared(ctx, flightKey(key, gen), func(ctx context.Context) (any, error) {
		page, err := c.api.ListCustomers(ctx, params)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.lists[key] = page.clone()
		}
		c.mu.Unlock()
		return *page, nil
	})
	if err != nil {
		return nil, err
	}
	out := v.(Page).clone()
	return &out, nil
}

// GetCustomer returns a cached customer or fetches it.
func (c *CachedClient) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	key := "detail/" + strconv.FormatInt(id, 10)

	c.mu.Lock()
	if customer, ok := c.details[id]; ok {
		c.mu.Unlock()
		out := customer.clone()
		return &out, nil
	}
	gen := c.gen
	c.mu.Unlock()

	v, err := c.shared(ctx, flightKey(key, gen), func(ctx context.Context) (any, error) {
		customer, err := c.api.GetCustomer(ctx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.details[id] = customer.clone()
		}
		c.mu.Unlock()
		return *customer, nil
	})
	if err != nil {
		return nil, err
	}
	out := v.(Customer).clone()
	return &out, nil
}

// CreateCustomer creates a customer and invalidates every cached list.
func (c *CachedClient) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	customer, err := c.api.CreateCustomer(ctx, in)
	if customer != nil {
		c.invalidate(customer.ID, err)
	} else {
		c.invalidate(0, err)
	}
	return customer, err
}

// UpdateCustomer updates a customer and invalidates its detail entry and
// every cached list.
func (c *CachedClient) UpdateCustomer(ctx context.Context, id int64, in CustomerInput) error {
	err := c.api.UpdateCustomer(ctx, id, in)
	c.invalidate(id, err)
	return err
}

// DeleteCustomer deletes a customer and invalidates its detail entry and
// every cached list.
func (c *CachedClient) DeleteCustomer(ctx context.Context, id int64) error {
	err := c.api.DeleteCustomer(ctx, id)
	c.invalidate(id, err)
	return err
}

// Invalidate drops every cached entry.
func (c *CachedClient) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lists = make(map[string]Page)
	c.details = make(map[int64]Customer)
}

// invalidate runs after a mutation. A request rejected by the server changed
// nothing and keeps the cache; any other outcome may have committed.
func (c *CachedClient) invalidate(id int64, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		if apiErr.StatusCode == http.StatusNotFound && id > 0 {
			// gone on the server, so the cached copy is stale
			c.mu.Lock()
			delete(c.details, id)
			c.mu.Unlock()
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lists = make(map[string]Page)
	if id > 0 {
		delete(c.details, id)
	}
}

// shared runs fetch once for all concurrent callers of key. The fetch is
// detached from any single caller's cancellation and bounded by
// defaultTimeout instead; each caller still stops waiting when its own ctx
// is done.
func (c *CachedClient) shared(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
		defer cancel()
		return fetch(fetchCtx)
	})

	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func flightKey(key string, gen uint64) string {
	return key + "#" + strconv.FormatUint(gen, 10)
}
