// Package client is a Go SDK for the sweet shop API. A Client keeps the
// signed-in session, persisted through a SessionStore, and a cached copy of
// the catalog that is refetched after every mutation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotAuthenticated is returned by calls that need a session when none is held.
var ErrNotAuthenticated = errors.New("sweetshop: not logged in")

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore

	mu      sync.RWMutex
	session *Session
	catalog []Sweet
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithStore sets where the session is persisted. Defaults to a MemoryStore.
func WithStore(s SessionStore) Option {
	return func(c *Client) { c.store = s }
}

// New returns a Client for the API mounted at baseURL (for example
// "http://localhost:3000/api") and restores any session held by the store.
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("sweetshop: invalid base url: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		store: &MemoryStore{},
	}
	for _, opt := range opts {
		opt(c)
	}

	s, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	c.session = s
	return c, nil
}

// Session returns a copy of the current session, or nil when logged out.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	cp := *c.session
	return &cp
}

// Sweets returns the cached catalog from the last list, search or mutation.
func (c *Client) Sweets() []Sweet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Sweet, len(c.catalog))
	copy(out, c.catalog)
	return out
}

type authEnvelope struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Register creates an account, stores the session and loads the catalog.
// A non-nil session with a non-nil error means only the catalog load failed.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var env authEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &env, false); err != nil {
		return nil, err
	}
	return c.startSession(ctx, env)
}

// Login authenticates, stores the session and loads the catalog.
// A non-nil session with a non-nil error means only the catalog load failed.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var env authEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &env, false); err != nil {
		return nil, err
	}
	return c.startSession(ctx, env)
}

func (c *Client) startSession(ctx context.Context, env authEnvelope) (*Session, error) {
	s := &Session{Token: env.Token, User: env.User}
	if err := c.store.Save(s); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = s
	c.catalog = nil
	c.mu.Unlock()

	if _, err := c.Refresh(ctx); err != nil {
		return c.Session(), fmt.Errorf("load catalog: %w", err)
	}
	return c.Session(), nil
}

// Logout drops the session and the cached catalog.
func (c *Client) Logout() error {
	c.mu.Lock()
	c.session = nil
	c.catalog = nil
	c.mu.Unlock()
	return c.store.Clear()
}

// Me asks the server who the current token belongs to.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var env struct {
		User Identity `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &env, true); err != nil {
		return nil, err
	}
	return &env.User, nil
}

type listEnvelope struct {
	Sweets []Sweet `json:"sweets"`
}

type sweetEnvelope struct {
	Sweet Sweet `json:"sweet"`
}

// Refresh refetches the whole catalog into the cache. An empty catalog is
// not an error.
func (c *Client) Refresh(ctx context.Context) ([]Sweet, error) {
	return c.loadCatalog(ctx, "/sweets")
}

// Search replaces the cache with the sweets matching q.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]Sweet, error) {
	v := url.Values{}
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}

	path := "/sweets/search"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	return c.loadCatalog(ctx, path)
}

func (c *Client) loadCatalog(ctx context.Context, path string) ([]Sweet, error) {
	var env listEnvelope
	err := c.do(ctx, http.MethodGet, path, nil, &env, true)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		env.Sweets, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.catalog = env.Sweets
	c.mu.Unlock()
	return c.Sweets(), nil
}

func (c *Client) Get(ctx context.Context, id string) (*Sweet, error) {
	var env sweetEnvelope
	if err := c.do(ctx, http.MethodGet, "/sweets/"+url.PathEscape(id), nil, &env, true); err != nil {
		return nil, err
	}
	return &env.Sweet, nil
}

// Create adds a sweet (admin only) and refreshes the cache.
func (c *Client) Create(ctx context.Context, req CreateSweetRequest) (*Sweet, error) {
	return c.mutate(ctx, http.MethodPost, "/sweets", req)
}

// Update changes a sweet (admin only) and refreshes the cache.
func (c *Client) Update(ctx context.Context, id string, req UpdateSweetRequest) (*Sweet, error) {
	return c.mutate(ctx, http.MethodPut, "/sweets/"+url.PathEscape(id), req)
}

// Delete removes a sweet (admin only) and refreshes the cache.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/sweets/"+url.PathEscape(id), nil, nil, true); err != nil {
		return err
	}
	if _, err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	return nil
}

// Purchase buys quantity units and refreshes the cache.
func (c *Client) Purchase(ctx context.Context, id string, quantity int) (*Sweet, error) {
	return c.mutate(ctx, http.MethodPost, "/sweets/"+url.PathEscape(id)+"/purchase", map[string]int{"quantity": quantity})
}

// Restock adds quantity units (admin only) and refreshes the cache.
func (c *Client) Restock(ctx context.Context, id string, quantity int) (*Sweet, error) {
	return c.mutate(ctx, http.MethodPost, "/sweets/"+url.PathEscape(id)+"/restock", map[string]int{"quantity": quantity})
}

// mutate performs a write and then refetches the catalog. A non-nil sweet
// with a non-nil error means the write succeeded but the refresh failed.
func (c *Client) mutate(ctx context.Context, method, path string, body any) (*Sweet, error) {
	var env sweetEnvelope
	if err := c.do(ctx, method, path, body, &env, true); err != nil {
		return nil, err
	}
	if _, err := c.Refresh(ctx); err != nil {
		return &env.Sweet, fmt.Errorf("refresh catalog: %w", err)
	}
	return &env.Sweet, nil
}

type errorEnvelope struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, auth bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		s := c.Session()
		if s == nil {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Message != "" {
			apiErr.Message = env.Message
			apiErr.Errors = env.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
