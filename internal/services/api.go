// Raw HTTP transport shared by the REST and GraphQL calls
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/desertthunder/fetchmixes/internal/shared"
	"golang.org/x/time/rate"
)

// APIService performs paced HTTP requests and returns raw responses.
type APIService struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// APIOpts contains configuration options for creating an APIService.
type APIOpts struct {
	HTTPClient        *http.Client
	RequestsPerSecond float64 // zero or less disables pacing
	UserAgent         string
}

// NewAPIService creates a new API service instance.
func NewAPIService(opts APIOpts) *APIService {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &APIService{
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
		userAgent:  opts.UserAgent,
	}
}

// NewHTTPClient builds a client with a cookie jar so that cookies set on redirect
// hops are kept. A zero timeout leaves the client without one.
func NewHTTPClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar, Timeout: timeout}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Cookies    []*http.Cookie
	Body       []byte
	IsJSON     bool
}

// OK reports whether the status is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Cookie returns the named cookie set by the response, or nil.
func (r *APIResponse) Cookie(name string) *http.Cookie {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Jar returns the client's cookie jar, which may be nil.
func (a *APIService) Jar() http.CookieJar {
	return a.httpClient.Jar
}

// Get performs a GET request to the specified URL and returns the raw response.
func (a *APIService) Get(ctx context.Context, rawURL string, header http.Header) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return a.do(req, header)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, rawURL string, data []byte, header http.Header) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, header)
}

// PostJSON marshals payload and posts it.
func (a *APIService) PostJSON(ctx context.Context, rawURL string, payload any, header http.Header) (*APIResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return a.Post(ctx, rawURL, data, header)
}

func (a *APIService) do(req *http.Request, header http.Header) (*APIResponse, error) {
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	for key, values := range header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if err := a.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrNetwork, req.Method, req.URL, err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrNetwork, err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Cookies:    resp.Cookies(),
		Body:       body,
		IsJSON:     json.Valid(body),
	}, nil
}
