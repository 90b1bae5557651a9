package counter

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scriptseq/scriptseq/internal/core"
)

const (
	// DefaultBaseURL is the global counter service.
	DefaultBaseURL = "https://counter.spsa.pitsolutions.com:8080/"
	// DefaultPath is resolved relative to the base URL.
	DefaultPath = "Home/Generate"
	// DefaultTimeout bounds the whole request, including reading the body.
	DefaultTimeout = 5 * time.Second

	maxBodyBytes = 64 << 10
)

// Client fetches new sequence values from the counter service.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Path       string
	Timeout    time.Duration
	UserAgent  string
}

// FetchSequence issues one GET against the counter endpoint and decodes the
// reply. It never retries; every failure is returned as a *FetchError.
func (c *Client) FetchSequence(ctx context.Context) (*core.CounterResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint, err := c.Endpoint()
	if err != nil {
		return nil, &FetchError{Kind: FetchUnknown, Err: err}
	}
	target := endpoint.String()

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchUnknown, Endpoint: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &FetchError{Kind: classify(err), Endpoint: target, Err: err}
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Kind:       FetchUnknown,
			Endpoint:   target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected counter response: %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{Kind: classify(err), Endpoint: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("read counter response: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return nil, &FetchError{Kind: FetchUnknown, Endpoint: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedPayload, maxBodyBytes)}
	}

	payload, err := DecodePayload(body)
	if err != nil {
		return nil, &FetchError{Kind: FetchUnknown, Endpoint: target, StatusCode: resp.StatusCode, Err: err}
	}
	return payload, nil
}

// Endpoint resolves the configured path against the base URL. The path is
// always kept beneath the base, even when the base lacks a trailing slash.
func (c *Client) Endpoint() (*url.URL, error) {
	base, err := url.Parse(c.baseURL())
	if err != nil {
		return nil, fmt.Errorf("invalid counter base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid counter base url %q", c.baseURL())
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	ref, err := url.Parse(strings.TrimPrefix(c.path(), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid counter path: %w", err)
	}
	return base.ResolveReference(ref), nil
}

// Probe opens and closes a TCP connection to the counter host. It checks
// reachability without issuing a request, so no sequence is consumed.
func (c *Client) Probe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint, err := c.Endpoint()
	if err != nil {
		return &FetchError{Kind: FetchUnknown, Err: err}
	}

	address := endpoint.Host
	if endpoint.Port() == "" {
		port := "443"
		if endpoint.Scheme == "http" {
			port = "80"
		}
		address = net.JoinHostPort(endpoint.Hostname(), port)
	}

	dialer := &net.Dialer{Timeout: c.timeout()}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return &FetchError{Kind: classify(err), Endpoint: endpoint.String(), Err: err}
	}
	return conn.Close()
}

// FallbackURL is the page users can visit to obtain a sequence by hand.
func (c *Client) FallbackURL() string {
	return c.baseURL()
}

func (c *Client) baseURL() string {
	if c != nil && strings.TrimSpace(c.BaseURL) != "" {
		return strings.TrimSpace(c.BaseURL)
	}
	return DefaultBaseURL
}

func (c *Client) path() string {
	if c != nil && strings.TrimSpace(c.Path) != "" {
		return strings.TrimSpace(c.Path)
	}
	return DefaultPath
}

func (c *Client) timeout() time.Duration {
	if c != nil && c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Client) httpClient() *http.Client {
	if c != nil && c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.timeout()}
}
