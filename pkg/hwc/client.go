// Package hwc is a small signed HTTP client for the regional cloud APIs.
// Every request is signed with SDK-HMAC-SHA256 and sent over HTTPS.
package hwc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stratoshell/stratoshell/pkg/logger"
	"github.com/stratoshell/stratoshell/pkg/signer"
	"go.uber.org/zap"
)

const DefaultTimeout = 60 * time.Second

// Client holds no per-call state and is safe for concurrent use.
type Client struct {
	HTTPClient *http.Client
	Domain     string
	Now        func() time.Time

	creds signer.Credentials
}

// RawResponse is what raw-mode calls return for every status.
type RawResponse struct {
	StatusCode int
	Status     string
	Body       string
}

func (r *RawResponse) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewClient(creds signer.Credentials) (*Client, error) {
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return nil, fmt.Errorf("%w: access key and secret key are required", ErrInvalidRequest)
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Domain:     DefaultDomain,
		Now:        time.Now,
		creds:      creds,
	}, nil
}

func (c *Client) host(service Service, region string) string {
	domain := c.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	return Endpoint(service, region, domain)
}

func (c *Client) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) newRequest(
	ctx context.Context,
	method, host, path string,
	body []byte,
) (*http.Request, error) {
	signed := signer.Sign(c.creds, signer.Request{
		Method: method,
		Host:   host,
		Path:   path,
		Body:   body,
	}, c.now())

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, signed.Method, "https://"+host+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s%s: %w", host, path, err)
	}

	req.Host = host
	for name, value := range signed.Headers() {
		if name == signer.HeaderHost {
			continue
		}
		req.Header.Set(name, value)
	}
	if len(body) > 0 {
		req.Header.Set(signer.HeaderContentType, signer.ContentTypeJSON)
	}
	return req, nil
}

func (c *Client) send(
	ctx context.Context,
	method, host, path string,
	body []byte,
) (*http.Response, []byte, error) {
	req, err := c.newRequest(ctx, method, host, path, body)
	if err != nil {
		return nil, nil, err
	}

	logger.FromContext(ctx).DebugWithFields("sending signed request",
		zap.String("method", req.Method),
		zap.String("host", host),
		zap.String("path", path))

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send %s request to %s%s: %w", req.Method, host, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body from %s%s: %w", host, path, err)
	}
	return resp, data, nil
}

func logFailure(ctx context.Context, method, host, path string, status int, body []byte) {
	logger.FromContext(ctx).WarnWithFields("request returned non-success status",
		zap.String("method", strings.ToUpper(method)),
		zap.Int("status", status),
		zap.String("host", host),
		zap.String("path", path),
		zap.ByteString("body", body))
}

// DoJSON sends a signed request and decodes a 2xx body into out. Non-2xx
// responses return *APIError. out may be nil.
func (c *Client) DoJSON(
	ctx context.Context,
	method, host, path string,
	body []byte,
	out any,
) error {
	resp, data, err := c.send(ctx, method, host, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logFailure(ctx, method, host, path, resp.StatusCode, data)
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     strings.ToUpper(method),
			Host:       host,
			Path:       path,
			Body:       string(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s%s: %w", host, path, err)
	}
	return nil
}

// DoRaw sends a signed request and returns status and body whatever the status.
// Only transport failures are errors.
func (c *Client) DoRaw(
	ctx context.Context,
	method, host, path string,
	body []byte,
) (*RawResponse, error) {
	resp, data, err := c.send(ctx, method, host, path, body)
	if err != nil {
		return nil, err
	}

	raw := &RawResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(data),
	}
	if !raw.Success() {
		logFailure(ctx, method, host, path, resp.StatusCode, data)
	}
	return raw, nil
}
