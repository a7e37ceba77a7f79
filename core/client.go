package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/encoding/json"
)

var ErrClientClosed = errors.New("dayview: outbound client closed")

// Client is the single outbound HTTP client shared by every page handler.
// It is safe for concurrent use; Close releases pooled connections once.
type Client struct {
	http      *http.Client
	transport *http.Transport
	metrics   *Metrics

	closed    atomic.Bool
	closeOnce sync.Once
	onClose   func()
}

// NewClient builds the shared client. A zero timeout means upstream calls
// are bounded only by the incoming request's context.
var NewClient = func(timeout time.Duration, metrics *Metrics) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		transport: transport,
		metrics:   metrics,
	}
}

type Response struct {
	Status int
	Body   []byte
}

// JSON decodes the body into a generic value tree.
func (r *Response) JSON() (any, error) {
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// Fetch performs one GET against an upstream API. Any status code is
// returned to the caller; only transport failures are errors.
func (c *Client) Fetch(ctx context.Context, api, url string) (*Response, error) {
	if c.closed.Load() {
		return nil, &UpstreamError{API: api, Err: ErrClientClosed}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamError{API: api, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observeUpstream(api, 0, time.Since(start))
		return nil, &UpstreamError{API: api, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.observeUpstream(api, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &UpstreamError{API: api, Status: resp.StatusCode, Err: err}
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.transport.CloseIdleConnections()
		if c.onClose != nil {
			c.onClose()
		}
	})
}

func (c *Client) Closed() bool {
	return c.closed.Load()
}
