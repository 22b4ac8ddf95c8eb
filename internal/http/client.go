package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// DefaultUserAgent is sent when no other agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultTimeout bounds a request when no other timeout is configured.
const DefaultTimeout = 30 * time.Second

// Client wraps a resty client with memefetch's request policy.
//
// Client provides:
//   - Configured User-Agent and static headers on every request
//   - Timeout handling
//   - Single-attempt GETs returning the whole payload in memory
//
// Example usage:
//
//	client := NewClient(WithUserAgent("memefetch/1.0"), WithTimeout(10*time.Second))
//	data, err := client.Fetch(ctx, "https://i.imgflip.com/30b1gx.jpg")
type Client struct {
	rc        *resty.Client
	userAgent string
	timeout   time.Duration
}

type options struct {
	userAgent string
	timeout   time.Duration
	headers   map[string]string
	logger    *slog.Logger
	transport http.RoundTripper
}

// Option configures a Client.
type Option func(*options)

// WithUserAgent sets the User-Agent header. Empty values are ignored.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHeaders adds static headers to every request. A User-Agent entry sets
// the agent, like WithUserAgent, and empty User-Agent values are ignored.
// Keys are canonicalized, so "user-agent" and "User-Agent" are the same header.
func WithHeaders(h map[string]string) Option {
	return func(o *options) {
		for k, v := range h {
			key := http.CanonicalHeaderKey(k)
			if key == "User-Agent" {
				if strings.TrimSpace(v) != "" {
					o.userAgent = v
				}
				continue
			}
			o.headers[key] = v
		}
	}
}

// WithLogger routes the transport's internal log output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// NewClient creates a new Client.
//
// The client is configured with:
//   - 30 second timeout
//   - DefaultUserAgent
//   - no retries
func NewClient(opts ...Option) *Client {
	o := &options{
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		headers:   make(map[string]string),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	rc := resty.New().
		SetTimeout(o.timeout).
		SetRetryCount(0).
		SetHeaders(o.headers).
		SetHeader("User-Agent", o.userAgent).
		SetLogger(&restyLogger{logger: o.logger})
	if o.transport != nil {
		rc.SetTransport(o.transport)
	}

	return &Client{
		rc:        rc,
		userAgent: o.userAgent,
		timeout:   o.timeout,
	}
}

// UserAgent returns the agent sent with each request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Fetch performs one GET request and returns the response body.
//
// Any 2xx status is a success. Every failure, whether an invalid URL, a
// transport fault, a timeout or a non-2xx status, is returned as *FetchError.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := checkURL(rawURL); err != nil {
		return nil, &FetchError{URL: rawURL, Reason: "invalid URL: " + err.Error(), Err: err}
	}

	resp, err := c.rc.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, transportError(rawURL, err)
	}

	if !resp.IsSuccess() {
		status := resp.Status()
		if status == "" {
			status = fmt.Sprintf("%d %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))
		}
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode(), Reason: status}
	}

	return resp.Body(), nil
}

func checkURL(rawURL string) error {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func transportError(rawURL string, err error) *FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return &FetchError{URL: rawURL, Reason: "cancelled", Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{URL: rawURL, Reason: "timeout: " + err.Error(), Err: err, timedOut: true}
	default:
		return &FetchError{URL: rawURL, Reason: "request failed: " + err.Error(), Err: err}
	}
}

// restyLogger adapts slog to resty.Logger.
type restyLogger struct {
	logger *slog.Logger
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
