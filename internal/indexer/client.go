package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/snapetech/strmsync/internal/httpclient"
	"github.com/snapetech/strmsync/internal/provider"
	"github.com/snapetech/strmsync/internal/safeurl"
)

// DefaultRequestsPerSecond paces catalog calls against one provider.
const DefaultRequestsPerSecond = 5

// maxBodySize bounds a single player_api response (full VOD lists run to tens of MB).
const maxBodySize = 256 << 20

// ErrInvalidServer is returned for a server URL that is not a plain http(s) base.
var ErrInvalidServer = errors.New("indexer: invalid server URL")

// Response carries either decoded data or the reason the provider could not serve it.
// A non-nil Unavailable means Data is the zero value and callers should treat the
// result as empty rather than abort.
type Response[T any] struct {
	Data        T
	Unavailable error
}

// OK reports whether the provider answered with usable data.
func (r Response[T]) OK() bool { return r.Unavailable == nil }

func unavailable[T any](err error) Response[T] {
	return Response[T]{Unavailable: err}
}

// Client talks to one provider's player_api.php.
type Client struct {
	creds   provider.Credentials
	http    *http.Client
	limiter *rate.Limiter
	retry   httpclient.RetryPolicy
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (default httpclient.Default()).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithRateLimit sets the request pace; rps <= 0 disables pacing.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) {
		if rps <= 0 {
			cl.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryPolicy overrides httpclient.DefaultRetryPolicy.
func WithRetryPolicy(p httpclient.RetryPolicy) Option {
	return func(cl *Client) { cl.retry = p }
}

// WithLogger sets the logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// New returns a client for creds. The server must be an http(s) URL.
func New(creds provider.Credentials, opts ...Option) (*Client, error) {
	server, err := safeurl.ServerBase(creds.Server)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServer, err)
	}
	creds.Server = server
	c := &Client{
		creds:   creds,
		http:    httpclient.Default(),
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		retry:   httpclient.DefaultRetryPolicy,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Provider returns the provider name the client was built for.
func (c *Client) Provider() string { return c.creds.Name }

// apiGet calls player_api.php with action and extra query params and returns the raw body.
func (c *Client) apiGet(ctx context.Context, action string, extra url.Values) ([]byte, error) {
	q := url.Values{}
	q.Set("username", c.creds.Username)
	q.Set("password", c.creds.Secret)
	q.Set("action", action)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	endpoint := c.creds.Server + "/player_api.php?" + q.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, c.redact(err)
	}
	resp, err := httpclient.DoWithRetry(ctx, c.http, req, c.retry)
	if err != nil {
		return nil, c.redact(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %s", action, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", action, c.redact(err))
	}
	return body, nil
}

// redact strips the secret from transport errors, which embed the full request URL.
func (c *Client) redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	cp := *ue
	cp.URL = redactURL(ue.URL)
	return &cp
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<redacted>"
	}
	q := u.Query()
	if q.Has("password") {
		q.Set("password", "xxx")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) warn(msg, action string, err error) {
	c.logger.Warn(msg,
		zap.String("provider", c.creds.Name),
		zap.String("action", action),
		zap.Error(err),
	)
}
