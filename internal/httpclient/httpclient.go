package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const (
	DefaultTimeout         = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
	MaxIdleConnsPerHost    = 16

	// DefaultUserAgent mimics a desktop browser; several providers block library user agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Options configures a client built by New.
type Options struct {
	Timeout   time.Duration // per request, including body read; 0 = DefaultTimeout
	UserAgent string        // "" = DefaultUserAgent
	// InsecureSkipVerify disables TLS certificate checks. Catalog providers routinely
	// serve self-signed or mismatched certificates, so the catalog client enables it.
	InsecureSkipVerify bool
	// ProxyURL routes requests through socks5://, socks5h://, http:// or https:// proxies.
	ProxyURL string
	// Decompress advertises br/gzip and decodes responses transparently.
	Decompress bool
}

var defaultClient *http.Client

func init() {
	defaultClient = &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: MaxIdleConnsPerHost,
			IdleConnTimeout:     DefaultIdleConnTimeout,
		},
	}
}

// Default returns the shared tuned HTTP client.
func Default() *http.Client {
	return defaultClient
}

// WithTimeout returns a client with the given timeout and the same transport as Default (or a copy).
func WithTimeout(timeout time.Duration) *http.Client {
	t, ok := defaultClient.Transport.(*http.Transport)
	if !ok {
		return &http.Client{Timeout: timeout}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: t.Clone(),
	}
}

// New builds a client from opts. Only a malformed or unsupported ProxyURL is an error.
func New(opts Options) (*http.Client, error) {
	base, ok := defaultClient.Transport.(*http.Transport)
	if !ok {
		base = &http.Transport{}
	}
	tr := base.Clone()
	if opts.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // providers use self-signed certs
	}
	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		if err := applyProxy(tr, p); err != nil {
			return nil, err
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &headerTransport{
			next:       tr,
			userAgent:  ua,
			decompress: opts.Decompress,
		},
	}, nil
}

func applyProxy(tr *http.Transport, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("proxy url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		tr.Proxy = http.ProxyURL(u)
		return nil
	case "socks5", "socks5h":
		d, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return fmt.Errorf("proxy url: %w", err)
		}
		tr.Proxy = nil
		if cd, ok := d.(proxy.ContextDialer); ok {
			tr.DialContext = cd.DialContext
		} else {
			tr.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return d.Dial(network, addr)
			}
		}
		return nil
	default:
		return fmt.Errorf("proxy url: unsupported scheme %q", u.Scheme)
	}
}

// headerTransport stamps the User-Agent and, when enabled, negotiates compression itself.
type headerTransport struct {
	next       http.RoundTripper
	userAgent  string
	decompress bool
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if t.decompress && req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "br, gzip")
	}
	resp, err := t.next.RoundTrip(req)
	if err != nil || !t.decompress {
		return resp, err
	}
	if err := decodeBody(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}
