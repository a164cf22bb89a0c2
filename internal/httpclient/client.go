package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/1kawdalg/scr/internal/scraper"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/time/rate"
)

// ErrBodyTooLarge is returned when a response body exceeds Config.MaxBodyBytes
var ErrBodyTooLarge = errors.New("response body exceeds limit")

// Config defines transport behavior
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
	// RateLimit is requests per second; zero or less means unlimited
	RateLimit float64
}

// DefaultConfig returns the transport defaults
func DefaultConfig() Config {
	return Config{
		UserAgent:    "scr/1.0",
		Timeout:      30 * time.Second,
		MaxRedirects: 10,
		MaxBodyBytes: 10 * 1024 * 1024,
	}
}

// Client wraps resty with rate limiting and a body size limit
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Mu      sync.RWMutex

	maxBody int64
}

// Response is the fully read result of a GET
type Response struct {
	// URL is the final URL after redirects
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// NewClient creates a client from cfg
func NewClient(cfg Config) *Client {
	transport := cleanhttp.DefaultTransport()
	transport.DisableKeepAlives = true

	restyClient := resty.New()
	restyClient.
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetRedirectPolicy(redirectPolicy(cfg.MaxRedirects))

	if cfg.UserAgent != "" {
		restyClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultConfig().MaxBodyBytes
	}

	c := &Client{
		Resty:   restyClient,
		maxBody: maxBody,
	}
	c.SetRateLimit(cfg.RateLimit)
	return c
}

func redirectPolicy(maxRedirects int) resty.RedirectPolicy {
	if maxRedirects <= 0 {
		return resty.NoRedirectPolicy()
	}
	// the policy counts the original request in via
	return resty.FlexibleRedirectPolicy(maxRedirects + 1)
}

// SetHeader adds default header
func (c *Client) SetHeader(key, value string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// SetTimeout configures request timeout
func (c *Client) SetTimeout(duration time.Duration) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetTimeout(duration)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Request creates new request after waiting for the rate limiter
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	c.Mu.RLock()
	limiter := c.Limiter
	c.Mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// Get performs one GET and reads the whole body. Any status code is
// returned as a Response; only failures to complete the exchange are errors.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := c.Request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.
		SetHeader("Accept-Encoding", acceptEncoding).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}

	raw := resp.RawBody()
	defer raw.Close()

	decoded, err := decodeContent(raw, resp.Header().Get("Content-Encoding"))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	defer decoded.Close()

	// the limit applies to the decoded size
	body, err := io.ReadAll(io.LimitReader(decoded, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.maxBody)
	}

	finalURL := rawURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	return &Response{
		URL:         finalURL,
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        body,
	}, nil
}

// Fetch implements scraper.Fetcher
func (c *Client) Fetch(ctx context.Context, rawURL string) (*scraper.Page, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &scraper.Page{
		URL:         resp.URL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		Body:        resp.Body,
	}, nil
}

// Download streams the body of one GET into path. The file is written for
// any status code; callers decide whether to keep it.
func (c *Client) Download(ctx context.Context, rawURL, path string) (*resty.Response, error) {
	req, err := c.Request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.SetOutput(path).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	return resp, nil
}
