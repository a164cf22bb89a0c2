package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/1kawdalg/scr/internal/id"
	"github.com/1kawdalg/scr/internal/logging"
	"github.com/1kawdalg/scr/internal/monitoring"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Scheme is the URL scheme prepended to a host-and-path
type Scheme string

const (
	SchemeHTTPS Scheme = "https"
	SchemeHTTP  Scheme = "http"
)

// ErrUnknownScheme is the cause of a transport failure for an unsupported scheme
var ErrUnknownScheme = errors.New("unknown scheme")

// ParseScheme accepts "https" or "http" in any case
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeHTTPS:
		return SchemeHTTPS, nil
	case SchemeHTTP:
		return SchemeHTTP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// Valid reports whether s is a supported scheme
func (s Scheme) Valid() bool {
	return s == SchemeHTTPS || s == SchemeHTTP
}

func (s Scheme) String() string { return string(s) }

// label bounds the metric label set to the supported schemes
func (s Scheme) label() string {
	if !s.Valid() {
		return monitoring.SchemeInvalid
	}
	return string(s)
}

// BuildURL joins scheme and hostAndPath into an absolute URL.
// hostAndPath must not carry its own scheme.
func BuildURL(hostAndPath string, scheme Scheme) (string, error) {
	if !scheme.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, string(scheme))
	}
	if hostAndPath == "" {
		return "", errors.New("empty host")
	}
	if strings.Contains(hostAndPath, "://") {
		return "", fmt.Errorf("%q already has a scheme", hostAndPath)
	}

	raw := string(scheme) + "://" + hostAndPath
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("%q has no host", hostAndPath)
	}
	return u.String(), nil
}

// Resolver turns a host-and-path into a Scraper by fetching and parsing it
type Resolver struct {
	fetcher Fetcher
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the logger used for fetch events
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.Component(logger, "scraper")
	}
}

// WithMetrics records fetches and queries of every Scraper the resolver builds
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = metrics
	}
}

// NewResolver creates a resolver that fetches through fetcher
func NewResolver(fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromURL performs exactly one GET of scheme://hostAndPath and parses the
// decoded body as a full HTML document. The body is parsed whatever the
// status code; the status is available from Scraper.StatusCode.
//
// Every failure to obtain or decode the body is ErrTransport.
func (r *Resolver) FromURL(ctx context.Context, hostAndPath string, scheme Scheme) (*Scraper, error) {
	const op = "FromURL"

	label := scheme.label()
	rawURL, err := BuildURL(hostAndPath, scheme)
	if err != nil {
		r.metrics.RecordFetch(label, monitoring.OutcomeTransport, 0, 0)
		return nil, TransportError(op, hostAndPath, err)
	}
	if r.fetcher == nil {
		r.metrics.RecordFetch(label, monitoring.OutcomeTransport, 0, 0)
		return nil, TransportError(op, rawURL, errors.New("no fetcher configured"))
	}

	docID := id.NewDocumentID()
	logger := r.logger.With(
		zap.String(logging.KeyDocumentID, docID.String()),
		zap.String(logging.KeyURL, rawURL),
	)

	logger.Debug("fetching document")
	start := time.Now()

	page, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		r.metrics.RecordFetch(label, monitoring.OutcomeTransport, time.Since(start), 0)
		logger.Warn("fetch failed", zap.Error(err))
		return nil, TransportError(op, rawURL, err)
	}

	body, charsetName, err := decodeBody(page.Body, page.ContentType)
	if err != nil {
		r.metrics.RecordFetch(label, monitoring.OutcomeTransport, time.Since(start), len(page.Body))
		logger.Warn("decode failed", zap.Error(err))
		return nil, TransportError(op, rawURL, err)
	}

	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		r.metrics.RecordFetch(label, monitoring.OutcomeTransport, time.Since(start), len(page.Body))
		return nil, TransportError(op, rawURL, fmt.Errorf("parse: %w", err))
	}

	duration := time.Since(start)
	r.metrics.RecordFetch(label, monitoring.OutcomeSuccess, duration, len(page.Body))

	doc := &Scraper{
		id:         docID,
		doc:        parsed,
		url:        page.URL,
		statusCode: page.StatusCode,
		metrics:    r.metrics,
	}
	if doc.url == "" {
		doc.url = rawURL
	}

	fields := []zap.Field{
		zap.Int("status", page.StatusCode),
		zap.Int("bytes", len(page.Body)),
		zap.String("charset", charsetName),
		zap.Duration("duration", duration),
	}
	if !page.IsSuccess() {
		logger.Warn("document fetched with non-success status", fields...)
	} else {
		logger.Info("document fetched", fields...)
	}
	return doc, nil
}

// FromFragment parses fragment like the package-level FromFragment, with
// the resolver's metrics attached.
func (r *Resolver) FromFragment(fragment string) *Scraper {
	return newScraper(parseFragment(fragment), r.metrics)
}

// FromHTML parses document like the package-level FromHTML, with the
// resolver's metrics attached.
func (r *Resolver) FromHTML(document string) *Scraper {
	return newScraper(parseDocument(document), r.metrics)
}
