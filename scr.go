// Package scr fetches web pages or parses HTML fragments and extracts inner
// HTML and attribute values with CSS selectors. It also downloads remote
// files to disk.
//
// The package-level functions use a transport built from the defaults. New
// builds a Client from a Config when the transport, logging or metrics need
// to be controlled.
//
// Example Usage:
//
//	doc, err := scr.FromURL(ctx, "scrapeme.live/shop/", scr.SchemeHTTPS)
//	if err != nil {
//		return err
//	}
//	name, err := doc.Text("main#main>ul>li.product>a>h2")
package scr

import (
	"context"
	"sync"

	"github.com/1kawdalg/scr/internal/config"
	"github.com/1kawdalg/scr/internal/files"
	"github.com/1kawdalg/scr/internal/httpclient"
	"github.com/1kawdalg/scr/internal/logging"
	"github.com/1kawdalg/scr/internal/monitoring"
	"github.com/1kawdalg/scr/internal/scraper"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type (
	Scraper     = scraper.Scraper
	Element     = scraper.Element
	MatchSet    = scraper.MatchSet
	Error       = scraper.Error
	Kind        = scraper.Kind
	Scheme      = scraper.Scheme
	Page        = scraper.Page
	Fetcher     = scraper.Fetcher
	FetcherFunc = scraper.FetcherFunc
	File        = files.File
	FileType    = files.FileType
	Config      = config.Config
)

const (
	SchemeHTTPS = scraper.SchemeHTTPS
	SchemeHTTP  = scraper.SchemeHTTP

	KindInvalidSelector = scraper.KindInvalidSelector
	KindNotFound        = scraper.KindNotFound
	KindTransport       = scraper.KindTransport

	Auto = files.Auto
	JSON = files.JSON
	PNG  = files.PNG
	JPEG = files.JPEG
	JPG  = files.JPG
	XLSX = files.XLSX
	TXT  = files.TXT
)

var (
	ErrInvalidSelector = scraper.ErrInvalidSelector
	ErrNotFound        = scraper.ErrNotFound
	ErrTransport       = scraper.ErrTransport

	IsInvalidSelector = scraper.IsInvalidSelector
	IsNotFound        = scraper.IsNotFound
	IsTransport       = scraper.IsTransport
	KindOfError       = scraper.KindOf

	ParseScheme    = scraper.ParseScheme
	ParseFileType  = files.ParseFileType
	LoadConfig     = config.Load
	LoadConfigFile = config.LoadFile
	DefaultConfig  = config.Default
)

// Client bundles a resolver and a downloader sharing one transport
type Client struct {
	*scraper.Resolver
	downloader *files.Downloader
}

type options struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	fetcher    scraper.Fetcher
}

// Option configures a Client
type Option func(*options)

// WithLogger logs fetches and downloads to logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer registers fetch, query and download metrics on reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithFetcher replaces the HTTP transport used for documents. Downloads
// still use the configured transport.
func WithFetcher(fetcher Fetcher) Option {
	return func(o *options) {
		o.fetcher = fetcher
	}
}

// New builds a Client from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = config.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var metrics *monitoring.Metrics
	if o.registerer != nil {
		metrics = monitoring.NewMetrics(o.registerer)
	}
	logger := logging.OrNop(o.logger)

	transport := httpclient.NewClient(HTTPConfig(cfg))
	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = transport
	}

	return &Client{
		Resolver: scraper.NewResolver(fetcher,
			scraper.WithLogger(logger),
			scraper.WithMetrics(metrics),
		),
		downloader: files.NewDownloader(transport,
			files.WithCreateDirs(cfg.Download.CreateDirs),
			files.WithLogger(logger),
			files.WithMetrics(metrics),
		),
	}
}

// Download performs one GET of scheme://hostAndPath and writes the body to
// dest. See FileType for how the extension is chosen.
func (c *Client) Download(ctx context.Context, hostAndPath, dest string, scheme Scheme, fileType FileType) (*File, error) {
	return c.downloader.Download(ctx, hostAndPath, dest, scheme, fileType)
}

// HTTPConfig converts the transport section of cfg
func HTTPConfig(cfg *Config) httpclient.Config {
	return httpclient.Config{
		UserAgent:    cfg.HTTP.UserAgent,
		Timeout:      cfg.HTTP.Timeout,
		MaxRedirects: cfg.HTTP.MaxRedirects,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		RateLimit:    cfg.HTTP.RateLimit,
	}
}

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
)

func defaults() *Client {
	defaultClientOnce.Do(func() {
		defaultClient = New(config.Default())
	})
	return defaultClient
}

// FromURL performs exactly one GET of scheme://hostAndPath and parses the
// body as an HTML document.
func FromURL(ctx context.Context, hostAndPath string, scheme Scheme) (*Scraper, error) {
	return defaults().FromURL(ctx, hostAndPath, scheme)
}

// FromFragment parses an HTML fragment. It performs no I/O and cannot fail.
func FromFragment(fragment string) *Scraper {
	return scraper.FromFragment(fragment)
}

// FromHTML parses a complete HTML document already in memory.
func FromHTML(document string) *Scraper {
	return scraper.FromHTML(document)
}

// Download retrieves scheme://hostAndPath into dest with the default client.
func Download(ctx context.Context, hostAndPath, dest string, scheme Scheme, fileType FileType) (*File, error) {
	return defaults().Download(ctx, hostAndPath, dest, scheme, fileType)
}
