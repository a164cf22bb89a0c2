package scraper

import "context"

// Page is the raw result of one fetch
type Page struct {
	// URL is the final URL after redirects
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsSuccess reports a 2xx status
func (p *Page) IsSuccess() bool {
	return p.StatusCode >= 200 && p.StatusCode <= 299
}

// Fetcher performs exactly one GET and returns the whole response.
// Non-2xx statuses are returned as a Page, not as an error.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, rawURL string) (*Page, error)

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	return f(ctx, rawURL)
}
