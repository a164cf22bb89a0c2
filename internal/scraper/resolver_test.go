package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/1kawdalg/scr/internal/httpclient"
	"github.com/1kawdalg/scr/internal/logging"
	"github.com/1kawdalg/scr/internal/monitoring"
	"github.com/1kawdalg/scr/internal/scraper"
	"github.com/1kawdalg/scr/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name        string
		hostAndPath string
		scheme      scraper.Scheme
		want        string
		wantErr     bool
	}{
		{name: "https", hostAndPath: "scrapeme.live/shop/", scheme: scraper.SchemeHTTPS, want: "https://scrapeme.live/shop/"},
		{name: "http", hostAndPath: "example.com", scheme: scraper.SchemeHTTP, want: "http://example.com"},
		{name: "port and query", hostAndPath: "localhost:8080/a?b=c", scheme: scraper.SchemeHTTP, want: "http://localhost:8080/a?b=c"},
		{name: "already has scheme", hostAndPath: "https://scrapeme.live/shop/", scheme: scraper.SchemeHTTPS, wantErr: true},
		{name: "unknown scheme", hostAndPath: "example.com", scheme: scraper.Scheme("ftp"), wantErr: true},
		{name: "empty scheme", hostAndPath: "example.com", scheme: "", wantErr: true},
		{name: "empty host", hostAndPath: "", scheme: scraper.SchemeHTTPS, wantErr: true},
		{name: "path only", hostAndPath: "/shop/", scheme: scraper.SchemeHTTPS, wantErr: true},
		{name: "unparsable", hostAndPath: "exa mple.com:port/", scheme: scraper.SchemeHTTPS, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scraper.BuildURL(tt.hostAndPath, tt.scheme)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScheme(t *testing.T) {
	s, err := scraper.ParseScheme("HTTPS")
	require.NoError(t, err)
	assert.Equal(t, scraper.SchemeHTTPS, s)

	s, err = scraper.ParseScheme("http")
	require.NoError(t, err)
	assert.Equal(t, scraper.SchemeHTTP, s)

	_, err = scraper.ParseScheme("gopher")
	assert.ErrorIs(t, err, scraper.ErrUnknownScheme)
}

func TestFromURLWithMockFetcher(t *testing.T) {
	fetcher := testutil.NewMockFetcher(t, "https://scrapeme.live/shop/", testutil.ShopHTML)
	resolver := scraper.NewResolver(fetcher)

	doc, err := resolver.FromURL(context.Background(), "scrapeme.live/shop/", scraper.SchemeHTTPS)
	require.NoError(t, err)

	name, err := doc.Text(productTitle)
	require.NoError(t, err)
	assert.Equal(t, "Bulbasaur", name)

	class, err := doc.Attr(productPrice, "class")
	require.NoError(t, err)
	assert.Equal(t, "price", class)

	assert.Equal(t, "https://scrapeme.live/shop/", doc.URL())
	assert.Equal(t, http.StatusOK, doc.StatusCode())
	assert.NotEmpty(t, doc.ID())

	fetcher.AssertExpectations(t)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestFromURLRejectsBadInputWithoutFetching(t *testing.T) {
	fetcher := new(testutil.MockFetcher)
	resolver := scraper.NewResolver(fetcher)

	inputs := []struct {
		hostAndPath string
		scheme      scraper.Scheme
	}{
		{"https://scrapeme.live/shop/", scraper.SchemeHTTPS},
		{"scrapeme.live/shop/", scraper.Scheme("ftp")},
		{"", scraper.SchemeHTTPS},
	}

	for _, in := range inputs {
		_, err := resolver.FromURL(context.Background(), in.hostAndPath, in.scheme)
		require.Error(t, err)
		assert.True(t, scraper.IsTransport(err), in.hostAndPath)
	}
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestFromURLFetchFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	fetcher := new(testutil.MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://unreachable.invalid/").Return(nil, cause)

	_, err := scraper.NewResolver(fetcher).FromURL(context.Background(), "unreachable.invalid/", scraper.SchemeHTTPS)
	require.Error(t, err)
	assert.ErrorIs(t, err, scraper.ErrTransport)
	assert.ErrorIs(t, err, cause)

	var e *scraper.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "https://unreachable.invalid/", e.URL)
}

func TestFromURLNilFetcher(t *testing.T) {
	_, err := scraper.NewResolver(nil).FromURL(context.Background(), "example.com", scraper.SchemeHTTPS)
	assert.ErrorIs(t, err, scraper.ErrTransport)
}

func TestFromURLFailureMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	resolver := scraper.NewResolver(new(testutil.MockFetcher), scraper.WithMetrics(metrics))

	for _, scheme := range []scraper.Scheme{"ftp", "gopher", "FTP", ""} {
		_, err := resolver.FromURL(context.Background(), "example.com/", scheme)
		assert.ErrorIs(t, err, scraper.ErrTransport)
	}

	assert.Equal(t, 4.0, promtest.ToFloat64(metrics.FetchTotal.WithLabelValues(monitoring.SchemeInvalid, monitoring.OutcomeTransport)))
	assert.Equal(t, 1, promtest.CollectAndCount(metrics.FetchTotal))

	unwired := scraper.NewResolver(nil, scraper.WithMetrics(metrics))
	_, err := unwired.FromURL(context.Background(), "example.com/", scraper.SchemeHTTPS)
	assert.ErrorIs(t, err, scraper.ErrTransport)
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.FetchTotal.WithLabelValues("https", monitoring.OutcomeTransport)))
}

func TestFromURLDecoding(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        []byte
		want        string
		wantErr     bool
	}{
		{
			name:        "latin-1 header",
			contentType: "text/html; charset=ISO-8859-1",
			body:        []byte("<p>caf\xe9</p>"),
			want:        "café",
		},
		{
			name:        "meta charset",
			contentType: "text/html",
			body:        []byte(`<html><head><meta charset="koi8-r"></head><body><p>` + "\xd0\xd2\xc9\xd7\xc5\xd4" + `</p></body></html>`),
			want:        "привет",
		},
		{
			name:        "unknown charset",
			contentType: "text/html; charset=x-unknown",
			body:        []byte("<p>x</p>"),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := scraper.FetcherFunc(func(ctx context.Context, rawURL string) (*scraper.Page, error) {
				return &scraper.Page{URL: rawURL, StatusCode: http.StatusOK, ContentType: tt.contentType, Body: tt.body}, nil
			})

			doc, err := scraper.NewResolver(fetcher).FromURL(context.Background(), "example.com/", scraper.SchemeHTTPS)
			if tt.wantErr {
				assert.True(t, scraper.IsTransport(err))
				return
			}
			require.NoError(t, err)

			text, err := doc.Text("p")
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestFromURLWithHTTPServer(t *testing.T) {
	_, host := testutil.NewShopServer(t)

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	client := httpclient.NewClient(httpclient.DefaultConfig())
	resolver := scraper.NewResolver(client, scraper.WithMetrics(metrics))

	doc, err := resolver.FromURL(context.Background(), host+"/shop/", scraper.SchemeHTTP)
	require.NoError(t, err)

	names, err := doc.AllText(productTitle)
	require.NoError(t, err)
	assert.Equal(t, testutil.ShopProducts, names)

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.FetchTotal.WithLabelValues("http", monitoring.OutcomeSuccess)))
	assert.Equal(t, 1, promtest.CollectAndCount(metrics.FetchDuration))

	t.Run("missing page is still a document", func(t *testing.T) {
		doc, err := resolver.FromURL(context.Background(), host+"/missing", scraper.SchemeHTTP)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, doc.StatusCode())
	})

	t.Run("body over limit", func(t *testing.T) {
		cfg := httpclient.DefaultConfig()
		cfg.MaxBodyBytes = 64
		small := scraper.NewResolver(httpclient.NewClient(cfg), scraper.WithMetrics(metrics))

		_, err := small.FromURL(context.Background(), host+"/shop/", scraper.SchemeHTTP)
		assert.ErrorIs(t, err, scraper.ErrTransport)
		assert.ErrorIs(t, err, httpclient.ErrBodyTooLarge)
		assert.Equal(t, 1.0, promtest.ToFloat64(metrics.FetchTotal.WithLabelValues("http", monitoring.OutcomeTransport)))
	})

	t.Run("deadline", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer slow.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := resolver.FromURL(ctx, strings.TrimPrefix(slow.URL, "http://"), scraper.SchemeHTTP)
		assert.ErrorIs(t, err, scraper.ErrTransport)
	})
}

func TestFromURLLogsNonSuccessStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fetcher := scraper.FetcherFunc(func(ctx context.Context, rawURL string) (*scraper.Page, error) {
		return &scraper.Page{URL: rawURL, StatusCode: http.StatusServiceUnavailable, Body: []byte("<p>down</p>")}, nil
	})

	resolver := scraper.NewResolver(fetcher, scraper.WithLogger(zap.New(core)))
	doc, err := resolver.FromURL(context.Background(), "example.com/", scraper.SchemeHTTPS)
	require.NoError(t, err)

	text, err := doc.Text("p")
	require.NoError(t, err)
	assert.Equal(t, "down", text)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, int64(http.StatusServiceUnavailable), fields["status"])
	assert.Equal(t, "scraper", fields[logging.KeyComponent])
	assert.Equal(t, doc.ID().String(), fields[logging.KeyDocumentID])
}
