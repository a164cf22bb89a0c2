package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(mutate func(*Config)) *Client {
	cfg := DefaultConfig()
	cfg.Timeout = 2 * time.Second
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func TestClientGet(t *testing.T) {
	t.Run("reads body, status and content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>ok</body></html>"))
		}))
		defer srv.Close()

		resp, err := newTestClient(nil).Get(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", resp.ContentType)
		assert.Equal(t, "<html><body>ok</body></html>", string(resp.Body))
	})

	t.Run("error status is a response, not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("<h1>missing</h1>"))
		}))
		defer srv.Close()

		resp, err := newTestClient(nil).Get(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "<h1>missing</h1>", string(resp.Body))
	})

	t.Run("sends user agent and closes connection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "scr-test", r.Header.Get("User-Agent"))
			assert.True(t, r.Close)
		}))
		defer srv.Close()

		client := newTestClient(func(c *Config) { c.UserAgent = "scr-test" })
		_, err := client.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	})

	t.Run("does not retry", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		resp, err := newTestClient(nil).Get(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("body limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		}))
		defer srv.Close()

		client := newTestClient(func(c *Config) { c.MaxBodyBytes = 16 })
		_, err := client.Get(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrBodyTooLarge)

		client = newTestClient(func(c *Config) { c.MaxBodyBytes = 64 })
		resp, err := client.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Len(t, resp.Body, 64)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := newTestClient(nil).Get(context.Background(), url)
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer srv.Close()

		client := newTestClient(func(c *Config) { c.Timeout = 50 * time.Millisecond })
		_, err := client.Get(context.Background(), srv.URL)
		assert.Error(t, err)
	})
}

func TestClientRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.Redirect(w, r, "/one", http.StatusFound)
		case "/one":
			http.Redirect(w, r, "/two", http.StatusFound)
		default:
			_, _ = w.Write([]byte("landed"))
		}
	}))
	defer srv.Close()

	t.Run("follows within limit and reports final URL", func(t *testing.T) {
		resp, err := newTestClient(func(c *Config) { c.MaxRedirects = 5 }).Get(context.Background(), srv.URL+"/")
		require.NoError(t, err)
		assert.Equal(t, "landed", string(resp.Body))
		assert.Equal(t, srv.URL+"/two", resp.URL)
	})

	t.Run("stops past limit", func(t *testing.T) {
		_, err := newTestClient(func(c *Config) { c.MaxRedirects = 1 }).Get(context.Background(), srv.URL+"/")
		assert.Error(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		_, err := newTestClient(func(c *Config) { c.MaxRedirects = 0 }).Get(context.Background(), srv.URL+"/")
		assert.Error(t, err)
	})
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<a>Bulbasaur</a>"))
	}))
	defer srv.Close()

	page, err := newTestClient(nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "text/html", page.ContentType)
	assert.Equal(t, "<a>Bulbasaur</a>", string(page.Body))
}

func TestClientDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("file contents"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out.txt")
	resp, err := newTestClient(nil).Download(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file contents", string(data))
}

func TestClientRateLimiting(t *testing.T) {
	t.Run("unlimited by default", func(t *testing.T) {
		client := newTestClient(nil)
		req, err := client.Request(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, req)
	})

	t.Run("context cancellation prevents request", func(t *testing.T) {
		client := newTestClient(func(c *Config) { c.RateLimit = 1 })

		// Drain the single token
		_, err := client.Request(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		req, err := client.Request(ctx)
		assert.Error(t, err)
		assert.Nil(t, req)
	})

	t.Run("fractional rate keeps a burst of one", func(t *testing.T) {
		client := newTestClient(func(c *Config) { c.RateLimit = 0.5 })
		assert.Equal(t, 1, client.Limiter.Burst())
	})
}
