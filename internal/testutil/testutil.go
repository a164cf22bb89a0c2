// Package testutil provides fixtures and mocks shared by package tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/1kawdalg/scr/internal/scraper"
	"github.com/stretchr/testify/mock"
)

// ShopHTML mirrors the product listing of scrapeme.live/shop/
const ShopHTML = `<!DOCTYPE html>
<html lang="en-GB">
<head>
	<meta charset="UTF-8">
	<title>Products – ScrapeMe</title>
</head>
<body class="archive post-type-archive">
	<div id="page" class="hfeed site">
		<header id="masthead" class="site-header">
			<a class="site-title" href="https://scrapeme.live/">ScrapeMe</a>
		</header>
		<div id="primary" class="content-area">
			<main id="main" class="site-main" role="main">
				<ul class="products columns-4">
					<li class="post-759 product type-product status-publish first instock">
						<a href="https://scrapeme.live/shop/Bulbasaur/" class="woocommerce-LoopProduct-link"><img src="https://scrapeme.live/wp-content/uploads/2018/08/001.png" alt="" width="324" height="324"><h2 class="woocommerce-loop-product__title">Bulbasaur</h2>
							<span class="price"><span class="woocommerce-Price-amount amount"><span class="woocommerce-Price-currencySymbol">&pound;</span>63.00</span></span>
						</a>
					</li>
					<li class="post-730 product type-product status-publish instock">
						<a href="https://scrapeme.live/shop/Ivysaur/" class="woocommerce-LoopProduct-link"><img src="https://scrapeme.live/wp-content/uploads/2018/08/002.png" alt="" width="324" height="324"><h2 class="woocommerce-loop-product__title">Ivysaur</h2>
							<span class="price"><span class="woocommerce-Price-amount amount"><span class="woocommerce-Price-currencySymbol">&pound;</span>87.00</span></span>
						</a>
					</li>
					<li class="post-731 product type-product status-publish instock">
						<a href="https://scrapeme.live/shop/Venusaur/" class="woocommerce-LoopProduct-link"><img src="https://scrapeme.live/wp-content/uploads/2018/08/003.png" alt="" width="324" height="324"><h2 class="woocommerce-loop-product__title">Venusaur</h2>
							<span class="price"><span class="woocommerce-Price-amount amount"><span class="woocommerce-Price-currencySymbol">&pound;</span>105.00</span></span>
						</a>
					</li>
				</ul>
			</main>
		</div>
	</div>
</body>
</html>`

// ShopProducts are the product names of ShopHTML in document order
var ShopProducts = []string{"Bulbasaur", "Ivysaur", "Venusaur"}

// MockFetcher is a testify mock of scraper.Fetcher.
type MockFetcher struct {
	mock.Mock
}

// Fetch mocks the Fetch method.
func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (*scraper.Page, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scraper.Page), args.Error(1)
}

// NewMockFetcher creates a mock that serves body as text/html for rawURL.
func NewMockFetcher(t *testing.T, rawURL, body string) *MockFetcher {
	t.Helper()
	m := new(MockFetcher)
	m.On("Fetch", mock.Anything, rawURL).Return(&scraper.Page{
		URL:         rawURL,
		StatusCode:  http.StatusOK,
		ContentType: "text/html; charset=UTF-8",
		Body:        []byte(body),
	}, nil)
	return m
}

// NewShopServer starts an httptest server serving ShopHTML under /shop/.
// It returns the server and its host:port for scheme-less URLs.
func NewShopServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/shop/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		_, _ = w.Write([]byte(ShopHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, strings.TrimPrefix(srv.URL, "http://")
}
