package scraper_test

import (
	"testing"

	"github.com/1kawdalg/scr/internal/scraper"
	"github.com/1kawdalg/scr/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPath(t *testing.T) {
	doc := scraper.FromHTML(testutil.ShopHTML)

	t.Run("all in document order", func(t *testing.T) {
		matches, err := doc.XPathAll("//main[@id='main']/ul/li[contains(@class,'product')]/a/h2")
		require.NoError(t, err)
		assert.Equal(t, testutil.ShopProducts, matches.InnerHTML())
	})

	t.Run("matches css", func(t *testing.T) {
		byXPath, err := doc.XPathAll("//li[contains(@class,'product')]/a/span")
		require.NoError(t, err)
		byCSS, err := doc.QueryAll(productPrice)
		require.NoError(t, err)
		assert.Equal(t, byCSS.InnerHTML(), byXPath.InnerHTML())
	})

	t.Run("one", func(t *testing.T) {
		el, err := doc.XPathOne("//h2")
		require.NoError(t, err)
		assert.Equal(t, "Bulbasaur", el.InnerHTML())

		class, err := el.Attr("class")
		require.NoError(t, err)
		assert.Equal(t, "woocommerce-loop-product__title", class)
	})

	t.Run("union is returned in document order", func(t *testing.T) {
		matches, err := doc.XPathAll("//h2 | //title")
		require.NoError(t, err)
		require.Len(t, matches, 4)
		assert.Equal(t, "title", matches[0].Tag())
		assert.Equal(t, "h2", matches[1].Tag())
	})

	t.Run("non-element results are skipped", func(t *testing.T) {
		matches, err := doc.XPathAll("//h2/@class")
		require.NoError(t, err)
		assert.Empty(t, matches)

		matches, err = doc.XPathAll("//h2/text()")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("invalid expression", func(t *testing.T) {
		_, err := doc.XPathAll("//li[")
		assert.ErrorIs(t, err, scraper.ErrInvalidSelector)

		_, err = doc.XPathOne("")
		assert.ErrorIs(t, err, scraper.ErrInvalidSelector)
	})

	t.Run("not found", func(t *testing.T) {
		all, err := doc.XPathAll("//table")
		require.NoError(t, err)
		assert.Empty(t, all)

		_, err = doc.XPathOne("//table")
		assert.ErrorIs(t, err, scraper.ErrNotFound)
	})
}
