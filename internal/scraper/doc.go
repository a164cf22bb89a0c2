// Package scraper parses HTML into an immutable document and answers CSS
// selector and XPath queries against it.
//
// A Scraper owns one parsed document. It is created by:
//   - Resolver.FromURL: one GET through an injected Fetcher, charset decoding, parse
//   - FromFragment: an HTML fragment parsed in a <body> context, no I/O
//   - FromHTML: a complete document already in memory, no I/O
//
// Queries never mutate the document, so a Scraper is safe for concurrent
// readers. Match sets are returned in document order; the first entry is the
// primary result.
//
// Built on:
//   - goquery and cascadia: CSS selectors
//   - htmlquery and antchfx/xpath: XPath expressions
//   - x/net/html/charset and chardet: body decoding
//   - bluemonday: sanitized inner HTML
//
// Every failure is a *Error of one of three kinds, matched with errors.Is
// against ErrInvalidSelector, ErrNotFound or ErrTransport.
//
// Example Usage:
//
//	resolver := scraper.NewResolver(httpclient.NewClient(httpclient.DefaultConfig()))
//	doc, err := resolver.FromURL(ctx, "scrapeme.live/shop/", scraper.SchemeHTTPS)
//	if err != nil {
//		return err
//	}
//	names, err := doc.AllText("main#main>ul>li.product>a>h2")
package scraper
