// Package httpclient provides the default transport behind document fetches
// and file downloads.
//
// Built on go-resty/resty with a go-cleanhttp transport:
//   - One round trip per call: retries are disabled
//   - Keep-alives disabled, so no connection is reused across calls
//   - Bounded redirect following
//   - Response body size limit for document fetches, after gzip/zstd decoding
//   - Optional client-side rate limiting (golang.org/x/time/rate)
//
// Example Usage:
//
//	client := httpclient.NewClient(httpclient.DefaultConfig())
//	resp, err := client.Get(ctx, "https://scrapeme.live/shop/")
package httpclient
