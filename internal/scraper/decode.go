package scraper

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// fallbackCharset is what DetermineEncoding reports when it has no evidence
const fallbackCharset = "windows-1252"

// decodeBody converts body to UTF-8 and returns the charset it used.
//
// A charset declared in contentType wins; an unknown declared charset is an
// error. Otherwise a BOM or <meta charset> in the first 1024 bytes decides,
// then UTF-8 validity, then chardet.
func decodeBody(body []byte, contentType string) ([]byte, string, error) {
	if label := declaredCharset(contentType); label != "" {
		enc, name := charset.Lookup(label)
		if enc == nil {
			return nil, "", fmt.Errorf("unsupported charset %q", label)
		}
		return decodeWith(enc, name, body)
	}

	if len(body) == 0 {
		return body, "utf-8", nil
	}

	enc, name, certain := charset.DetermineEncoding(body, "")
	if !certain && name == fallbackCharset {
		if utf8.Valid(body) {
			return body, "utf-8", nil
		}
		if detected, detectedName := detectCharset(body); detected != nil {
			enc, name = detected, detectedName
		}
	}
	return decodeWith(enc, name, body)
}

func decodeWith(enc encoding.Encoding, name string, body []byte) ([]byte, string, error) {
	if name == "utf-8" {
		body = bytes.TrimPrefix(body, utf8BOM)
	}
	if enc == encoding.Nop || (name == "utf-8" && utf8.Valid(body)) {
		return body, name, nil
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", name, err)
	}
	return out, name, nil
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

// detectCharset guesses the charset of body with chardet. It returns nil when
// the guess is not a charset HTML knows.
func detectCharset(body []byte) (encoding.Encoding, string) {
	result, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || result == nil {
		return nil, ""
	}
	return charset.Lookup(strings.ToLower(result.Charset))
}
