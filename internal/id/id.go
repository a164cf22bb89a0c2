// Package id generates identifiers for scraped documents and downloads.
//
// IDs are prefixed ULIDs (doc_*, dl_*). They sort by creation time, and IDs
// minted in the same millisecond still sort in creation order because the
// entropy source is monotonic. Log lines for one document are then easy to
// follow.
package id

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	DocumentPrefix = "doc"
	DownloadPrefix = "dl"
)

// ErrMalformed is returned when a string is not a prefixed ULID
var ErrMalformed = errors.New("malformed id")

// DocumentID identifies a parsed document owned by one Scraper
type DocumentID string

// DownloadID identifies a single file retrieval
type DownloadID string

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

func next(prefix string, now time.Time) string {
	mu.Lock()
	u := ulid.MustNew(ulid.Timestamp(now), entropy)
	mu.Unlock()
	return prefix + "_" + u.String()
}

// NewDocumentID mints a document ID
func NewDocumentID() DocumentID {
	return DocumentID(next(DocumentPrefix, time.Now()))
}

// NewDownloadID mints a download ID
func NewDownloadID() DownloadID {
	return DownloadID(next(DownloadPrefix, time.Now()))
}

func (d DocumentID) String() string { return string(d) }
func (d DownloadID) String() string { return string(d) }

// Time returns when the document ID was minted
func (d DocumentID) Time() (time.Time, error) {
	return timeOf(DocumentPrefix, string(d))
}

// Time returns when the download ID was minted
func (d DownloadID) Time() (time.Time, error) {
	return timeOf(DownloadPrefix, string(d))
}

// ParseDocumentID validates s as a document ID
func ParseDocumentID(s string) (DocumentID, error) {
	if _, err := split(DocumentPrefix, s); err != nil {
		return "", err
	}
	return DocumentID(s), nil
}

// ParseDownloadID validates s as a download ID
func ParseDownloadID(s string) (DownloadID, error) {
	if _, err := split(DownloadPrefix, s); err != nil {
		return "", err
	}
	return DownloadID(s), nil
}

func split(prefix, s string) (ulid.ULID, error) {
	raw, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return ulid.ULID{}, fmt.Errorf("%w: %q lacks prefix %q", ErrMalformed, s, prefix)
	}
	u, err := ulid.ParseStrict(raw)
	if err != nil {
		return ulid.ULID{}, fmt.Errorf("%w: %q: %v", ErrMalformed, s, err)
	}
	return u, nil
}

func timeOf(prefix, s string) (time.Time, error) {
	u, err := split(prefix, s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
