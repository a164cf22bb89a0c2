package scraper

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure
type Kind int

const (
	// KindInvalidSelector means the selector or XPath expression did not compile
	KindInvalidSelector Kind = iota + 1
	// KindNotFound means a required element or attribute was absent
	KindNotFound
	// KindTransport means the document or file could not be obtained
	KindTransport
)

// Sentinels for errors.Is
var (
	ErrInvalidSelector = errors.New("invalid selector")
	ErrNotFound        = errors.New("not found")
	ErrTransport       = errors.New("transport error")
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSelector:
		return "invalid_selector"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidSelector:
		return ErrInvalidSelector
	case KindNotFound:
		return ErrNotFound
	case KindTransport:
		return ErrTransport
	default:
		return nil
	}
}

// Error is the structured error returned by every operation in this package
// and by the file downloader.
type Error struct {
	Kind      Kind
	Op        string
	Selector  string
	Attribute string
	URL       string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Selector != "" {
		fmt.Fprintf(&b, " %q", e.Selector)
	}
	if e.Attribute != "" {
		fmt.Fprintf(&b, " attribute %q", e.Attribute)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " %s", e.URL)
	}
	b.WriteString(": ")
	if s := e.Kind.sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of err, or zero when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsInvalidSelector reports whether err is an invalid selector failure
func IsInvalidSelector(err error) bool { return errors.Is(err, ErrInvalidSelector) }

// IsNotFound reports whether err is a not found failure
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsTransport reports whether err is a transport failure
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }

func invalidSelector(op, selector string, cause error) *Error {
	return &Error{Kind: KindInvalidSelector, Op: op, Selector: selector, Err: cause}
}

func notFound(op, selector, attribute string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Selector: selector, Attribute: attribute}
}

// TransportError builds a transport failure for url
func TransportError(op, url string, cause error) *Error {
	return &Error{Kind: KindTransport, Op: op, URL: url, Err: cause}
}
