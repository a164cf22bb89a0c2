package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var sanitizer = bluemonday.UGCPolicy()

// Element is a read-only handle to one element node inside a Scraper's
// document. It does not copy the subtree and is valid as long as the
// Scraper is reachable.
type Element struct {
	node  *html.Node
	owner *Scraper
}

// MatchSet holds query results in document order
type MatchSet []*Element

// First returns the primary result, or nil for an empty set
func (m MatchSet) First() *Element {
	if len(m) == 0 {
		return nil
	}
	return m[0]
}

// Len returns the number of matches
func (m MatchSet) Len() int {
	return len(m)
}

// InnerHTML returns each element's inner markup
func (m MatchSet) InnerHTML() []string {
	out := make([]string, len(m))
	for i, el := range m {
		out[i] = el.InnerHTML()
	}
	return out
}

func newElement(n *html.Node, owner *Scraper) *Element {
	return &Element{node: n, owner: owner}
}

func (e *Element) selection() *goquery.Selection {
	return &goquery.Selection{Nodes: []*html.Node{e.node}}
}

// Document returns the Scraper that owns this element
func (e *Element) Document() *Scraper {
	return e.owner
}

// Tag returns the lower-case tag name
func (e *Element) Tag() string {
	return e.node.Data
}

// InnerHTML returns the serialized markup between the element's start and
// end tags. Text is not unescaped: "a &amp; b" stays as written.
func (e *Element) InnerHTML() string {
	// rendering into a strings.Builder does not fail
	out, _ := e.selection().Html()
	return out
}

// OuterHTML returns the serialized element including its own tags
func (e *Element) OuterHTML() string {
	out, _ := goquery.OuterHtml(e.selection())
	return out
}

// TextContent returns the concatenated text of all descendant text nodes
func (e *Element) TextContent() string {
	return e.selection().Text()
}

// SanitizedHTML returns the inner markup with scripts, event handlers and
// other unsafe content removed.
func (e *Element) SanitizedHTML() string {
	return sanitizer.Sanitize(e.InnerHTML())
}

// Attr returns the value of the named attribute. An absent attribute is
// ErrNotFound; an attribute present with an empty value is "".
func (e *Element) Attr(name string) (string, error) {
	if v, ok := e.lookup(name); ok {
		return v, nil
	}
	return "", notFound("Attr", "", name)
}

// AttrOr returns the named attribute or fallback when it is absent
func (e *Element) AttrOr(name, fallback string) string {
	if v, ok := e.lookup(name); ok {
		return v
	}
	return fallback
}

// HasAttr reports whether the named attribute is present
func (e *Element) HasAttr(name string) bool {
	_, ok := e.lookup(name)
	return ok
}

// Attrs returns a copy of the element's attributes in source order
func (e *Element) Attrs() []html.Attribute {
	out := make([]html.Attribute, len(e.node.Attr))
	copy(out, e.node.Attr)
	return out
}

func (e *Element) lookup(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.node.Attr {
		if a.Namespace == "" && strings.ToLower(a.Key) == name {
			return a.Val, true
		}
	}
	return "", false
}

// QueryAll returns the descendants of e matching selector
func (e *Element) QueryAll(selector string) (MatchSet, error) {
	matches, err := findAll(e.owner, e.selection(), "QueryAll", selector)
	e.owner.observe(kindCSS, err)
	return matches, err
}

// QueryOne returns the first descendant of e matching selector
func (e *Element) QueryOne(selector string) (*Element, error) {
	el, err := findOne(e.owner, e.selection(), "QueryOne", selector)
	e.owner.observe(kindCSS, err)
	return el, err
}

// AllText returns the inner HTML of every descendant matching selector
func (e *Element) AllText(selector string) ([]string, error) {
	matches, err := findAll(e.owner, e.selection(), "AllText", selector)
	e.owner.observe(kindCSS, err)
	if err != nil {
		return nil, err
	}
	return matches.InnerHTML(), nil
}

// AllAttrs returns the named attribute of every descendant matching
// selector. See Scraper.AllAttrs.
func (e *Element) AllAttrs(selector, name string) ([]string, error) {
	values, err := allAttrs(e.owner, e.selection(), selector, name)
	e.owner.observe(kindCSS, err)
	return values, err
}
