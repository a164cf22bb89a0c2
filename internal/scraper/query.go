package scraper

import (
	"errors"
	"fmt"

	"github.com/1kawdalg/scr/internal/monitoring"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Query kinds for metrics
const (
	kindCSS   = "css"
	kindXPath = "xpath"
)

// QueryAll returns every element matching selector in document order. No
// match is an empty set, not an error.
func (s *Scraper) QueryAll(selector string) (MatchSet, error) {
	matches, err := findAll(s, s.doc.Selection, "QueryAll", selector)
	s.observe(kindCSS, err)
	return matches, err
}

// QueryOne returns the first element matching selector, or ErrNotFound.
func (s *Scraper) QueryOne(selector string) (*Element, error) {
	el, err := findOne(s, s.doc.Selection, "QueryOne", selector)
	s.observe(kindCSS, err)
	return el, err
}

// AllText returns the inner HTML of every element matching selector.
func (s *Scraper) AllText(selector string) ([]string, error) {
	matches, err := findAll(s, s.doc.Selection, "AllText", selector)
	s.observe(kindCSS, err)
	if err != nil {
		return nil, err
	}
	return matches.InnerHTML(), nil
}

// Text returns the inner HTML of the first element matching selector.
func (s *Scraper) Text(selector string) (string, error) {
	el, err := findOne(s, s.doc.Selection, "Text", selector)
	s.observe(kindCSS, err)
	if err != nil {
		return "", err
	}
	return el.InnerHTML(), nil
}

// Attr returns the named attribute of the first element matching selector.
func (s *Scraper) Attr(selector, name string) (string, error) {
	v, err := s.attr(selector, name)
	s.observe(kindCSS, err)
	return v, err
}

func (s *Scraper) attr(selector, name string) (string, error) {
	el, err := findOne(s, s.doc.Selection, "Attr", selector)
	if err != nil {
		return "", err
	}
	v, ok := el.lookup(name)
	if !ok {
		return "", notFound("Attr", selector, name)
	}
	return v, nil
}

// AllAttrs returns the named attribute of every element matching selector.
//
// The call is all-or-nothing: if any matched element lacks the attribute the
// whole call fails with ErrNotFound naming that match's index. No match at
// all is an empty slice.
func (s *Scraper) AllAttrs(selector, name string) ([]string, error) {
	values, err := allAttrs(s, s.doc.Selection, selector, name)
	s.observe(kindCSS, err)
	return values, err
}

func compile(op, selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, invalidSelector(op, selector, err)
	}
	return sel, nil
}

// findAll matches selector against the descendants of scope. The selector is
// compiled per call and never cached.
func findAll(owner *Scraper, scope *goquery.Selection, op, selector string) (MatchSet, error) {
	sel, err := compile(op, selector)
	if err != nil {
		return nil, err
	}

	found := scope.FindMatcher(sel)
	matches := make(MatchSet, 0, found.Length())
	for _, n := range found.Nodes {
		matches = append(matches, newElement(n, owner))
	}
	return matches, nil
}

func findOne(owner *Scraper, scope *goquery.Selection, op, selector string) (*Element, error) {
	matches, err := findAll(owner, scope, op, selector)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, notFound(op, selector, "")
	}
	return matches[0], nil
}

func allAttrs(owner *Scraper, scope *goquery.Selection, selector, name string) ([]string, error) {
	matches, err := findAll(owner, scope, "AllAttrs", selector)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(matches))
	for i, el := range matches {
		v, ok := el.lookup(name)
		if !ok {
			e := notFound("AllAttrs", selector, name)
			e.Err = fmt.Errorf("match %d of %d has no such attribute", i, len(matches))
			return nil, e
		}
		values = append(values, v)
	}
	return values, nil
}

// observe records the outcome of one public query
func (s *Scraper) observe(kind string, err error) {
	s.metrics.RecordQuery(kind, outcomeOf(err))
}

func outcomeOf(err error) string {
	var e *Error
	switch {
	case err == nil:
		return monitoring.OutcomeSuccess
	case !errors.As(err, &e):
		return monitoring.OutcomeTransport
	case e.Kind == KindInvalidSelector:
		return monitoring.OutcomeInvalidSelector
	case e.Kind == KindNotFound:
		return monitoring.OutcomeNotFound
	default:
		return monitoring.OutcomeTransport
	}
}
