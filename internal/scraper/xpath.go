package scraper

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// XPathAll evaluates expr against the document and returns the element nodes
// it selects, in document order. Text and attribute results are skipped.
func (s *Scraper) XPathAll(expr string) (MatchSet, error) {
	matches, err := s.xpathAll("XPathAll", expr)
	s.observe(kindXPath, err)
	return matches, err
}

// XPathOne returns the first element selected by expr, or ErrNotFound.
func (s *Scraper) XPathOne(expr string) (*Element, error) {
	matches, err := s.xpathAll("XPathOne", expr)
	if err == nil && len(matches) == 0 {
		err = notFound("XPathOne", expr, "")
	}
	s.observe(kindXPath, err)
	if err != nil {
		return nil, err
	}
	return matches[0], nil
}

func (s *Scraper) xpathAll(op, expr string) (matches MatchSet, err error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, invalidSelector(op, expr, err)
	}

	// some type errors only surface during evaluation, as panics
	defer func() {
		if r := recover(); r != nil {
			matches, err = nil, invalidSelector(op, expr, fmt.Errorf("%v", r))
		}
	}()

	selected := make(map[*html.Node]struct{})
	iter := compiled.Select(htmlquery.CreateXPathNavigator(s.root()))
	for iter.MoveNext() {
		nav, ok := iter.Current().(*htmlquery.NodeNavigator)
		if !ok || nav.NodeType() != xpath.ElementNode {
			continue
		}
		selected[nav.Current()] = struct{}{}
	}

	matches = make(MatchSet, 0, len(selected))
	walk(s.root(), func(n *html.Node) {
		if _, ok := selected[n]; ok {
			matches = append(matches, newElement(n, s))
		}
	})
	return matches, nil
}

func (s *Scraper) root() *html.Node {
	return s.doc.Nodes[0]
}

// walk visits n and its descendants in document order
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}
