package scraper

import (
	"strings"

	"github.com/1kawdalg/scr/internal/id"
	"github.com/1kawdalg/scr/internal/monitoring"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Scraper owns one parsed document. The document is never modified after
// construction.
type Scraper struct {
	id         id.DocumentID
	doc        *goquery.Document
	url        string
	statusCode int
	metrics    *monitoring.Metrics
}

// FromFragment parses fragment as HTML in a <body> context. It performs no
// I/O and cannot fail: malformed markup is recovered by the HTML5 parser.
func FromFragment(fragment string) *Scraper {
	return newScraper(parseFragment(fragment), nil)
}

// FromHTML parses a complete HTML document already in memory.
func FromHTML(document string) *Scraper {
	return newScraper(parseDocument(document), nil)
}

func newScraper(root *html.Node, metrics *monitoring.Metrics) *Scraper {
	return &Scraper{
		id:      id.NewDocumentID(),
		doc:     goquery.NewDocumentFromNode(root),
		metrics: metrics,
	}
}

func parseFragment(fragment string) *html.Node {
	root := &html.Node{Type: html.DocumentNode}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

	// ParseFragment only fails on reader errors
	nodes, _ := html.ParseFragment(strings.NewReader(fragment), body)
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root
}

func parseDocument(document string) *html.Node {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return &html.Node{Type: html.DocumentNode}
	}
	return root
}

// ID identifies this document in logs
func (s *Scraper) ID() id.DocumentID {
	return s.id
}

// URL returns the final URL the document was fetched from, or "" for
// documents parsed from memory.
func (s *Scraper) URL() string {
	return s.url
}

// StatusCode returns the HTTP status of the fetch, or 0 for documents parsed
// from memory.
func (s *Scraper) StatusCode() int {
	return s.statusCode
}

// HTML renders the whole document
func (s *Scraper) HTML() string {
	out, err := goquery.OuterHtml(s.doc.Selection)
	if err != nil {
		return ""
	}
	return out
}

// Title returns the trimmed text of the document's <title>, if any
func (s *Scraper) Title() string {
	return strings.TrimSpace(s.doc.Find("title").First().Text())
}
