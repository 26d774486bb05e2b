package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// snapshotPage serves structural queries from a static copy of rendered
// markup. It backs the harvester's fallback pathway and the test fixtures.
type snapshotPage struct {
	doc *goquery.Document
}

// NewSnapshotPage parses rendered HTML into a queryable page.
func NewSnapshotPage(markup string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing page snapshot: %w", err)
	}
	return &snapshotPage{doc: doc}, nil
}

func (p *snapshotPage) Query(selector string) ([]Entry, error) {
	var entries []Entry
	p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		entries = append(entries, &snapshotEntry{sel: sel})
	})
	return entries, nil
}

func (p *snapshotPage) Snapshot() (string, error) {
	return p.doc.Html()
}

// snapshotEntry adapts a goquery selection to the Entry surface.
type snapshotEntry struct {
	sel *goquery.Selection
}

func (e *snapshotEntry) Text() (string, error) {
	return renderText(e.sel), nil
}

func (e *snapshotEntry) Attr(name string) string {
	return e.sel.AttrOr(name, "")
}

func (e *snapshotEntry) ChildText(selector string) (string, bool) {
	child := e.sel.Find(selector)
	if child.Length() == 0 {
		return "", false
	}
	return renderText(child.First()), true
}

func (e *snapshotEntry) ChildAttr(selector, attr string) (string, bool) {
	child := e.sel.Find(selector)
	if child.Length() == 0 {
		return "", false
	}
	return child.First().Attr(attr)
}

// renderText approximates a browser's innerText: text nodes concatenated with
// newlines at <br> and block-element boundaries. goquery's own Text() drops
// the line structure the extractor's heuristics depend on.
func renderText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteString("\n")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "div", "p", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("\n")
			}
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}
