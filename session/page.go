package session

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"celcat-sync/scraper"
)

// Per-element reads get a short timeout of their own: a block that vanished
// in a re-render should skip that entry, not stall the whole harvest.
var entryReadTimeout = playwright.Float(2000)

// renderedPage adapts the live playwright page to the scraper's query surface.
type renderedPage struct {
	page playwright.Page
}

func (p *renderedPage) Query(selector string) ([]scraper.Entry, error) {
	locators, err := p.page.Locator(selector).All()
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", selector, err)
	}
	entries := make([]scraper.Entry, 0, len(locators))
	for _, loc := range locators {
		entries = append(entries, &renderedEntry{loc: loc})
	}
	return entries, nil
}

func (p *renderedPage) Snapshot() (string, error) {
	return p.page.Content()
}

// renderedEntry adapts a playwright locator to the Entry surface.
type renderedEntry struct {
	loc playwright.Locator
}

func (e *renderedEntry) Text() (string, error) {
	// InnerText keeps the line structure the extractor heuristics rely on.
	text, err := e.loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: entryReadTimeout})
	if err != nil {
		return "", fmt.Errorf("reading entry text: %w", err)
	}
	return text, nil
}

func (e *renderedEntry) Attr(name string) string {
	val, err := e.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: entryReadTimeout})
	if err != nil {
		return ""
	}
	return val
}

func (e *renderedEntry) ChildText(selector string) (string, bool) {
	child := e.loc.Locator(selector)
	if n, err := child.Count(); err != nil || n == 0 {
		return "", false
	}
	text, err := child.First().InnerText(playwright.LocatorInnerTextOptions{Timeout: entryReadTimeout})
	if err != nil {
		return "", false
	}
	return text, true
}

func (e *renderedEntry) ChildAttr(selector, attr string) (string, bool) {
	child := e.loc.Locator(selector)
	if n, err := child.Count(); err != nil || n == 0 {
		return "", false
	}
	val, err := child.First().GetAttribute(attr, playwright.LocatorGetAttributeOptions{Timeout: entryReadTimeout})
	if err != nil || val == "" {
		return "", false
	}
	return val, true
}
