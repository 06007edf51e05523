package scanner

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// looksLikeHTMLDocument reports whether a 2xx body is actually an HTML
// page. SPA hosts commonly answer every path with the app shell, which
// must not count as a found technical file.
func looksLikeHTMLDocument(body []byte) bool {
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html")
}

// htmlTitle extracts the page title from an HTML body for the warning
// message, best effort.
func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
