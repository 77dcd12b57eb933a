// Package htmldoc wraps antchfx/htmlquery behind a small document-query API.
// The scraper core never touches parse trees directly; it asks a Document for
// the string values matched by an XPath expression.
package htmldoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// CheckExpr compiles expr and reports whether it is a valid XPath expression.
// Configured selectors are checked once at startup so a typo fails the run
// before any page is fetched.
func CheckExpr(expr string) error {
	if _, err := xpath.Compile(expr); err != nil {
		return fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return nil
}

// Document is a parsed HTML page queryable by XPath.
type Document struct {
	root *html.Node
}

// Parse builds a Document from raw markup. The underlying parser is lenient
// and accepts the tag soup real listing sites serve.
func Parse(body []byte) (*Document, error) {
	root, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// Values returns the trimmed string value of every node matched by expr.
// Attribute selections (e.g. //a/@href) yield the attribute value, element
// selections yield the inner text.
func (d *Document) Values(expr string) ([]string, error) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", expr, err)
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, strings.TrimSpace(htmlquery.InnerText(n)))
	}
	return out, nil
}

// First returns the value of the first match of expr, or false when expr
// matches nothing.
func (d *Document) First(expr string) (string, bool, error) {
	node, err := htmlquery.Query(d.root, expr)
	if err != nil {
		return "", false, fmt.Errorf("query %q: %w", expr, err)
	}
	if node == nil {
		return "", false, nil
	}
	return strings.TrimSpace(htmlquery.InnerText(node)), true, nil
}

// Matches reports whether expr selects at least one node.
func (d *Document) Matches(expr string) (bool, error) {
	node, err := htmlquery.Query(d.root, expr)
	if err != nil {
		return false, fmt.Errorf("query %q: %w", expr, err)
	}
	return node != nil, nil
}

// Root exposes the parse tree for extractors that need more than string
// values.
func (d *Document) Root() *html.Node {
	return d.root
}
