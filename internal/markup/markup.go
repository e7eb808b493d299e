package markup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page
type Document struct {
	doc *goquery.Document
}

// Parse builds a queryable tree from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// ParseBytes is Parse over an in-memory page.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() Node {
	return Node{sel: d.doc.Selection}
}

// All is shorthand for d.Root().All(selector).
func (d *Document) All(selector string) []Node {
	return d.Root().All(selector)
}

// Find is shorthand for d.Root().Find(selector).
func (d *Document) Find(selector string) Node {
	return d.Root().Find(selector)
}

// Node is a set of zero or more elements. The zero value is an empty set.
type Node struct {
	sel *goquery.Selection
}

func (n Node) selection() *goquery.Selection {
	if n.sel == nil {
		return &goquery.Selection{}
	}
	return n.sel
}

// All returns every descendant matching selector, in document order.
func (n Node) All(selector string) []Node {
	matches := n.selection().Find(selector)
	nodes := make([]Node, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, Node{sel: s})
	})
	return nodes
}

// Find returns all descendants matching selector as a single Node.
// Its Text is the concatenated text of every match.
func (n Node) Find(selector string) Node {
	return Node{sel: n.selection().Find(selector)}
}

// First returns the first descendant matching selector.
func (n Node) First(selector string) Node {
	return Node{sel: n.selection().Find(selector).First()}
}

// Text returns the trimmed inner text.
func (n Node) Text() string {
	return strings.TrimSpace(n.selection().Text())
}

// Attr returns an attribute of the first element in the set.
func (n Node) Attr(name string) (string, bool) {
	return n.selection().Attr(name)
}

// Has reports whether any descendant matches selector.
func (n Node) Has(selector string) bool {
	return n.selection().Find(selector).Length() > 0
}

// Exists reports whether the set holds at least one element.
func (n Node) Exists() bool {
	return n.Len() > 0
}

// Len returns the number of elements in the set.
func (n Node) Len() int {
	return n.selection().Length()
}
