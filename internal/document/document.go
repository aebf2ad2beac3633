// Package document models a page snapshot as an element tree and answers
// visibility queries over it.
package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Node is an element or text node of a page snapshot.
type Node struct {
	Tag      string
	Text     string
	Attrs    map[string]string
	Children []*Node
}

// TextElement is one visible textual element in document order.
type TextElement struct {
	Text  string
	Order int
}

var textualTags = map[string]struct{}{
	"p": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {}, "article": {},
}

// Subtrees the browser never renders.
var unrenderedTags = map[string]struct{}{
	"head": {}, "script": {}, "style": {}, "template": {}, "noscript": {},
}

// Load reads a snapshot from disk. HTML files are parsed as markup, anything
// else as plain text.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return Parse(bytes.NewReader(data))
	default:
		return FromText(string(data)), nil
	}
}

// Parse builds a tree from HTML markup.
func Parse(r io.Reader) (*Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return convert(root), nil
}

func convert(n *html.Node) *Node {
	out := &Node{}
	switch n.Type {
	case html.TextNode:
		out.Text = n.Data
		return out
	case html.ElementNode:
		out.Tag = strings.ToLower(n.Data)
		if len(n.Attr) > 0 {
			out.Attrs = make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				out.Attrs[strings.ToLower(a.Key)] = a.Val
			}
		}
	case html.DocumentNode:
	default:
		// Comments and doctypes carry no text content.
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := convert(c); child != nil {
			out.Children = append(out.Children, child)
		}
	}
	return out
}

// FromText builds a tree with one paragraph per blank-line separated block.
func FromText(s string) *Node {
	root := &Node{Tag: "body"}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, block := range strings.Split(s, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		root.Children = append(root.Children, &Node{
			Tag:      "p",
			Children: []*Node{{Text: block}},
		})
	}
	return root
}

// TextContent concatenates every descendant text node, hidden ones included.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	if n.Tag == "" {
		b.WriteString(n.Text)
	}
	for _, c := range n.Children {
		c.writeText(b)
	}
}

// IsTextual reports whether the element is one of the textual kinds.
func (n *Node) IsTextual() bool {
	_, ok := textualTags[n.Tag]
	return ok
}

// VisibleTextualElements returns every visible textual element with
// non-empty text, in document order. Nested textual elements each appear.
func (n *Node) VisibleTextualElements() []TextElement {
	var out []TextElement
	n.walk(true, true, func(el *Node) {
		if !el.IsTextual() {
			return
		}
		text := strings.TrimSpace(el.TextContent())
		if text == "" {
			return
		}
		out = append(out, TextElement{Text: text, Order: len(out)})
	})
	return out
}

// walk visits visible elements in pre-order. displayed is false once an
// ancestor is display:none; shown tracks the inherited visibility value.
func (n *Node) walk(displayed, shown bool, visit func(*Node)) {
	if n.Tag == "" && n.Children == nil {
		return
	}
	if _, skip := unrenderedTags[n.Tag]; skip {
		return
	}
	if n.Tag != "" {
		displayed = displayed && !n.displayNone()
		if !displayed {
			return
		}
		if v, ok := n.visibility(); ok {
			shown = v
		}
		if shown {
			visit(n)
		}
	}
	for _, c := range n.Children {
		c.walk(displayed, shown, visit)
	}
}

// Visible reports whether the element would be rendered on its own, ignoring
// ancestors.
func (n *Node) Visible() bool {
	if n.Tag == "" {
		return strings.TrimSpace(n.Text) != ""
	}
	if n.displayNone() {
		return false
	}
	if v, ok := n.visibility(); ok && !v {
		return false
	}
	return strings.TrimSpace(n.TextContent()) != ""
}

func (n *Node) displayNone() bool {
	if _, ok := n.Attrs["hidden"]; ok {
		return true
	}
	return styleValue(n.Attrs["style"], "display") == "none"
}

func (n *Node) visibility() (bool, bool) {
	switch styleValue(n.Attrs["style"], "visibility") {
	case "hidden", "collapse":
		return false, true
	case "visible":
		return true, true
	default:
		return false, false
	}
}

// styleValue returns the last declared value of prop in an inline style.
func styleValue(style, prop string) string {
	value := ""
	for _, decl := range strings.Split(style, ";") {
		name, val, ok := strings.Cut(decl, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), prop) {
			continue
		}
		val = strings.TrimSpace(strings.ToLower(val))
		val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
		value = val
	}
	return value
}
