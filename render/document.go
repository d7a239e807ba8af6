package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

//go:embed page.html
var DefaultPage []byte

// Document is HTML page used as display surface. Targets are elements with
// matching id attribute.
type Document struct {
	root *html.Node
	byID map[string]*html.Node
}

// ParseDocument parses HTML page and indexes its elements by id. When id is
// repeated first element in document order wins.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse page: %w", err)
	}
	d := &Document{root: root, byID: make(map[string]*html.Node)}
	for n := range root.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		if id, ok := attr(n, "id"); ok && len(id) > 0 {
			if _, seen := d.byID[id]; !seen {
				d.byID[id] = n
			}
		}
	}
	return d, nil
}

// Target implements Surface.
func (d *Document) Target(name string) (Target, bool) {
	n, ok := d.byID[name]
	if !ok {
		return nil, false
	}
	return &element{n: n}, true
}

// Render writes the page.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Bytes returns rendered page.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type element struct {
	n *html.Node
}

func (e *element) removeChildren() {
	for c := e.n.FirstChild; c != nil; c = e.n.FirstChild {
		e.n.RemoveChild(c)
	}
}

func (e *element) SetText(text string) {
	e.removeChildren()
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (e *element) SetHTML(markup string) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.n)
	if err != nil {
		// html parser does not fail on malformed markup, only on reader
		// errors which strings.Reader does not produce
		e.SetText(markup)
		return
	}
	e.removeChildren()
	for _, c := range nodes {
		e.n.AppendChild(c)
	}
}

func (e *element) SetAttr(name, value string) {
	for i := range e.n.Attr {
		if e.n.Attr[i].Namespace == "" && e.n.Attr[i].Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// SetVisible sets display property of inline style keeping other
// declarations.
func (e *element) SetVisible(visible bool) {
	display := "display: none"
	if visible {
		display = "display: block"
	}
	style, _ := attr(e.n, "style")
	decls := []string{}
	for decl := range strings.SplitSeq(style, ";") {
		decl = strings.TrimSpace(decl)
		if len(decl) == 0 {
			continue
		}
		prop, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(prop), "display") {
			continue
		}
		decls = append(decls, decl)
	}
	e.SetAttr("style", strings.Join(append(decls, display), "; "))
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
