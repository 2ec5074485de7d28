// Package editor applies structural edits to page content fragments.
//
// An Editor owns the parse tree of one HTML fragment for the lifetime of a
// single edit: load, mutate, serialize, discard. It never persists anything;
// callers store the serialized string themselves.
package editor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Editor holds the mutable parse tree of one page content fragment.
type Editor struct {
	container *html.Node
	empty     bool
}

// Element references one element inside an Editor's tree, located by its id
// attribute.
type Element struct {
	node *html.Node
}

// Valid reports whether the element references a node.
func (e Element) Valid() bool {
	return e.node != nil
}

// Parse builds an editor from raw page content. Blank or unparseable input
// yields an empty editor; callers must treat that as "nothing to edit"
// rather than an error.
func Parse(content string) *Editor {
	if strings.TrimSpace(content) == "" {
		return &Editor{empty: true}
	}
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil || len(nodes) == 0 {
		return &Editor{empty: true}
	}
	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, node := range nodes {
		container.AppendChild(node)
	}
	return &Editor{container: container}
}

// IsEmpty reports whether the editor holds no parsed content.
func (e *Editor) IsEmpty() bool {
	return e == nil || e.empty || e.container == nil
}

// FindElementByID locates the element carrying the given id attribute. The
// search is structural, so ids appearing inside text or attribute values
// never match. The first element in document order wins; id uniqueness is
// the producer's responsibility, not enforced here.
func (e *Editor) FindElementByID(elementID string) Element {
	if e.IsEmpty() || elementID == "" {
		return Element{}
	}
	var walk func(node *html.Node) *html.Node
	walk = func(node *html.Node) *html.Node {
		if node.Type == html.ElementNode && attrValue(node, "id") == elementID {
			return node
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if found := walk(child); found != nil {
				return found
			}
		}
		return nil
	}
	for child := e.container.FirstChild; child != nil; child = child.NextSibling {
		if found := walk(child); found != nil {
			return Element{node: found}
		}
	}
	return Element{}
}

// IsTypeOf reports whether typeClass appears as a whitespace-delimited token
// in the element's class attribute.
func (e *Editor) IsTypeOf(element Element, typeClass string) bool {
	if !element.Valid() || typeClass == "" {
		return false
	}
	for _, token := range strings.Fields(attrValue(element.node, "class")) {
		if token == typeClass {
			return true
		}
	}
	return false
}

// SetContent replaces the element's inner markup verbatim. The new markup is
// not re-validated or re-escaped; that is the caller's responsibility.
func (e *Editor) SetContent(element Element, rawHTML string) {
	if !element.Valid() {
		return
	}
	for element.node.FirstChild != nil {
		element.node.RemoveChild(element.node.FirstChild)
	}
	if rawHTML == "" {
		return
	}
	element.node.AppendChild(&html.Node{Type: html.RawNode, Data: rawHTML})
}

// DeleteElement detaches the element and its subtree from the document.
func (e *Editor) DeleteElement(element Element) {
	if !element.Valid() || element.node.Parent == nil {
		return
	}
	element.node.Parent.RemoveChild(element.node)
}

// Serialize renders the current tree back to an HTML string. Parsing the
// output yields a structurally identical tree.
func (e *Editor) Serialize() (string, error) {
	if e.IsEmpty() {
		return "", nil
	}
	var b strings.Builder
	for child := e.container.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&b, child); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func attrValue(node *html.Node, name string) string {
	for _, attr := range node.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func setAttr(node *html.Node, name string, value string) {
	for i, attr := range node.Attr {
		if attr.Key == name {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(node *html.Node, name string) {
	for i, attr := range node.Attr {
		if attr.Key == name {
			node.Attr = append(node.Attr[:i], node.Attr[i+1:]...)
			return
		}
	}
}
