package tedxml

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
)

// node is a minimal element tree. Tags and attribute names are local
// names only; the notice schemas mix namespaces freely and every lookup
// the parsers need is unambiguous without them
type node struct {
	tag      string
	attrs    map[string]string
	text     string
	children []*node
}

// parseTree builds the element tree for one notice document
func parseTree(doc []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	dec.CharsetReader = passthroughCharset
	dec.Strict = true

	var root *node
	var stack []*node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeParse, "notice xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{tag: t.Name.Local}
			if len(t.Attr) > 0 {
				n.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, perr.Parsef("notice xml: multiple root elements")
				}
				root = n
			} else {
				p := stack[len(stack)-1]
				p.children = append(p.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}

	if root == nil {
		return nil, perr.Parsef("notice xml: no root element")
	}
	return root, nil
}

// attr returns the named attribute or ""
func (n *node) attr(name string) string {
	if n == nil {
		return ""
	}
	return n.attrs[name]
}

// trimmed returns the element text with surrounding whitespace removed
func (n *node) trimmed() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.text)
}

// child returns the first direct child with the given local name
func (n *node) child(tag string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.tag == tag {
			return c
		}
	}
	return nil
}

// childAll returns every direct child with the given local name
func (n *node) childAll(tag string) []*node {
	if n == nil {
		return nil
	}
	var out []*node
	for _, c := range n.children {
		if c.tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// findAll returns every element matching path: any descendant whose local
// name is path[0], then direct children down the remaining steps. This is
// the `.//A/B/C` shape both notice schemas are queried with
func (n *node) findAll(path ...string) []*node {
	if n == nil || len(path) == 0 {
		return nil
	}
	var heads []*node
	n.descendants(path[0], &heads)

	cur := heads
	for _, step := range path[1:] {
		var next []*node
		for _, c := range cur {
			next = append(next, c.childAll(step)...)
		}
		cur = next
	}
	return cur
}

// find returns the first element matching path, in document order
func (n *node) find(path ...string) *node {
	all := n.findAll(path...)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// descendants collects every descendant (excluding n itself) with the
// given local name, in document order
func (n *node) descendants(tag string, out *[]*node) {
	for _, c := range n.children {
		if c.tag == tag {
			*out = append(*out, c)
		}
		c.descendants(tag, out)
	}
}
