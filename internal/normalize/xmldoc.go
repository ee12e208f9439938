package normalize

import (
	"bytes"
	"encoding/xml"
)

// Node is a navigable XML element. SDMX providers spread the same logical
// content across several namespace versions, so navigation matches on local
// names; the root namespace only matters for dialect detection.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []Node     `xml:",any"`
}

func parseXML(body []byte) (*Node, error) {
	var root Node
	dec := xml.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Local returns the element's local name.
func (n *Node) Local() string {
	return n.XMLName.Local
}

// Attr returns the value of the named attribute, matching by local name.
func (n *Node) Attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(local string) bool {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return true
		}
	}
	return false
}

// Child returns the first direct child with the given local name, or nil.
func (n *Node) Child(local string) *Node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given local name.
func (n *Node) ChildrenNamed(local string) []*Node {
	var out []*Node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// Descendants returns all elements with the given local name anywhere below
// n, in document order.
func (n *Node) Descendants(local string) []*Node {
	var out []*Node
	for i := range n.Children {
		child := &n.Children[i]
		if child.XMLName.Local == local {
			out = append(out, child)
		}
		out = append(out, child.Descendants(local)...)
	}
	return out
}

// localizedText returns the text of the first child with the given local
// name, preferring an English-tagged variant when several languages are
// present. SDMX structure messages repeat Name elements per language.
func (n *Node) localizedText(local string) string {
	var fallback string
	for i := range n.Children {
		child := &n.Children[i]
		if child.XMLName.Local != local {
			continue
		}
		if child.Attr("lang") == "en" {
			return child.Text
		}
		if fallback == "" {
			fallback = child.Text
		}
	}
	return fallback
}
