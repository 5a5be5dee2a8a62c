package richtext

import "github.com/weirin1/html/pkg/ordered"

// TextType is the type discriminator of text nodes.
const TextType = "text"

// Attrs is an insertion-ordered attribute map.
type Attrs = ordered.Map

// Node is an output node: either *Element or *Text.
type Node interface {
	richtextNode()
}

// Element is a translated HTML element.
// Attrs is nil when the element has no attributes and Children is nil when
// it has no kept children, so both keys are absent from serialized output.
type Element struct {
	Name     string `json:"name" yaml:"name"`
	Attrs    *Attrs `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Text is a text leaf. Text holds the source text verbatim, untrimmed.
type Text struct {
	Type string `json:"type" yaml:"type"`
	Text string `json:"text" yaml:"text"`
}

// NewText returns a text node holding s.
func NewText(s string) *Text {
	return &Text{Type: TextType, Text: s}
}

func (*Element) richtextNode() {}
func (*Text) richtextNode()    {}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	return e.Attrs.Get(name)
}
