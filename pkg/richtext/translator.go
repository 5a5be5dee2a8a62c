// Package richtext translates HTML fragments into the node tree accepted by
// rich-text renderers that take a restricted name/attrs/children shape
// instead of markup.
//
// Each element becomes {"name", "attrs", "children"} and each text leaf
// becomes {"type": "text", "text"}. Empty attrs and children are omitted.
package richtext

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/weirin1/html/internal/logger"
	"github.com/weirin1/html/pkg/inlinecss"
	"github.com/weirin1/html/pkg/ordered"
)

// blankChars are trimmed before deciding whether a text node is empty.
// U+00A0 is not among them: a lone &nbsp; is a deliberate spacer.
const blankChars = " \t\n\r\x00\x0b"

var (
	// ErrInvalidHTML is returned when the parsed document has no body element.
	ErrInvalidHTML = errors.New("invalid html")

	// ErrInlineCSSDisabled is returned by Style when Config.ParseInlineCSS is off.
	ErrInlineCSSDisabled = errors.New("inline css parsing disabled")
)

// Translator converts one HTML document into rich-text nodes.
// The node tree is built on first use and cached; a Translator is bound to
// the document it was created from.
type Translator struct {
	config *Config
	body   *html.Node
	stats  *Stats

	once  sync.Once
	nodes []Node
}

// New parses source and prepares a Translator for it.
// If config is nil, DefaultConfig() is used.
func New(source string, config *Config) (*Translator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	stats := NewStats()
	stats.InputBytes = len(source)

	decoded, err := decode(source, config.Charset)
	if err != nil {
		return nil, err
	}

	stats.Wrapped = !HasDoctype(decoded)
	document := Normalize(decoded, config.Charset)
	stats.NormalizedBytes = len(document)
	logger.Debug("document normalized",
		"charset", config.Charset,
		"wrapped", stats.Wrapped,
		"bytes", stats.NormalizedBytes)

	parser := config.Parser
	if parser == nil {
		parser = DefaultParser()
	}

	parseStart := time.Now()
	root, err := parser.Parse(strings.NewReader(document))
	stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHTML, err)
	}

	body := FindBody(root)
	if body == nil {
		logger.Debug("no body element after parsing")
		return nil, fmt.Errorf("%w: no body element", ErrInvalidHTML)
	}

	return &Translator{
		config: config,
		body:   body,
		stats:  stats,
	}, nil
}

// NewFromReader reads all of r and calls New.
func NewFromReader(r io.Reader, config *Config) (*Translator, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading html: %w", err)
	}
	return New(string(data), config)
}

// Translate is a shorthand for New followed by Nodes.
func Translate(source string, config *Config) ([]Node, error) {
	t, err := New(source, config)
	if err != nil {
		return nil, err
	}
	return t.Nodes(), nil
}

// Nodes returns the translated children of the document body.
// The result is never nil.
func (t *Translator) Nodes() []Node {
	t.once.Do(func() {
		start := time.Now()
		t.nodes = t.translateChildren(t.body)
		if t.nodes == nil {
			t.nodes = []Node{}
		}
		t.stats.TranslateDuration = time.Since(start)
		logger.Debug("translation complete",
			"nodes", len(t.nodes),
			"elements", t.stats.TotalElements(),
			"text_kept", t.stats.TextNodesKept,
			"text_dropped", t.stats.TextNodesDropped)
	})
	return t.nodes
}

// JSON returns the compact JSON encoding of Nodes.
// <, > and & are written as-is, matching the command line output.
func (t *Translator) JSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t.Nodes()); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// YAML returns the YAML encoding of Nodes.
func (t *Translator) YAML() (string, error) {
	data, err := yaml.Marshal(t.Nodes())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Stats returns metrics for the translation, building the tree if needed.
func (t *Translator) Stats() *Stats {
	t.Nodes()
	return t.stats
}

// Style decomposes the style attribute of e into declarations.
// It returns an empty map when e has no style attribute.
func (t *Translator) Style(e *Element) (*ordered.Map, error) {
	if !t.config.ParseInlineCSS {
		return nil, ErrInlineCSSDisabled
	}
	if e == nil {
		return ordered.New(), nil
	}
	style, ok := e.Attr("style")
	if !ok {
		return ordered.New(), nil
	}
	return inlinecss.ParseDeclarations(style)
}

func (t *Translator) translateChildren(n *html.Node) []Node {
	var children []Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			children = append(children, t.translateElement(c))
		case html.TextNode:
			if t.config.RemoveEmptyStrings && isBlank(c.Data) {
				t.stats.TextNodesDropped++
				continue
			}
			t.stats.TextNodesKept++
			children = append(children, NewText(c.Data))
		default:
			t.stats.NodesIgnored++
		}
	}
	return children
}

func (t *Translator) translateElement(n *html.Node) *Element {
	name := strings.ToLower(n.Data)
	t.stats.RecordElement(name)

	attrs := ordered.New()
	for _, a := range n.Attr {
		attrs.Set(attrName(a), a.Val)
	}

	for _, rule := range t.config.RulesFor(name) {
		attrs.Set(strings.ToLower(rule.Name), rule.Value)
		t.stats.DefaultAttrsApplied++
	}

	e := &Element{Name: name}
	if attrs.Len() > 0 {
		e.Attrs = attrs
	}
	e.Children = t.translateChildren(n)
	return e
}

// attrName returns the lowercased attribute name, restoring the prefix the
// parser splits off foreign attributes such as xlink:href.
func attrName(a html.Attribute) string {
	if a.Namespace != "" {
		return strings.ToLower(a.Namespace + ":" + a.Key)
	}
	return strings.ToLower(a.Key)
}

func isBlank(s string) bool {
	return strings.Trim(s, blankChars) == ""
}
