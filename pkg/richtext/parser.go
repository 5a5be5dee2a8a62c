package richtext

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parser builds an element tree from markup. Implementations must recover
// from malformed input rather than fail; an error is reserved for input that
// cannot be read at all.
type Parser interface {
	Parse(r io.Reader) (*html.Node, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(r io.Reader) (*html.Node, error)

// Parse calls f(r).
func (f ParserFunc) Parse(r io.Reader) (*html.Node, error) {
	return f(r)
}

// goqueryParser parses with goquery, which uses the HTML5 tree construction
// algorithm from golang.org/x/net/html and never reports syntax errors.
type goqueryParser struct{}

// DefaultParser returns the parser used when Config.Parser is nil.
func DefaultParser() Parser {
	return goqueryParser{}
}

func (goqueryParser) Parse(r io.Reader) (*html.Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return doc.Get(0), nil
}

// FindBody returns the first body element under root, or nil.
func FindBody(root *html.Node) *html.Node {
	if root == nil {
		return nil
	}
	if root.Type == html.ElementNode && root.Data == "body" {
		return root
	}
	body := goquery.NewDocumentFromNode(root).Find("body")
	if body.Length() == 0 {
		return nil
	}
	return body.Get(0)
}
