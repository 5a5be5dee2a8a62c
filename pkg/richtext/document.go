package richtext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// doctypeWindow is how many leading characters are searched for a doctype.
const doctypeWindow = 80

// HasDoctype reports whether a document type declaration appears within the
// first 80 characters of html, ignoring case.
func HasDoctype(html string) bool {
	head := html
	if utf8.RuneCountInString(head) > doctypeWindow {
		head = string([]rune(head)[:doctypeWindow])
	}
	return strings.Contains(strings.ToLower(head), "<!doctype")
}

// Normalize wraps a bare fragment in a minimal document declaring charset,
// so the parser always yields a body element holding the fragment.
// Input that already carries a doctype is returned unchanged.
func Normalize(html, charset string) string {
	if HasDoctype(html) {
		return html
	}
	return "<!DOCTYPE html><html><head><meta charset='" + charset + "' /></head><body>" + html + "</body></html>"
}

// decode transcodes html from charset to UTF-8.
func decode(html, charset string) (string, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("%w: unknown charset %q", ErrInvalidConfig, charset)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return html, nil
	}
	out, err := enc.NewDecoder().String(html)
	if err != nil {
		return "", fmt.Errorf("decoding %s input: %w", charset, err)
	}
	return out, nil
}
