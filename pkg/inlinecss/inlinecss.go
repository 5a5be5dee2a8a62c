// Package inlinecss splits the value of an HTML style attribute into an
// ordered map of declarations. It performs no cascade, validation or
// shorthand expansion; it only takes care that a ';' inside url(...) is not
// treated as a declaration separator.
package inlinecss

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/weirin1/html/pkg/ordered"
)

// ErrInvalidDeclaration is returned when a declaration has no name/value separator.
var ErrInvalidDeclaration = errors.New("invalid css declaration")

var (
	// urlRegex matches url(...) up to the first closing parenthesis.
	urlRegex = regexp.MustCompile(`(?i)url\s*\([^)]*\)`)

	placeholderRegex = regexp.MustCompile(`%%\d+%%`)
)

// Mask maps placeholder tokens back to the url(...) text they replaced.
type Mask map[string]string

// MaskURLs replaces every url(...) occurrence in css with a %%n%% placeholder,
// numbered from 1 in match order, and returns the masked string with the table
// needed to undo it.
func MaskURLs(css string) (string, Mask) {
	mask := make(Mask)
	masked := urlRegex.ReplaceAllStringFunc(css, func(match string) string {
		token := "%%" + strconv.Itoa(len(mask)+1) + "%%"
		mask[token] = match
		return token
	})
	return masked, mask
}

// Restore puts the original url(...) text back in place of known placeholders.
// Placeholders that are not in the table are left untouched.
func (m Mask) Restore(s string) string {
	if len(m) == 0 {
		return s
	}
	return placeholderRegex.ReplaceAllStringFunc(s, func(token string) string {
		if original, ok := m[token]; ok {
			return original
		}
		return token
	})
}

// Len returns the number of masked url(...) values.
func (m Mask) Len() int {
	return len(m)
}

// ParseDeclarations decomposes an inline style string into declaration name
// and value pairs, in source order. A repeated name keeps its first position
// and takes the last value.
func ParseDeclarations(css string) (*ordered.Map, error) {
	masked, mask := MaskURLs(css)
	result := ordered.New()

	for _, segment := range strings.Split(masked, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		name, value, ok := strings.Cut(segment, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDeclaration, mask.Restore(segment))
		}

		result.Set(name, mask.Restore(strings.TrimSpace(value)))
	}

	return result, nil
}
