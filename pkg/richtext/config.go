package richtext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultCharset is the charset assumed for input and declared in the
// wrapper document when none is configured.
const DefaultCharset = "UTF-8"

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid richtext config")

// AttrRule injects a fixed attribute value into every element with the given tag.
// The rule value replaces any value the author set for the same attribute.
type AttrRule struct {
	Tag   string `json:"tag" yaml:"tag" mapstructure:"tag" validate:"required"`
	Name  string `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Value string `json:"value" yaml:"value" mapstructure:"value"`
}

// Config defines all configuration options for the translator.
type Config struct {
	// Charset is the encoding of the input text. Non UTF-8 input is
	// transcoded before parsing, and the charset is declared in the wrapper
	// document of bare fragments.
	Charset string `json:"charset" yaml:"charset" mapstructure:"charset" validate:"required,charset"`

	// RemoveEmptyStrings drops text nodes that are empty after trimming.
	RemoveEmptyStrings bool `json:"remove_empty_strings" yaml:"remove_empty_strings" mapstructure:"remove_empty_strings"`

	// ParseInlineCSS allows Translator.Style to decompose style attributes.
	// The translated tree always keeps style as a plain string.
	ParseInlineCSS bool `json:"parse_inline_css" yaml:"parse_inline_css" mapstructure:"parse_inline_css"`

	// DefaultAttrs are applied in order to every matching element.
	DefaultAttrs []AttrRule `json:"default_attrs" yaml:"default_attrs" mapstructure:"default_attrs" validate:"dive"`

	// Parser builds the element tree. Nil means DefaultParser().
	Parser Parser `json:"-" yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns the configuration expected by the rich-text renderer:
// UTF-8 input, whitespace-only text dropped, and images stretched to full width.
func DefaultConfig() *Config {
	return &Config{
		Charset:            DefaultCharset,
		RemoveEmptyStrings: true,
		ParseInlineCSS:     true,
		DefaultAttrs: []AttrRule{
			{Tag: "img", Name: "width", Value: "100%"},
		},
	}
}

// PresetVerbatim keeps every text node and injects no attributes, so the
// output mirrors the source markup as closely as the node shape allows.
func PresetVerbatim() *Config {
	return &Config{
		Charset:        DefaultCharset,
		ParseInlineCSS: true,
	}
}

// Merge merges another config into this one.
// A non-empty Charset and a non-nil Parser from other override this config,
// boolean options are enabled when other enables them, and rules are
// appended with other's value winning for the same tag and attribute.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c
	merged.DefaultAttrs = append([]AttrRule(nil), c.DefaultAttrs...)

	if other.Charset != "" {
		merged.Charset = other.Charset
	}
	if other.RemoveEmptyStrings {
		merged.RemoveEmptyStrings = true
	}
	if other.ParseInlineCSS {
		merged.ParseInlineCSS = true
	}
	if other.Parser != nil {
		merged.Parser = other.Parser
	}

	for _, rule := range other.DefaultAttrs {
		replaced := false
		for i, existing := range merged.DefaultAttrs {
			if strings.EqualFold(existing.Tag, rule.Tag) && strings.EqualFold(existing.Name, rule.Name) {
				merged.DefaultAttrs[i] = rule
				replaced = true
				break
			}
		}
		if !replaced {
			merged.DefaultAttrs = append(merged.DefaultAttrs, rule)
		}
	}

	return &merged
}

// RulesFor returns the rules that apply to the given lowercased tag name.
func (c *Config) RulesFor(tag string) []AttrRule {
	var rules []AttrRule
	for _, rule := range c.DefaultAttrs {
		if strings.EqualFold(rule.Tag, tag) {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Validate checks the config and returns an error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("charset", func(fl validator.FieldLevel) bool {
		_, err := htmlindex.Get(fl.Field().String())
		return err == nil
	})
	return v
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "charset":
		return fmt.Sprintf("%s: unknown charset %q", fe.Namespace(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag())
	}
}
