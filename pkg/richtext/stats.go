package richtext

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stats captures metrics about a translation.
type Stats struct {
	// Size metrics
	InputBytes      int  `json:"input_bytes" yaml:"input_bytes"`
	NormalizedBytes int  `json:"normalized_bytes" yaml:"normalized_bytes"`
	Wrapped         bool `json:"wrapped" yaml:"wrapped"`

	// Node counts
	Elements         map[string]int `json:"elements" yaml:"elements"` // tag -> count
	TextNodesKept    int            `json:"text_nodes_kept" yaml:"text_nodes_kept"`
	TextNodesDropped int            `json:"text_nodes_dropped" yaml:"text_nodes_dropped"`
	NodesIgnored     int            `json:"nodes_ignored" yaml:"nodes_ignored"`

	// DefaultAttrsApplied counts rule injections, including overrides.
	DefaultAttrsApplied int `json:"default_attrs_applied" yaml:"default_attrs_applied"`

	// Timing
	ParseDuration     time.Duration `json:"parse_duration" yaml:"parse_duration"`
	TranslateDuration time.Duration `json:"translate_duration" yaml:"translate_duration"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		Elements: make(map[string]int),
	}
}

// RecordElement records that an element was translated.
func (s *Stats) RecordElement(tag string) {
	s.Elements[strings.ToLower(tag)]++
}

// TotalElements returns the sum of all translated elements.
func (s *Stats) TotalElements() int {
	total := 0
	for _, count := range s.Elements {
		total += count
	}
	return total
}

// TotalDuration returns parse plus translate time.
func (s *Stats) TotalDuration() time.Duration {
	return s.ParseDuration + s.TranslateDuration
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %d bytes input, %d bytes parsed", s.InputBytes, s.NormalizedBytes))
	if s.Wrapped {
		sb.WriteString(" (fragment wrapped)")
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Elements: %d translated\n", s.TotalElements()))

	if len(s.Elements) > 0 {
		tags := make([]string, 0, len(s.Elements))
		for tag := range s.Elements {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		parts := make([]string, 0, len(tags))
		for _, tag := range tags {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, s.Elements[tag]))
		}
		sb.WriteString("By tag: ")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Text nodes: %d kept, %d dropped\n", s.TextNodesKept, s.TextNodesDropped))

	if s.NodesIgnored > 0 {
		sb.WriteString(fmt.Sprintf("Other nodes ignored: %d\n", s.NodesIgnored))
	}

	if s.DefaultAttrsApplied > 0 {
		sb.WriteString(fmt.Sprintf("Default attributes applied: %d\n", s.DefaultAttrsApplied))
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, translate=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TranslateDuration.Round(time.Microsecond),
		s.TotalDuration().Round(time.Microsecond)))

	return sb.String()
}
