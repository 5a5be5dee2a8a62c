package richtext

import (
	"strings"
	"testing"
	"time"
)

func TestStats_RecordElement(t *testing.T) {
	s := NewStats()
	s.RecordElement("P")
	s.RecordElement("p")
	s.RecordElement("img")

	if s.Elements["p"] != 2 {
		t.Errorf("expected p counted case-insensitively, got %v", s.Elements)
	}
	if s.TotalElements() != 3 {
		t.Errorf("TotalElements() = %d, want 3", s.TotalElements())
	}
}

func TestStats_String(t *testing.T) {
	s := NewStats()
	s.InputBytes = 10
	s.NormalizedBytes = 90
	s.Wrapped = true
	s.RecordElement("p")
	s.TextNodesKept = 2
	s.ParseDuration = 2 * time.Millisecond
	s.TranslateDuration = time.Millisecond

	out := s.String()
	for _, want := range []string{
		"Size: 10 bytes input, 90 bytes parsed (fragment wrapped)",
		"Elements: 1 translated",
		"By tag: p=1",
		"Text nodes: 2 kept, 0 dropped",
		"total=3ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ignored") {
		t.Errorf("zero counters should be omitted:\n%s", out)
	}
}
