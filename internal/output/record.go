package output

import (
	"time"

	"github.com/weirin1/html/pkg/ordered"
	"github.com/weirin1/html/pkg/richtext"
)

// Record is the result of translating one input.
type Record struct {
	Source       string          `json:"source" yaml:"source"`
	Charset      string          `json:"charset,omitempty" yaml:"charset,omitempty"`
	TranslatedAt time.Time       `json:"translated_at" yaml:"translated_at"`
	Nodes        []richtext.Node `json:"nodes" yaml:"nodes"`
	Stats        *richtext.Stats `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Payload returns what is written for the record: the bare node list, or
// the whole record when metadata is requested.
func (r *Record) Payload(withMetadata bool) any {
	if !withMetadata {
		return r.Nodes
	}
	return r
}

// StyleRecord holds the declarations parsed from one style attribute.
type StyleRecord struct {
	Source       string       `json:"source" yaml:"source"`
	Declarations *ordered.Map `json:"declarations" yaml:"declarations"`
}

// Payload returns the bare declarations, or the whole record when metadata
// is requested.
func (r *StyleRecord) Payload(withMetadata bool) any {
	if !withMetadata {
		return r.Declarations
	}
	return r
}
