package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/weirin1/html/pkg/inlinecss"
	"github.com/weirin1/html/pkg/richtext"
)

func translate(t *testing.T, source string) *Record {
	t.Helper()
	tr, err := richtext.New(source, nil)
	if err != nil {
		t.Fatalf("richtext.New() error = %v", err)
	}
	return &Record{
		Source:  "inline",
		Charset: richtext.DefaultCharset,
		Nodes:   tr.Nodes(),
		Stats:   tr.Stats(),
	}
}

// --- Format Tests ---

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSONL", FormatJSONL, false},
		{" yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "*output.JSONWriter"},
		{FormatJSONL, "*output.JSONLWriter"},
		{FormatYAML, "*output.YAMLWriter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			switch w.(type) {
			case *JSONWriter, *JSONLWriter, *YAMLWriter:
			default:
				t.Errorf("expected %s, got %T", tt.want, w)
			}
		})
	}

	if _, err := NewWriter(&bytes.Buffer{}, Format("unsupported")); err == nil ||
		!strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_SingleRecordIsBareNodes(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON)

	if err := w.Write(translate(t, `<p>a < b &amp; c</p>`).Payload(false)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := `[{"name":"p","children":[{"type":"text","text":"a < b & c"}]}]` + "\n"
	if buf.String() != want {
		t.Errorf("unexpected output\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestJSONWriter_MultipleRecordsOutputsArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	err := w.WriteAll([]any{
		translate(t, `<p>one</p>`).Payload(false),
		translate(t, `<p>two</p>`).Payload(false),
	})
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result [][]map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(result))
	}
}

func TestJSONWriter_PrettyPrint(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON, WithPretty(true), WithIndent("\t"))

	_ = w.Write(translate(t, `<img src="a.png">`).Payload(false))
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "\n\t{") {
		t.Errorf("expected tab indentation, got %q", out)
	}
	if strings.Index(out, `"src"`) > strings.Index(out, `"width"`) {
		t.Errorf("expected attribute order preserved, got %q", out)
	}
}

func TestJSONWriter_FlushEmptiesBuffer(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	_ = w.Write([]string{"x"})
	_ = w.Flush()
	_ = w.Flush()

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("expected one line after two flushes, got %d: %q", got, buf.String())
	}
}

func TestJSONWriter_WithMetadata(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	_ = w.Write(translate(t, `<b>x</b>`).Payload(true))
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	for _, key := range []string{"source", "charset", "translated_at", "nodes", "stats"} {
		if _, ok := result[key]; !ok {
			t.Errorf("expected key %q in %v", key, result)
		}
	}
	if stats := result["stats"].(map[string]any); stats["wrapped"] != true {
		t.Errorf("expected wrapped stats, got %v", stats)
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_SeparateLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.WriteAll([]any{
		translate(t, `<p>one</p><p>two</p>`).Payload(false),
		translate(t, `<i>three</i>`).Payload(false),
	}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for i, line := range lines {
		var nodes []map[string]any
		if err := json.Unmarshal([]byte(line), &nodes); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_DocumentStream(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	_ = w.Write(translate(t, `<p>one</p>`).Payload(false))
	_ = w.Write(translate(t, `<img src="a.png">`).Payload(false))
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(buf.Bytes()))
	var docs [][]map[string]any
	for {
		var doc []map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("failed to decode yaml: %v\n%s", err, buf.String())
		}
		docs = append(docs, doc)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d:\n%s", len(docs), buf.String())
	}
	if docs[1][0]["name"] != "img" {
		t.Errorf("unexpected second document %v", docs[1])
	}
	if !strings.Contains(buf.String(), "---") {
		t.Errorf("expected document separator, got:\n%s", buf.String())
	}
}

// --- StyleRecord Tests ---

func TestStyleRecord_Payload(t *testing.T) {
	decls, err := inlinecss.ParseDeclarations("color: red; background: url(a;b.png)")
	if err != nil {
		t.Fatalf("ParseDeclarations() error = %v", err)
	}
	rec := &StyleRecord{Source: "inline", Declarations: decls}

	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")
	_ = w.Write(rec.Payload(false))
	_ = w.Flush()

	want := `{"color":"red","background":"url(a;b.png)"}` + "\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	_ = w.Write(rec.Payload(true))
	_ = w.Flush()
	if !strings.HasPrefix(buf.String(), `{"source":"inline","declarations":{"color"`) {
		t.Errorf("unexpected metadata output %q", buf.String())
	}
}
