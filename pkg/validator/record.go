package validator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Source distinguishes records produced by the generic schema validator from
// records synthesized by our own checks. Custom records bypass rewording.
type Source int

const (
	SourceSchema Source = iota
	SourceCustom
)

// PathElement is one segment of an instance path: either an object key or an
// array index.
type PathElement struct {
	Key     string
	Index   int
	IsIndex bool
}

// PathKey returns a key segment.
func PathKey(k string) PathElement { return PathElement{Key: k} }

// PathIndex returns an array-index segment.
func PathIndex(i int) PathElement { return PathElement{Index: i, IsIndex: true} }

// SchemaInfo is the failing subschema as seen by the rewriter: its title
// metadata plus the raw schema value for serialization.
type SchemaInfo struct {
	Title string
	Raw   map[string]any
}

// ErrorRecord is the canonical in-memory shape of a single validation
// failure. It is built once when the failure is detected, passed through
// location resolution and rewording, and discarded after producing its
// display string.
type ErrorRecord struct {
	Message        string
	Path           []PathElement
	Validator      string
	ValidatorValue any
	Schema         SchemaInfo
	SchemaPath     []string
	Instance       any
	Source         Source
}

// Location derives the display prefix for a record. The id of the failing
// instance wins when present; otherwise the path is rendered left to right.
// The walk reads the path by index and never mutates the record, so a record
// can be formatted more than once.
func (e *ErrorRecord) Location() string {
	if id, ok := instanceID(e.Instance); ok {
		return id + ": "
	}
	if len(e.Path) == 0 {
		return ""
	}
	var b strings.Builder
	for i, elem := range e.Path {
		if !elem.IsIndex {
			b.WriteString(elem.Key)
		} else if i < len(e.Path)-1 {
			fmt.Fprintf(&b, "[%d]/", elem.Index)
		}
	}
	b.WriteString(": ")
	return b.String()
}

// instanceID reads instance["id"]. A non-object instance and an object
// without a usable id fall through the same way; the caller cannot tell the
// two apart and is not meant to.
func instanceID(instance any) (string, bool) {
	m, ok := instance.(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := m["id"].(string)
	return id, ok
}

// String renders the record the long way, naming the failing keyword and
// including the subschema and offending instance. Used for verbose reports.
func (e *ErrorRecord) String() string {
	if e.Source == SourceCustom {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	fmt.Fprintf(&b, "\n\nFailed validating '%s' in schema", e.Validator)
	for _, seg := range e.SchemaPath {
		fmt.Fprintf(&b, "['%s']", seg)
	}
	b.WriteString(":\n")
	b.WriteString(serializeJSON(e.Schema.Raw))
	b.WriteString("\n\nOn instance")
	for _, elem := range e.Path {
		if elem.IsIndex {
			fmt.Fprintf(&b, "[%d]", elem.Index)
		} else {
			fmt.Fprintf(&b, "['%s']", elem.Key)
		}
	}
	b.WriteString(":\n")
	b.WriteString(serializeJSON(e.Instance))
	return b.String()
}

// serializeJSON renders a value compactly for inclusion in messages. It never
// fails; unmarshalable values degrade to fmt formatting.
func serializeJSON(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}
