package validator

import (
	"strings"
	"testing"
)

func TestLocation(t *testing.T) {
	tests := []struct {
		name string
		rec  ErrorRecord
		want string
	}{
		{
			name: "instance id wins over path",
			rec: ErrorRecord{
				Instance: map[string]any{"id": "indicator--abc"},
				Path:     []PathElement{PathKey("objects"), PathIndex(3)},
			},
			want: "indicator--abc: ",
		},
		{
			name: "path with interior index",
			rec: ErrorRecord{
				Path: []PathElement{PathKey("objects"), PathIndex(0), PathKey("type")},
			},
			want: "objects[0]/type: ",
		},
		{
			name: "trailing index is dropped",
			rec: ErrorRecord{
				Path: []PathElement{PathKey("labels"), PathIndex(2)},
			},
			want: "labels: ",
		},
		{
			name: "empty path and no id",
			rec:  ErrorRecord{},
			want: "",
		},
		{
			name: "non-object instance falls through to path",
			rec: ErrorRecord{
				Instance: "just a string",
				Path:     []PathElement{PathKey("name")},
			},
			want: "name: ",
		},
		{
			name: "object without id falls through to path",
			rec: ErrorRecord{
				Instance: map[string]any{"type": "malware"},
				Path:     []PathElement{PathKey("name")},
			},
			want: "name: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Location(); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocationIsRepeatable(t *testing.T) {
	rec := ErrorRecord{Path: []PathElement{PathKey("objects"), PathIndex(1), PathKey("id")}}
	first := rec.Location()
	second := rec.Location()
	if first != second {
		t.Errorf("Location not repeatable: %q then %q", first, second)
	}
	if len(rec.Path) != 3 {
		t.Errorf("Location mutated the path: %v", rec.Path)
	}
}

func TestStringCustomRecord(t *testing.T) {
	rec := ErrorRecord{Message: "{101} custom property 'foo' should have a 'x_' prefix", Source: SourceCustom}
	if got := rec.String(); got != rec.Message {
		t.Errorf("String() = %q, want the message unchanged", got)
	}
}

func TestStringSchemaRecord(t *testing.T) {
	rec := ErrorRecord{
		Message:    "'X' does not match '^[a-z]+$'",
		Validator:  "pattern",
		SchemaPath: []string{"properties", "type"},
		Schema:     SchemaInfo{Raw: map[string]any{"pattern": "^[a-z]+$"}},
		Path:       []PathElement{PathKey("objects"), PathIndex(0), PathKey("type")},
		Instance:   "X",
	}
	got := rec.String()
	for _, want := range []string{
		"'X' does not match '^[a-z]+$'",
		"Failed validating 'pattern' in schema['properties']['type']:",
		`{"pattern":"^[a-z]+$"}`,
		"On instance['objects'][0]['type']:",
		`"X"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("String() missing %q:\n%s", want, got)
		}
	}
}
