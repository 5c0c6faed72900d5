package validator

import (
	"strings"
	"testing"
	"testing/fstest"
)

func allMessages(result *ObjectResult) []string {
	var msgs []string
	for _, e := range result.Errors {
		msgs = append(msgs, e.Message)
	}
	for _, w := range result.Warnings {
		msgs = append(msgs, w.Message)
	}
	return msgs
}

func containsMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateDocumentValidObject(t *testing.T) {
	v := testValidator(t, Options{})
	results := v.ValidateDocument(validMalware())
	if !results.Valid {
		t.Fatalf("valid object reported invalid: %v", allMessages(results.Objects[0]))
	}
	if results.ErrorCount() != 0 || results.WarningCount() != 0 {
		t.Errorf("counts = %d errors, %d warnings", results.ErrorCount(), results.WarningCount())
	}
	if results.Objects[0].ID != "malware--"+validUUID {
		t.Errorf("object ID = %q", results.Objects[0].ID)
	}
}

func TestValidateDocumentNotAnObject(t *testing.T) {
	v := testValidator(t, Options{})
	results := v.ValidateDocument("just a string")
	if results.Fatal == nil {
		t.Fatal("expected a fatal error for a non-object document")
	}
	if !strings.Contains(results.Fatal.Message, "must be a JSON object") {
		t.Errorf("fatal message = %q", results.Fatal.Message)
	}
}

func TestValidateDocumentMissingType(t *testing.T) {
	v := testValidator(t, Options{})
	results := v.ValidateDocument(map[string]any{"id": "malware--" + validUUID})
	if results.Valid {
		t.Fatal("object without a type reported valid")
	}
	msgs := allMessages(results.Objects[0])
	if !containsMessage(msgs, "missing its 'type' property") {
		t.Errorf("messages = %v", msgs)
	}
}

func TestValidateDocumentUnknownType(t *testing.T) {
	v := testValidator(t, Options{})
	results := v.ValidateDocument(map[string]any{
		"type": "widget",
		"id":   "widget--" + validUUID,
	})
	msgs := allMessages(results.Objects[0])
	if !containsMessage(msgs, "no schema available for object type 'widget'") {
		t.Errorf("messages = %v", msgs)
	}
}

func TestValidateDocumentBadIdentifier(t *testing.T) {
	v := testValidator(t, Options{})
	obj := validMalware()
	obj["id"] = "malware--abc"
	results := v.ValidateDocument(obj)
	if results.Valid {
		t.Fatal("bad identifier reported valid")
	}
	msgs := allMessages(results.Objects[0])
	if !containsMessage(msgs, "[object-type]--[UUIDv4]") {
		t.Errorf("identifier failure not reworded: %v", msgs)
	}
	if !containsMessage(msgs, "not a valid UUIDv4") {
		t.Errorf("UUID check did not fire: %v", msgs)
	}
}

func TestValidateDocumentModifiedBeforeCreated(t *testing.T) {
	v := testValidator(t, Options{})
	obj := validMalware()
	obj["modified"] = "2020-01-01T00:00:00.000Z"
	results := v.ValidateDocument(obj)
	msgs := allMessages(results.Objects[0])
	if !containsMessage(msgs, "must be later or equal to 'created'") {
		t.Errorf("messages = %v", msgs)
	}
	// MUST violations land in Errors, never Warnings.
	if len(results.Objects[0].Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", results.Objects[0].Warnings)
	}
}

func TestValidateDocumentReservedProperty(t *testing.T) {
	v := testValidator(t, Options{})
	obj := validMalware()
	obj["confidence"] = 85
	results := v.ValidateDocument(obj)
	msgs := allMessages(results.Objects[0])
	if !containsMessage(msgs, "Contains a reserved property") {
		t.Errorf("messages = %v", msgs)
	}
}

func TestValidateDocumentBadCustomPropertyName(t *testing.T) {
	v := testValidator(t, Options{})
	obj := validMalware()
	obj["X-Bad-Name"] = "value"
	results := v.ValidateDocument(obj)
	msgs := allMessages(results.Objects[0])
	if !containsMessage(msgs, "Custom properties must match the proper format") {
		t.Errorf("messages = %v", msgs)
	}
}

func TestValidateDocumentCustomPropertyWarning(t *testing.T) {
	v := testValidator(t, Options{})
	obj := validMalware()
	obj["acme_rating"] = 5
	results := v.ValidateDocument(obj)

	result := results.Objects[0]
	if len(result.Warnings) == 0 {
		t.Fatal("expected a custom-prefix warning")
	}
	msg := result.Warnings[0].Message
	if !strings.Contains(msg, "{101}") || !strings.Contains(msg, "'acme_rating'") {
		t.Errorf("warning = %q", msg)
	}
	if !strings.HasPrefix(msg, "malware--"+validUUID+": ") {
		t.Errorf("warning missing id prefix: %q", msg)
	}
	// A SHOULD violation alone leaves the object valid.
	if !result.Valid {
		t.Error("warnings should not invalidate the object")
	}
}

func TestValidateDocumentStrictPromotesWarnings(t *testing.T) {
	v := testValidator(t, Options{Strict: true})
	obj := validMalware()
	obj["acme_rating"] = 5
	results := v.ValidateDocument(obj)

	result := results.Objects[0]
	if len(result.Warnings) != 0 {
		t.Errorf("strict mode left warnings: %v", result.Warnings)
	}
	if result.Valid {
		t.Error("strict mode should invalidate the object")
	}
}

func TestValidateDocumentRelationshipRefs(t *testing.T) {
	v := testValidator(t, Options{})
	obj := map[string]any{
		"type":              "relationship",
		"id":                "relationship--" + validUUID,
		"created":           "2023-01-01T00:00:00.000Z",
		"modified":          "2023-01-01T00:00:00.000Z",
		"relationship_type": "uses",
		"source_ref":        "relationship--" + validUUID,
		"target_ref":        "tool--" + validUUID,
	}
	results := v.ValidateDocument(obj)
	msgs := allMessages(results.Objects[0])
	if !containsMessage(msgs, "Relationships cannot link bundles") {
		t.Errorf("messages = %v", msgs)
	}
}

func TestValidateDocumentBundle(t *testing.T) {
	v := testValidator(t, Options{})
	member := validMalware()
	member["id"] = "indicator--" + validUUID // wrong prefix for its type
	doc := map[string]any{
		"type":    "bundle",
		"id":      "bundle--" + validUUID,
		"objects": []any{member},
	}
	results := v.ValidateDocument(doc)
	if results.Valid {
		t.Fatal("bundle with a bad member reported valid")
	}

	// Shell first, then one result per member.
	if len(results.Objects) != 2 {
		t.Fatalf("got %d object results, want 2", len(results.Objects))
	}
	if !results.Objects[0].Valid {
		t.Errorf("bundle shell reported invalid: %v", allMessages(results.Objects[0]))
	}
	memberResult := results.Objects[1]
	if len(memberResult.Path) != 2 || memberResult.Path[0] != "objects" || memberResult.Path[1] != "0" {
		t.Errorf("member path = %v", memberResult.Path)
	}
	msgs := allMessages(memberResult)
	if !containsMessage(msgs, "'id' must be prefixed with 'malware--'") {
		t.Errorf("messages = %v", msgs)
	}
}

func TestValidateDocumentBundleNonObjectMember(t *testing.T) {
	v := testValidator(t, Options{})
	doc := map[string]any{
		"type":    "bundle",
		"id":      "bundle--" + validUUID,
		"objects": []any{"not an object"},
	}
	results := v.ValidateDocument(doc)
	msgs := allMessages(results.Objects[1])
	if !containsMessage(msgs, "objects[0]: must be a JSON object") {
		t.Errorf("messages = %v", msgs)
	}
}

func TestValidateDocumentRequiredProperty(t *testing.T) {
	v := testValidator(t, Options{})
	obj := validMalware()
	delete(obj, "name")
	results := v.ValidateDocument(obj)
	msgs := allMessages(results.Objects[0])
	if !containsMessage(msgs, "'name' is a required property") {
		t.Errorf("messages = %v", msgs)
	}
}

func TestNewRejectsBadSchema(t *testing.T) {
	badFS := fstest.MapFS{
		"common/broken.json": &fstest.MapFile{Data: []byte("{not json")},
	}
	_, err := New(Options{}, badFS)
	if err == nil {
		t.Fatal("expected an error for an unparsable schema")
	}
	if !strings.Contains(err.Error(), "invalid schema") {
		t.Errorf("error = %v", err)
	}
}

func TestSplitSchemaURL(t *testing.T) {
	base, frag := splitSchemaURL(schemaBaseURL + "sdos/malware.json#/allOf/1/properties/id")
	if base != schemaBaseURL+"sdos/malware.json" {
		t.Errorf("base = %q", base)
	}
	want := []string{"allOf", "1", "properties", "id"}
	if len(frag) != len(want) {
		t.Fatalf("fragment = %v, want %v", frag, want)
	}
	for i := range want {
		if frag[i] != want[i] {
			t.Errorf("fragment[%d] = %q, want %q", i, frag[i], want[i])
		}
	}

	base, frag = splitSchemaURL(schemaBaseURL + "common/core.json")
	if base != schemaBaseURL+"common/core.json" || frag != nil {
		t.Errorf("got %q %v for fragment-free URL", base, frag)
	}

	_, frag = splitSchemaURL("doc#/a~1b/c~0d")
	if len(frag) != 2 || frag[0] != "a/b" || frag[1] != "c~d" {
		t.Errorf("escaped fragment = %v", frag)
	}
}

func TestResolvePointer(t *testing.T) {
	doc := map[string]any{
		"objects": []any{
			map[string]any{"type": "malware"},
		},
	}
	if got := resolvePointer(doc, []string{"objects", "0", "type"}); got != "malware" {
		t.Errorf("resolvePointer = %v", got)
	}
	if got := resolvePointer(doc, []string{"objects", "5"}); got != nil {
		t.Errorf("out-of-range index resolved to %v", got)
	}
	if got := resolvePointer(doc, []string{"missing", "key"}); got != nil {
		t.Errorf("missing key resolved to %v", got)
	}
}
