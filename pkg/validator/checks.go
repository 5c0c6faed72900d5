package validator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// lowercaseHyphenRe is the naming format open vocabularies and kill chain
// phase names are expected to follow.
var lowercaseHyphenRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// runMustChecks applies the MUST requirements the schemas cannot express.
// MUST violations carry no check code and cannot be disabled.
func (v *Validator) runMustChecks(obj map[string]any) []*ErrorRecord {
	id, _ := obj["id"].(string)

	var recs []*ErrorRecord
	add := func(msg string) {
		rec, _ := NewJSONError(msg, id, "")
		recs = append(recs, rec)
	}

	if msg := checkModifiedCreated(obj); msg != "" {
		add(msg)
	}
	if msg := checkIDUUID(id); msg != "" {
		add(msg)
	}
	if msg := checkIDTypeAgreement(obj, id); msg != "" {
		add(msg)
	}
	return recs
}

// checkModifiedCreated enforces that modified is not earlier than created.
func checkModifiedCreated(obj map[string]any) string {
	created, okC := parseTimestamp(obj["created"])
	modified, okM := parseTimestamp(obj["modified"])
	if okC && okM && modified.Before(created) {
		return fmt.Sprintf("'modified' (%v) must be later or equal to 'created' (%v)",
			obj["modified"], obj["created"])
	}
	return ""
}

func parseTimestamp(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// checkIDUUID enforces that the UUID portion of an id is a valid RFC 4122
// version-4 UUID. The identifier pattern in the schemas is looser than the
// variant bits require.
func checkIDUUID(id string) string {
	_, raw, found := strings.Cut(id, "--")
	if !found {
		return ""
	}
	u, err := uuid.Parse(raw)
	if err != nil || u.Version() != 4 || u.Variant() != uuid.RFC4122 {
		return fmt.Sprintf("the UUID portion of '%s' is not a valid UUIDv4", id)
	}
	return ""
}

// checkIDTypeAgreement enforces that the id prefix names the object's type.
func checkIDTypeAgreement(obj map[string]any, id string) string {
	typ, _ := obj["type"].(string)
	prefix, _, found := strings.Cut(id, "--")
	if typ == "" || !found {
		return ""
	}
	if prefix != typ {
		return fmt.Sprintf("'id' must be prefixed with '%s--', not '%s--'", typ, prefix)
	}
	return ""
}

// shouldChecks are the SHOULD-requirement checks. Each is selectable by the
// check name it reports under; messages get the numeric code prefixed via
// NewJSONError.
var shouldChecks = []struct {
	name string
	run  func(v *Validator, obj map[string]any, objType string) []string
}{
	{"custom-prefix", (*Validator).checkCustomPrefix},
	{"custom-prefix-lax", (*Validator).checkCustomPrefixLax},
	{"open-vocab-format", (*Validator).checkOpenVocabFormat},
	{"kill-chain-names", (*Validator).checkKillChainNames},
	{"marking-definition-type", (*Validator).checkMarkingDefinitionType},
	{"relationship-types", (*Validator).checkRelationshipTypes},
}

// runShouldChecks applies the enabled SHOULD requirements and returns their
// records as warnings. The lax custom-prefix check only runs when the strict
// one is disabled.
func (v *Validator) runShouldChecks(obj map[string]any, objType string) ([]*ErrorRecord, error) {
	id, _ := obj["id"].(string)

	var recs []*ErrorRecord
	for _, check := range shouldChecks {
		if !v.opts.checkEnabled(check.name) {
			continue
		}
		if check.name == "custom-prefix-lax" && v.opts.checkEnabled("custom-prefix") {
			continue
		}
		for _, msg := range check.run(v, obj, objType) {
			rec, err := NewJSONError(msg, id, check.name)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
	}

	// Approved-values vocabulary checks report under their field-specific
	// code; the all-vocabs selector addresses the whole family at once.
	for _, vc := range vocabChecks[objType] {
		if anySelectorMatches(v.opts.Disabled, vc.check) || anySelectorMatches(v.opts.Disabled, "all-vocabs") {
			continue
		}
		if len(v.opts.Enabled) > 0 &&
			!anySelectorMatches(v.opts.Enabled, vc.check) && !anySelectorMatches(v.opts.Enabled, "all-vocabs") {
			continue
		}
		for _, value := range stringValues(obj[vc.field]) {
			if slices.Contains(vc.vocab, value) {
				continue
			}
			msg := fmt.Sprintf("'%s' is not a suggested value for the %s property", value, vc.field)
			rec, err := NewJSONError(msg, id, vc.check)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// customProperties returns the object's properties that neither the core
// schema nor the object's own schema declares.
func (v *Validator) customProperties(obj map[string]any, objType string) []string {
	known := v.declaredProperties(objType)
	var custom []string
	for name := range obj {
		if _, ok := known[name]; !ok {
			custom = append(custom, name)
		}
	}
	slices.Sort(custom)
	return custom
}

// declaredProperties collects property names from the object's raw schema
// document and anything its allOf branches pull in from the shared tree.
func (v *Validator) declaredProperties(objType string) map[string]struct{} {
	known := make(map[string]struct{})
	url, ok := v.typeURL[objType]
	if !ok {
		return known
	}
	v.collectProperties(v.raw[url], url, known, 0)
	return known
}

func (v *Validator) collectProperties(doc any, docURL string, known map[string]struct{}, depth int) {
	if depth > 4 {
		return
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return
	}
	if props, ok := m["properties"].(map[string]any); ok {
		for name := range props {
			known[name] = struct{}{}
		}
	}
	if branches, ok := m["allOf"].([]any); ok {
		for _, branch := range branches {
			if ref, ok := refTarget(branch); ok {
				target := resolveRefURL(docURL, ref)
				v.collectProperties(v.raw[target], target, known, depth+1)
				continue
			}
			v.collectProperties(branch, docURL, known, depth+1)
		}
	}
}

func refTarget(branch any) (string, bool) {
	m, ok := branch.(map[string]any)
	if !ok {
		return "", false
	}
	ref, ok := m["$ref"].(string)
	return ref, ok
}

// resolveRefURL resolves a relative $ref against the URL of the document
// that contains it. Only the relative form used by the bundled schemas is
// supported; anything else is returned as-is.
func resolveRefURL(docURL, ref string) string {
	if strings.Contains(ref, "://") {
		return ref
	}
	base := docURL[:strings.LastIndex(docURL, "/")+1]
	for strings.HasPrefix(ref, "../") {
		ref = strings.TrimPrefix(ref, "../")
		trimmed := strings.TrimSuffix(base, "/")
		base = trimmed[:strings.LastIndex(trimmed, "/")+1]
	}
	return base + ref
}

func (v *Validator) checkCustomPrefix(obj map[string]any, objType string) []string {
	var msgs []string
	for _, name := range v.customProperties(obj, objType) {
		if !strings.HasPrefix(name, "x_") {
			msgs = append(msgs, fmt.Sprintf("custom property '%s' should have a 'x_' prefix", name))
		}
	}
	return msgs
}

func (v *Validator) checkCustomPrefixLax(obj map[string]any, objType string) []string {
	var msgs []string
	for _, name := range v.customProperties(obj, objType) {
		if !strings.HasPrefix(name, "x_") && !strings.HasPrefix(name, "x-") {
			msgs = append(msgs, fmt.Sprintf("custom property '%s' should have a 'x_' or 'x-' prefix", name))
		}
	}
	return msgs
}

// checkOpenVocabFormat flags vocabulary values that are not lowercase with
// hyphens, whatever vocabulary they belong to.
func (v *Validator) checkOpenVocabFormat(obj map[string]any, objType string) []string {
	var msgs []string
	for _, vc := range vocabChecks[objType] {
		for _, value := range stringValues(obj[vc.field]) {
			if !lowercaseHyphenRe.MatchString(value) {
				msgs = append(msgs, fmt.Sprintf("open vocabulary value '%s' should be all"+
					" lowercase and use hyphens instead of spaces or underscores", value))
			}
		}
	}
	return msgs
}

func (v *Validator) checkKillChainNames(obj map[string]any, _ string) []string {
	phases, _ := obj["kill_chain_phases"].([]any)

	var msgs []string
	for _, p := range phases {
		phase, _ := p.(map[string]any)
		for _, field := range []string{"kill_chain_name", "phase_name"} {
			if value, ok := phase[field].(string); ok && !lowercaseHyphenRe.MatchString(value) {
				msgs = append(msgs, fmt.Sprintf("%s '%s' should be all lowercase and use"+
					" hyphens instead of spaces or underscores", field, value))
			}
		}
	}
	return msgs
}

func (v *Validator) checkMarkingDefinitionType(obj map[string]any, objType string) []string {
	if objType != "marking-definition" {
		return nil
	}
	dt, ok := obj["definition_type"].(string)
	if !ok || slices.Contains(MarkingDefinitionTypes, dt) {
		return nil
	}
	return []string{fmt.Sprintf("'%s' is not a suggested value for the definition_type"+
		" property ('%s')", dt, strings.Join(MarkingDefinitionTypes, "', '"))}
}

// checkRelationshipTypes warns when a relationship type is not one suggested
// between the referenced source and target object types.
func (v *Validator) checkRelationshipTypes(obj map[string]any, objType string) []string {
	if objType != "relationship" {
		return nil
	}
	relType, _ := obj["relationship_type"].(string)
	sourceType := refType(obj["source_ref"])
	targetType := refType(obj["target_ref"])
	if relType == "" || sourceType == "" || targetType == "" {
		return nil
	}
	if slices.Contains(CommonRelationships, relType) {
		return nil
	}
	byType, known := RelationshipTypes[sourceType]
	if !known {
		// Unknown or custom source type; nothing to suggest.
		return nil
	}
	targets, ok := byType[relType]
	if !ok {
		return []string{fmt.Sprintf("'%s' is not a suggested relationship type for '%s'"+
			" objects", relType, sourceType)}
	}
	if !slices.Contains(targets, targetType) {
		return []string{fmt.Sprintf("'%s' objects are not a suggested target for '%s'"+
			" relationships from '%s' objects", targetType, relType, sourceType)}
	}
	return nil
}

// refType extracts the object type from an identifier reference value.
func refType(v any) string {
	ref, _ := v.(string)
	typ, _, _ := strings.Cut(ref, "--")
	return typ
}

// stringValues normalizes a field that may hold a string or a list of
// strings.
func stringValues(v any) []string {
	switch value := v.(type) {
	case string:
		return []string{value}
	case []any:
		var out []string
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
