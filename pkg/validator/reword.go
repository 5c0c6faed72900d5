package validator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// quoteArtifactRe matches residual u'...' quoting artifacts that leak into
// messages from schema descriptions; the normalizing substitution drops the
// leading u while keeping any opening bracket.
var quoteArtifactRe = regexp.MustCompile(`(^| )([\[({]?)u'`)

var (
	trailingMatchRe   = regexp.MustCompile(`match '.+'$`)
	doesNotMatchRe    = regexp.MustCompile(`does not match '.+'$`)
	emptyArrayRe      = regexp.MustCompile(`\[\] is not valid .+$`)
	additionalPropsRe = regexp.MustCompile(`Additional .+$`)
	notAllowedForRe   = regexp.MustCompile(`\{.+\} is not allowed for '(.+)'$`)
)

const externalReferencesText = "If the external reference is a CVE, " +
	"'source_name' must be 'cve' and 'external_id' must be in the CVE format " +
	"(CVE-YYYY-NNNN+). If the external reference is a CAPEC, 'source_name' " +
	"must be 'capec' and 'external_id' must be in the CAPEC format (CAPEC-N+)."

const relationshipRefsText = "Relationships cannot link bundles, marking " +
	"definitions, sightings, or other relationships. This field must contain " +
	"the id of an SDO."

// rewordRule pairs a predicate over the record with a message transform.
// Rules are tried in order and only the first match fires; none of them
// touches the record itself.
type rewordRule struct {
	match  func(*ErrorRecord) bool
	reword func(*ErrorRecord, string) string
}

var rewordRules = []rewordRule{
	// Pattern failures on titled subschemas get wording that describes the
	// expected format instead of echoing the regex.
	{
		match: patternWithTitle("type"),
		reword: func(_ *ErrorRecord, msg string) string {
			return trailingMatchRe.ReplaceAllString(msg, "match the 'type' field format "+
				"(lowercase ASCII a-z, 0-9, and hyphens only - and no two hyphens in a row)")
		},
	},
	{
		match: patternWithTitle("identifier"),
		reword: func(_ *ErrorRecord, msg string) string {
			return trailingMatchRe.ReplaceAllString(msg, "match the id format ([object-type]--[UUIDv4])")
		},
	},
	{
		match: patternWithTitle("id"),
		reword: func(e *ErrorRecord, msg string) string {
			return trailingMatchRe.ReplaceAllString(msg, "start with '"+idPrefix(e.ValidatorValue)+"--'")
		},
	},
	{
		match: patternWithTitle("timestamp"),
		reword: func(_ *ErrorRecord, msg string) string {
			return trailingMatchRe.ReplaceAllString(msg, "match the timestamp format (YYYY-MM-DDTHH:mm:ss[.s+]Z)")
		},
	},
	{
		match: patternWithTitle("relationship_type"),
		reword: func(_ *ErrorRecord, msg string) string {
			return doesNotMatchRe.ReplaceAllString(msg, "contains invalid characters")
		},
	},
	{
		match: patternWithTitle("url"),
		reword: func(_ *ErrorRecord, msg string) string {
			return trailingMatchRe.ReplaceAllString(msg, "match the format of a URL")
		},
	},
	// Empty arrays fail combinators with an unhelpful message.
	{
		match: func(e *ErrorRecord) bool {
			list, ok := e.Instance.([]any)
			return ok && len(list) == 0
		},
		reword: func(_ *ErrorRecord, msg string) string {
			return emptyArrayRe.ReplaceAllString(msg, "empty arrays are not allowed")
		},
	},
	// Custom properties that slip past the core schema's naming pattern.
	{
		match: func(e *ErrorRecord) bool {
			return e.Schema.Title == "core" && e.Validator == "additionalProperties"
		},
		reword: func(_ *ErrorRecord, msg string) string {
			return additionalPropsRe.ReplaceAllString(msg, "Custom properties must match the "+
				"proper format (lowercase ASCII a-z, 0-9, and underscores; 3-250 characters)")
		},
	},
	// The core schema forbids reserved property names with a not/anyOf guard.
	{
		match: func(e *ErrorRecord) bool {
			return e.Schema.Title == "core" && e.Validator == "not" && hasSchemaKey(e.ValidatorValue, "anyOf")
		},
		reword: func(_ *ErrorRecord, _ string) string {
			return fmt.Sprintf("Contains a reserved property ('%s')",
				strings.Join(ReservedProperties, "', '"))
		},
	},
	// External references carry a oneOf for the CVE/CAPEC source formats.
	{
		match: func(e *ErrorRecord) bool {
			return e.Validator == "oneOf" && slices.Contains(e.SchemaPath, "external_references")
		},
		reword: func(_ *ErrorRecord, _ string) string {
			return externalReferencesText
		},
	},
	// Relationship endpoints are guarded by a not clause; this outranks the
	// generic forbidden-enum wording so endpoint failures always explain what
	// a ref may contain.
	{
		match: func(e *ErrorRecord) bool {
			return e.Validator == "not" &&
				(slices.Contains(e.SchemaPath, "target_ref") || slices.Contains(e.SchemaPath, "source_ref"))
		},
		reword: func(_ *ErrorRecord, _ string) string {
			return relationshipRefsText
		},
	},
	// Forbidden enum values guarded by a not clause.
	{
		match: func(e *ErrorRecord) bool {
			return e.Validator == "not" && hasSchemaKey(e.ValidatorValue, "enum")
		},
		reword: func(_ *ErrorRecord, msg string) string {
			return notAllowedForRe.ReplaceAllString(msg, "'$1' is not an allowed value")
		},
	},
}

// PrettyError returns the display form of a record: the location prefix plus
// the reworded message. Records from custom checks keep their wording; for
// everything else the first matching rule fires, and unmatched anyOf/oneOf
// failures get the failing subschema appended for diagnostic context.
func PrettyError(e *ErrorRecord, verbose bool) string {
	loc := e.Location()

	msg := e.Message
	if verbose {
		msg = e.String()
	}
	msg = quoteArtifactRe.ReplaceAllString(msg, "$1$2'")

	if e.Source == SourceCustom {
		return loc + msg
	}

	for _, rule := range rewordRules {
		if rule.match(e) {
			return loc + rule.reword(e, msg)
		}
	}

	if e.Validator == "anyOf" || e.Validator == "oneOf" {
		msg = msg + ":\n" + serializeJSON(e.Schema.Raw)
	}
	return loc + msg
}

// patternWithTitle matches pattern-keyword failures on a subschema with the
// given title.
func patternWithTitle(title string) func(*ErrorRecord) bool {
	return func(e *ErrorRecord) bool {
		return e.Validator == "pattern" && e.Schema.Title == title
	}
}

// hasSchemaKey reports whether a schema-side value is an object containing
// the given keyword.
func hasSchemaKey(v any, key string) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[key]
	return ok
}

// idPrefix derives the expected id prefix from an anchored pattern such as
// "^malware--".
func idPrefix(v any) string {
	pat, _ := v.(string)
	pat = strings.TrimPrefix(pat, "^")
	return strings.TrimSuffix(pat, "--")
}
