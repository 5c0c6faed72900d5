package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaBaseURL anchors the embedded schema resources; it is never fetched.
const schemaBaseURL = "https://cti-stix-validator.invalid/schemas/"

// Validator checks decoded STIX documents against the bundled (or a
// user-supplied) schema tree and runs the custom MUST and SHOULD checks.
// A Validator is immutable after New and safe for concurrent use.
type Validator struct {
	opts    Options
	schemas map[string]*jsonschema.Schema // object type -> compiled schema
	raw     map[string]any                // resource URL -> decoded schema doc
	typeURL map[string]string             // object type -> resource URL
}

// New compiles every schema in the given tree. Object schemas live under
// sdos/ and sros/, plus the bundle and marking-definition schemas under
// common/; everything else is shared machinery referenced from them. A
// schema that cannot be parsed or compiled aborts with SchemaInvalidError.
func New(opts Options, schemaFS fs.FS) (*Validator, error) {
	v := &Validator{
		opts:    opts,
		schemas: make(map[string]*jsonschema.Schema),
		raw:     make(map[string]any),
		typeURL: make(map[string]string),
	}

	compiler := jsonschema.NewCompiler()

	err := fs.WalkDir(schemaFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}
		data, err := fs.ReadFile(schemaFS, p)
		if err != nil {
			return &SchemaInvalidError{Schema: p, Err: err}
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return &SchemaInvalidError{Schema: p, Err: err}
		}
		url := schemaBaseURL + p
		if err := compiler.AddResource(url, doc); err != nil {
			return &SchemaInvalidError{Schema: p, Err: err}
		}
		v.raw[url] = doc
		if typ, ok := objectTypeForPath(p); ok {
			v.typeURL[typ] = url
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for typ, url := range v.typeURL {
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, &SchemaInvalidError{Schema: url, Err: err}
		}
		v.schemas[typ] = schema
	}
	return v, nil
}

// objectTypeForPath reports whether a schema file describes a concrete STIX
// object type, and which one. The file name is the type.
func objectTypeForPath(p string) (string, bool) {
	dir, base := path.Split(p)
	name := strings.TrimSuffix(base, ".json")
	switch {
	case strings.Contains(dir, "sdos/"), strings.Contains(dir, "sros/"):
		return name, true
	case name == "bundle", name == "marking-definition":
		return name, true
	}
	return "", false
}

// ValidateDocument validates one decoded document: either a bundle, whose
// member objects are each checked in turn, or a single object. Failures are
// collected per object; nothing short-circuits.
func (v *Validator) ValidateDocument(doc any) *Results {
	obj, ok := doc.(map[string]any)
	if !ok {
		return &Results{Fatal: &SchemaError{Message: "input document must be a JSON object"}}
	}

	results := &Results{Valid: true}
	if typ, _ := obj["type"].(string); typ == "bundle" {
		results.add(v.validateObjectAt(obj, nil))
		objects, _ := obj["objects"].([]any)
		for i, member := range objects {
			memberObj, ok := member.(map[string]any)
			if !ok {
				results.add(&ObjectResult{
					Errors: []*SchemaError{{Message: fmt.Sprintf("objects[%d]: must be a JSON object", i)}},
				})
				continue
			}
			prefix := []PathElement{PathKey("objects"), PathIndex(i)}
			memberResult := v.validateObjectAt(memberObj, prefix)
			memberResult.Path = []string{"objects", strconv.Itoa(i)}
			results.add(memberResult)
		}
	} else {
		results.add(v.validateObjectAt(obj, nil))
	}
	return results
}

func (r *Results) add(o *ObjectResult) {
	o.Valid = len(o.Errors) == 0
	if !o.Valid {
		r.Valid = false
	}
	r.Objects = append(r.Objects, o)
}

// validateObjectAt validates one object. The prefix, when present, locates
// the object inside its enclosing bundle and is prepended to every schema
// error path.
func (v *Validator) validateObjectAt(obj map[string]any, prefix []PathElement) *ObjectResult {
	id, _ := obj["id"].(string)
	result := &ObjectResult{ID: id}

	addError := func(rec *ErrorRecord) {
		result.Errors = append(result.Errors, &SchemaError{Message: PrettyError(rec, v.opts.Verbose)})
	}
	addWarning := func(rec *ErrorRecord) {
		se := &SchemaError{Message: PrettyError(rec, v.opts.Verbose)}
		if v.opts.Strict {
			result.Errors = append(result.Errors, se)
		} else {
			result.Warnings = append(result.Warnings, se)
		}
	}

	typ, _ := obj["type"].(string)
	if typ == "" {
		rec, _ := NewJSONError("object is missing its 'type' property", id, "")
		addError(rec)
		return result
	}

	schema, ok := v.schemas[typ]
	if !ok {
		rec, _ := NewJSONError(fmt.Sprintf("no schema available for object type '%s'", typ), id, "")
		addError(rec)
		return result
	}

	var instance any = obj
	if err := schema.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			for _, rec := range v.recordsFromValidationError(valErr, obj) {
				rec.Path = append(append([]PathElement{}, prefix...), rec.Path...)
				addError(rec)
			}
		} else {
			result.Errors = append(result.Errors, NewSchemaError(err))
		}
	}

	for _, rec := range v.runMustChecks(obj) {
		addError(rec)
	}
	shoulds, err := v.runShouldChecks(obj, typ)
	if err != nil {
		// Unknown check code: a bug in our own tables, surface loudly.
		result.Errors = append(result.Errors, NewSchemaError(err))
	}
	for _, rec := range shoulds {
		addWarning(rec)
	}
	return result
}

// recordsFromValidationError flattens a jsonschema cause tree into
// ErrorRecords. Combinator failures (anyOf, oneOf, not) are reported as
// themselves rather than their branch causes, matching how the rewrite
// rules reason about them.
func (v *Validator) recordsFromValidationError(root *jsonschema.ValidationError, instance any) []*ErrorRecord {
	var leaves []*jsonschema.ValidationError
	collectLeaves(root, &leaves)

	records := make([]*ErrorRecord, 0, len(leaves))
	for _, e := range leaves {
		records = append(records, v.recordFromError(e, instance))
	}
	return records
}

func collectLeaves(e *jsonschema.ValidationError, out *[]*jsonschema.ValidationError) {
	switch keywordOf(e) {
	case "anyOf", "oneOf", "not":
		*out = append(*out, e)
		return
	}
	if len(e.Causes) == 0 {
		*out = append(*out, e)
		return
	}
	for _, cause := range e.Causes {
		collectLeaves(cause, out)
	}
}

func keywordOf(e *jsonschema.ValidationError) string {
	if e.ErrorKind == nil {
		return ""
	}
	kp := e.ErrorKind.KeywordPath()
	if len(kp) == 0 {
		return ""
	}
	return kp[len(kp)-1]
}

// recordFromError builds the canonical record for one failure: instance path
// and failing value from the error's instance location, subschema and
// keyword value resolved from the raw schema documents via the error's
// schema URL fragment.
func (v *Validator) recordFromError(e *jsonschema.ValidationError, instance any) *ErrorRecord {
	pathElems := toPathElements(e.InstanceLocation)
	failing := resolvePointer(instance, e.InstanceLocation)

	docURL, fragment := splitSchemaURL(e.SchemaURL)
	sub, _ := resolvePointer(v.raw[docURL], fragment).(map[string]any)

	var kwPath []string
	if e.ErrorKind != nil {
		kwPath = e.ErrorKind.KeywordPath()
	}
	keyword := ""
	if len(kwPath) > 0 {
		keyword = kwPath[len(kwPath)-1]
	}
	value := resolvePointer(sub, kwPath)

	title, _ := sub["title"].(string)
	rec := &ErrorRecord{
		Path:           pathElems,
		Validator:      keyword,
		ValidatorValue: value,
		Schema:         SchemaInfo{Title: title, Raw: sub},
		SchemaPath:     append(append([]string{}, fragment...), kwPath...),
		Instance:       failing,
		Source:         SourceSchema,
	}
	rec.Message = synthesizeMessage(rec, sub, e)
	return rec
}

// synthesizeMessage produces the terse message for a record in the classic
// jsonschema wording the rewrite rules are written against.
func synthesizeMessage(rec *ErrorRecord, sub map[string]any, e *jsonschema.ValidationError) string {
	switch rec.Validator {
	case "pattern":
		return fmt.Sprintf("%s does not match %s", pyRepr(rec.Instance), pyRepr(rec.ValidatorValue))
	case "enum":
		return fmt.Sprintf("%s is not one of %s", pyRepr(rec.Instance), serializeJSON(rec.ValidatorValue))
	case "required":
		return requiredMessage(rec.Instance, rec.ValidatorValue)
	case "additionalProperties":
		return additionalPropertiesMessage(rec.Instance, sub)
	case "anyOf", "oneOf":
		return fmt.Sprintf("%s is not valid under any of the given schemas", serializeJSON(rec.Instance))
	case "not":
		return fmt.Sprintf("%s is not allowed for %s", serializeJSON(rec.ValidatorValue), pyRepr(rec.Instance))
	case "type":
		return fmt.Sprintf("%s is not of type %s", pyRepr(rec.Instance), serializeJSON(rec.ValidatorValue))
	case "minItems":
		return fmt.Sprintf("%s is too short", serializeJSON(rec.Instance))
	case "maxItems":
		return fmt.Sprintf("%s is too long", serializeJSON(rec.Instance))
	case "minLength":
		return fmt.Sprintf("%s is too short", pyRepr(rec.Instance))
	case "maxLength":
		return fmt.Sprintf("%s is too long", pyRepr(rec.Instance))
	}
	return strippedErrorText(e)
}

func requiredMessage(instance, value any) string {
	var missing []string
	obj, _ := instance.(map[string]any)
	if names, ok := value.([]any); ok {
		for _, n := range names {
			name, _ := n.(string)
			if _, present := obj[name]; !present {
				missing = append(missing, name)
			}
		}
	}
	switch len(missing) {
	case 0:
		return "a required property is missing"
	case 1:
		return fmt.Sprintf("'%s' is a required property", missing[0])
	}
	return fmt.Sprintf("'%s' are required properties", strings.Join(missing, "', '"))
}

// additionalPropertiesMessage names the instance properties the subschema
// does not account for through properties or patternProperties.
func additionalPropertiesMessage(instance any, sub map[string]any) string {
	obj, _ := instance.(map[string]any)
	props, _ := sub["properties"].(map[string]any)
	patterns, _ := sub["patternProperties"].(map[string]any)

	var extras []string
	for name := range obj {
		if _, ok := props[name]; ok {
			continue
		}
		matched := false
		for pat := range patterns {
			if re, err := regexp.Compile(pat); err == nil && re.MatchString(name) {
				matched = true
				break
			}
		}
		if !matched {
			extras = append(extras, name)
		}
	}
	if len(extras) == 0 {
		return "Additional properties are not allowed"
	}
	if len(extras) == 1 {
		return fmt.Sprintf("Additional properties are not allowed ('%s' was unexpected)", extras[0])
	}
	return fmt.Sprintf("Additional properties are not allowed ('%s' were unexpected)",
		strings.Join(extras, "', '"))
}

// strippedErrorText falls back to the library's own message, minus its
// location prefix, for keywords we do not synthesize.
var locationPrefixRe = regexp.MustCompile(`^(- )?at '[^']*': `)

func strippedErrorText(e *jsonschema.ValidationError) string {
	text := e.Error()
	if i := strings.LastIndex(text, "\n"); i >= 0 {
		text = text[i+1:]
	}
	return locationPrefixRe.ReplaceAllString(strings.TrimSpace(text), "")
}

// pyRepr quotes strings the way validation messages conventionally do and
// serializes everything else as JSON.
func pyRepr(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return serializeJSON(v)
}

// toPathElements converts an instance location into path segments, treating
// all-digit segments as array indices.
func toPathElements(segments []string) []PathElement {
	elems := make([]PathElement, 0, len(segments))
	for _, seg := range segments {
		if idx, ok := parseIndexSegment(seg); ok {
			elems = append(elems, PathIndex(idx))
		} else {
			elems = append(elems, PathKey(seg))
		}
	}
	return elems
}

func parseIndexSegment(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}

// resolvePointer walks a decoded document or schema by pointer segments.
// Paths that do not resolve degrade to nil rather than failing the report.
func resolvePointer(doc any, segments []string) any {
	current := doc
	for _, seg := range segments {
		switch node := current.(type) {
		case map[string]any:
			current = node[seg]
		case []any:
			idx, ok := parseIndexSegment(seg)
			if !ok || idx < 0 || idx >= len(node) {
				return nil
			}
			current = node[idx]
		default:
			return nil
		}
	}
	return current
}

// splitSchemaURL separates a schema URL into its resource URL and decoded
// fragment pointer segments.
func splitSchemaURL(url string) (string, []string) {
	base, frag, found := strings.Cut(url, "#")
	if !found || frag == "" || frag == "/" {
		return base, nil
	}
	frag = strings.TrimPrefix(frag, "/")
	segments := strings.Split(frag, "/")
	for i, seg := range segments {
		seg = strings.ReplaceAll(seg, "~1", "/")
		seg = strings.ReplaceAll(seg, "~0", "~")
		segments[i] = seg
	}
	return base, segments
}
