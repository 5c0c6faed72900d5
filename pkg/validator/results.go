package validator

// ObjectResult holds the outcome for a single STIX object. Errors are MUST
// violations (schema failures plus custom MUST checks); Warnings are SHOULD
// violations, unless strict mode promoted them.
type ObjectResult struct {
	ID       string         `json:"id,omitempty"`
	Valid    bool           `json:"valid"`
	Errors   []*SchemaError `json:"errors,omitempty"`
	Warnings []*SchemaError `json:"warnings,omitempty"`

	// Path locates the object inside the validated document (for example
	// ["objects", "3"]); the reporting layer uses it to look up source
	// positions. Empty for top-level objects.
	Path []string `json:"-"`
}

// Results aggregates the outcomes for every object in one validated
// document. A fatal error (unreadable input, non-object document) is
// reported on its own and leaves Objects empty.
type Results struct {
	Valid   bool            `json:"valid"`
	Objects []*ObjectResult `json:"objects,omitempty"`
	Fatal   *SchemaError    `json:"fatal,omitempty"`
}

// ErrorCount returns the total number of errors across all objects.
func (r *Results) ErrorCount() int {
	n := 0
	if r.Fatal != nil {
		n++
	}
	for _, o := range r.Objects {
		n += len(o.Errors)
	}
	return n
}

// WarningCount returns the total number of warnings across all objects.
func (r *Results) WarningCount() int {
	n := 0
	for _, o := range r.Objects {
		n += len(o.Warnings)
	}
	return n
}
