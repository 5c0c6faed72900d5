package validator

import "strconv"

// Options controls a validation run. The zero value runs every check and
// reports terse messages.
type Options struct {
	// Verbose switches PrettyError to the long record form.
	Verbose bool

	// Strict promotes SHOULD-requirement warnings to errors.
	Strict bool

	// Disabled lists check codes or names whose SHOULD checks are skipped.
	Disabled []string

	// Enabled, when non-empty, restricts SHOULD checks to the listed codes
	// or names.
	Enabled []string
}

// checkEnabled reports whether the named SHOULD check runs under these
// options. Selectors may be symbolic names, exact numeric codes, or the
// group selectors 1/format-checks and 2/approved-values.
func (o *Options) checkEnabled(name string) bool {
	if len(o.Enabled) > 0 && !anySelectorMatches(o.Enabled, name) {
		return false
	}
	return !anySelectorMatches(o.Disabled, name)
}

func anySelectorMatches(selectors []string, name string) bool {
	for _, sel := range selectors {
		if selectorMatches(sel, name) {
			return true
		}
	}
	return false
}

func selectorMatches(sel, name string) bool {
	if sel == name {
		return true
	}
	code, ok := nameToCode[name]
	if !ok {
		return false
	}
	if n, err := strconv.Atoi(sel); err == nil {
		if n == code {
			return true
		}
		// Group codes select every check in their hundred-range.
		if n == 1 && code >= 100 && code < 200 {
			return true
		}
		if n == 2 && code >= 200 && code < 300 {
			return true
		}
	}
	if sel == "format-checks" && code >= 100 && code < 200 {
		return true
	}
	if sel == "approved-values" && code >= 200 && code < 300 {
		return true
	}
	return false
}
