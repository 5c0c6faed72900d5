package validator

import "fmt"

// checkCodePairs is the fixed table of custom-check codes. Codes under 100
// name whole groups; 1xx codes are format checks and 2xx codes are
// approved-value checks. The table is defined once here and never mutated.
var checkCodePairs = []struct {
	code int
	name string
}{
	{1, "format-checks"},
	{101, "custom-prefix"},
	{102, "custom-prefix-lax"},
	{111, "open-vocab-format"},
	{121, "kill-chain-names"},
	{2, "approved-values"},
	{201, "marking-definition-type"},
	{202, "relationship-types"},
	{210, "all-vocabs"},
	{213, "identity-class"},
	{214, "indicator-types"},
	{216, "malware-types"},
	{218, "report-types"},
	{219, "threat-actor-types"},
	{222, "tool-types"},
}

var (
	codeToName = make(map[int]string, len(checkCodePairs))
	nameToCode = make(map[string]int, len(checkCodePairs))
)

func init() {
	for _, p := range checkCodePairs {
		if _, dup := codeToName[p.code]; dup {
			panic(fmt.Sprintf("duplicate check code %d", p.code))
		}
		if _, dup := nameToCode[p.name]; dup {
			panic(fmt.Sprintf("duplicate check name %q", p.name))
		}
		codeToName[p.code] = p.name
		nameToCode[p.name] = p.code
	}
}

// CodeForName resolves a symbolic check name to its numeric code. The table
// is fixed at build time, so an unknown name is a bug in the caller, not a
// user error.
func CodeForName(name string) (int, error) {
	code, ok := nameToCode[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCheckCode, name)
	}
	return code, nil
}

// NameForCode resolves a numeric check code back to its symbolic name.
func NameForCode(code int) (string, bool) {
	name, ok := codeToName[code]
	return name, ok
}
