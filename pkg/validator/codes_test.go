package validator

import (
	"errors"
	"testing"
)

func TestCheckCodeRegistryBijective(t *testing.T) {
	if len(codeToName) != len(checkCodePairs) || len(nameToCode) != len(checkCodePairs) {
		t.Fatalf("registry size mismatch: %d pairs, %d codes, %d names",
			len(checkCodePairs), len(codeToName), len(nameToCode))
	}
	for _, p := range checkCodePairs {
		code, err := CodeForName(p.name)
		if err != nil {
			t.Errorf("CodeForName(%q) returned error: %v", p.name, err)
			continue
		}
		if code != p.code {
			t.Errorf("CodeForName(%q) = %d, want %d", p.name, code, p.code)
		}
		name, ok := NameForCode(p.code)
		if !ok || name != p.name {
			t.Errorf("NameForCode(%d) = %q, %v, want %q", p.code, name, ok, p.name)
		}
	}
}

func TestCodeForNameUnknown(t *testing.T) {
	_, err := CodeForName("no-such-check")
	if err == nil {
		t.Fatal("expected error for unknown check name")
	}
	if !errors.Is(err, ErrUnknownCheckCode) {
		t.Errorf("error %v does not wrap ErrUnknownCheckCode", err)
	}
}

func TestNameForCodeUnknown(t *testing.T) {
	if name, ok := NameForCode(999); ok {
		t.Errorf("NameForCode(999) = %q, want miss", name)
	}
}
