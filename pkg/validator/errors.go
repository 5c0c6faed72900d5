package validator

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCheckCode reports a check-code name that is missing from the
	// fixed registry. The code tables are paired at build time, so hitting
	// this is a programming error rather than bad input.
	ErrUnknownCheckCode = errors.New("unknown check code")

	// ErrNoFilesFound reports that input discovery matched no JSON or YAML
	// files. It is fatal to the invoking run.
	ErrNoFilesFound = errors.New("no JSON or YAML files found")
)

// SchemaInvalidError reports that a schema document itself cannot be used
// for validation. It aborts the run before any instance is checked.
type SchemaInvalidError struct {
	Schema string
	Err    error
}

func (e *SchemaInvalidError) Error() string {
	return fmt.Sprintf("invalid schema %s: %v", e.Schema, e.Err)
}

func (e *SchemaInvalidError) Unwrap() error { return e.Err }

// NewJSONError builds the record for a failure raised by one of our own
// checks rather than the generic schema validator. When a check code is
// given, its number is resolved through the registry and prepended to the
// message as "{code} ". The path is the two-element [instanceID, 0]
// convention marking a whole-object error, and the record is tagged so the
// rewriter leaves its wording alone.
func NewJSONError(msg, instanceID, checkCode string) (*ErrorRecord, error) {
	if checkCode != "" {
		code, err := CodeForName(checkCode)
		if err != nil {
			return nil, err
		}
		msg = fmt.Sprintf("{%d} %s", code, msg)
	}
	return &ErrorRecord{
		Message: msg,
		Path:    []PathElement{PathKey(instanceID), PathIndex(0)},
		Source:  SourceCustom,
	}, nil
}

// SchemaError is the display form of a single validation failure handed to
// the reporting layer. It carries only the final message text.
type SchemaError struct {
	Message string `json:"message"`
}

// NewSchemaError wraps an error's text; a nil error yields an empty message.
func NewSchemaError(err error) *SchemaError {
	if err == nil {
		return &SchemaError{}
	}
	return &SchemaError{Message: err.Error()}
}

// AsDict returns the map representation used for machine-readable output.
func (e *SchemaError) AsDict() map[string]any {
	return map[string]any{"message": e.Message}
}

func (e *SchemaError) Error() string { return e.Message }
