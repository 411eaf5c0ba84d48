package contract

import (
	"fmt"
	"strings"
)

// MalformedKind distinguishes text that is not JSON from JSON of the wrong shape.
type MalformedKind string

const (
	KindNotJSON    MalformedKind = "not_json"
	KindWrongShape MalformedKind = "wrong_shape"
)

// FieldError is one schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MalformedResponseError reports a model response that could not become a
// ResumeRecord. Raw is the untouched model text.
type MalformedResponseError struct {
	Kind   MalformedKind
	Raw    string
	Fields []FieldError
	Err    error
}

func (e *MalformedResponseError) Error() string {
	switch {
	case len(e.Fields) > 0:
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		return fmt.Sprintf("malformed model response (%s): %s", e.Kind, strings.Join(parts, "; "))
	case e.Err != nil:
		return fmt.Sprintf("malformed model response (%s): %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("malformed model response (%s)", e.Kind)
	}
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
