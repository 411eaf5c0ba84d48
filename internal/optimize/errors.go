package optimize

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"resume-optimizer/internal/extract"
	"resume-optimizer/internal/llm"
	"resume-optimizer/resume/contract"
)

// Kind classifies a failed optimize or ingest call.
type Kind string

const (
	KindExtraction   Kind = "extraction_error"
	KindModel        Kind = "model_error"
	KindMalformed    Kind = "malformed_response"
	KindArchival     Kind = "archival_error"
	KindInvalidInput Kind = "invalid_input"
	KindInternal     Kind = "internal"
)

// ErrInvalidInput marks a request rejected before any work started.
var ErrInvalidInput = errors.New("invalid input")

// Failure is the error returned by Service. Raw holds the model text when
// one was received.
type Failure struct {
	Kind Kind
	Err  error
	Raw  string
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Timeout reports whether the failure was a model deadline.
func (f *Failure) Timeout() bool {
	return f.Kind == KindModel && errors.Is(f.Err, context.DeadlineExceeded)
}

// KindOf maps err to its kind. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	var (
		extractErr   *extract.Error
		modelErr     *llm.ModelError
		malformedErr *contract.MalformedResponseError
		validation   validator.ValidationErrors
	)
	switch {
	case errors.As(err, &extractErr):
		return KindExtraction
	case errors.As(err, &modelErr):
		return KindModel
	case errors.As(err, &malformedErr):
		return KindMalformed
	case errors.As(err, &validation), errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindInternal
	}
}

// RawOf returns the raw model text carried by err, if any.
func RawOf(err error) string {
	var failure *Failure
	if errors.As(err, &failure) && failure.Raw != "" {
		return failure.Raw
	}
	var malformedErr *contract.MalformedResponseError
	if errors.As(err, &malformedErr) {
		return malformedErr.Raw
	}
	return ""
}
