// Package api holds the result codes shared by the versioned frequency
// surfaces in api/v1 (legacy) and api/v2 (current).
package api

import "codeberg.org/mutker/freqctl/internal/errors"

// Result is the status code returned by every versioned API call.
type Result int32

const (
	Success Result = iota
	ErrorInvalidArgument
	ErrorNotAvailable
	ErrorUnsupportedFeature
	ErrorUnknown
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case ErrorInvalidArgument:
		return "invalid_argument"
	case ErrorNotAvailable:
		return "not_available"
	case ErrorUnsupportedFeature:
		return "unsupported_feature"
	default:
		return "unknown"
	}
}

// Err converts a non-success result back into an error carrying the
// matching code, for callers that prefer error values.
func (r Result) Err() error {
	errFactory := errors.New()

	switch r {
	case Success:
		return nil
	case ErrorInvalidArgument:
		return errFactory.New(errors.ErrInvalidArgument)
	case ErrorNotAvailable:
		return errFactory.New(errors.ErrNotAvailable)
	case ErrorUnsupportedFeature:
		return errFactory.New(errors.ErrUnsupported)
	default:
		return errFactory.New(errors.ErrInternal)
	}
}

// ResultFromError maps an error to its result code by the outermost code in
// its chain.
func ResultFromError(err error) Result {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrInvalidArgument:
		return ErrorInvalidArgument
	case errors.ErrNotAvailable:
		return ErrorNotAvailable
	case errors.ErrUnsupported:
		return ErrorUnsupportedFeature
	default:
		return ErrorUnknown
	}
}
