package frequency

import "codeberg.org/mutker/freqctl/internal/errors"

const (
	// Caller errors
	ErrInvalidRange  = errors.ErrInvalidArgument
	ErrInvalidHandle = errors.ErrInvalidArgument
	ErrInvalidCount  = errors.ErrInvalidArgument

	// Hardware errors
	ErrNotAvailable = errors.ErrNotAvailable
	ErrUnsupported  = errors.ErrUnsupported

	// Discovery errors
	ErrInvalidSource = errors.ErrorCode("frequency_invalid_source")
)
