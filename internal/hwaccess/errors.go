package hwaccess

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"codeberg.org/mutker/freqctl/internal/errors"
)

const (
	ErrAttributeNotSupported = errors.ErrorCode("hwaccess_attribute_not_supported")
	ErrReadFailed            = errors.ErrorCode("hwaccess_read_failed")
	ErrWriteFailed           = errors.ErrorCode("hwaccess_write_failed")
	ErrParseFailed           = errors.ErrorCode("hwaccess_parse_failed")
	ErrNoDevice              = errors.ErrorCode("hwaccess_no_device")

	// NVML
	ErrNVMLInit           = errors.ErrorCode("hwaccess_nvml_init_failed")
	ErrNVMLShutdown       = errors.ErrorCode("hwaccess_nvml_shutdown_failed")
	ErrNVMLNotInitialized = errors.ErrorCode("hwaccess_nvml_not_initialized")
	ErrNVMLDevice         = errors.ErrorCode("hwaccess_nvml_device_not_found")
	ErrNVMLQuery          = errors.ErrorCode("hwaccess_nvml_query_failed")
)

// nvmlError represents an NVML-specific error
type nvmlError struct {
	ret nvml.Return
}

func (e nvmlError) Error() string {
	return nvml.ErrorString(e.ret)
}

// newNVMLError creates an error from an NVML return code
func newNVMLError(ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}
	return &nvmlError{ret: ret}
}

// IsNVMLSuccess checks if a Return value indicates success
func IsNVMLSuccess(ret nvml.Return) bool {
	return ret == nvml.SUCCESS
}
