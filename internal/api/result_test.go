package api_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/freqctl/internal/api"
	"codeberg.org/mutker/freqctl/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestResultFromError(t *testing.T) {
	errFactory := errors.New()

	tests := []struct {
		name string
		err  error
		want api.Result
	}{
		{"nil", nil, api.Success},
		{"invalid argument", errFactory.New(errors.ErrInvalidArgument), api.ErrorInvalidArgument},
		{"not available", errFactory.New(errors.ErrNotAvailable), api.ErrorNotAvailable},
		{"unsupported", errFactory.New(errors.ErrUnsupported), api.ErrorUnsupportedFeature},
		{"wrapped", errFactory.Wrap(errors.ErrNotAvailable, fmt.Errorf("read failed")), api.ErrorNotAvailable},
		{"other code", errFactory.New(errors.ErrTimeout), api.ErrorUnknown},
		{"plain error", fmt.Errorf("boom"), api.ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, api.ResultFromError(tt.err))
		})
	}
}

func TestResultErrRoundTrip(t *testing.T) {
	results := []api.Result{
		api.Success,
		api.ErrorInvalidArgument,
		api.ErrorNotAvailable,
		api.ErrorUnsupportedFeature,
		api.ErrorUnknown,
	}

	for _, r := range results {
		assert.Equal(t, r, api.ResultFromError(r.Err()), r.String())
	}
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "success", api.Success.String())
	assert.Equal(t, "invalid_argument", api.ErrorInvalidArgument.String())
	assert.Equal(t, "not_available", api.ErrorNotAvailable.String())
	assert.Equal(t, "unsupported_feature", api.ErrorUnsupportedFeature.String())
	assert.Equal(t, "unknown", api.Result(42).String())
}
