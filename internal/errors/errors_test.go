package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/freqctl/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestFactoryMessages(t *testing.T) {
	f := errors.New()

	assert.Equal(t, "Invalid argument provided", f.New(errors.ErrInvalidArgument).Error())
	assert.Equal(t, "custom", f.WithMessage(errors.ErrInternal, "custom").Error())
	assert.Equal(t, "Resource not available: boom", f.Wrap(errors.ErrNotAvailable, fmt.Errorf("boom")).Error())
	assert.Equal(t, "Invalid argument provided: min above max", f.WithData(errors.ErrInvalidArgument, "min above max").Error())
}

func TestCodeOf(t *testing.T) {
	f := errors.New()

	assert.Equal(t, errors.ErrorCode(""), errors.CodeOf(nil))
	assert.Equal(t, errors.ErrInternal, errors.CodeOf(fmt.Errorf("plain")))

	wrapped := fmt.Errorf("outer: %w", f.Wrap(errors.ErrNotAvailable, fmt.Errorf("io")))
	assert.Equal(t, errors.ErrNotAvailable, errors.CodeOf(wrapped))
}

func TestHasCodeAndIs(t *testing.T) {
	f := errors.New()
	inner := f.New(errors.ErrUnsupported)
	outer := f.Wrap(errors.ErrNotAvailable, inner)

	assert.True(t, errors.HasCode(outer, errors.ErrUnsupported))
	assert.True(t, errors.HasCode(outer, errors.ErrNotAvailable))
	assert.False(t, errors.HasCode(outer, errors.ErrInvalidArgument))

	assert.True(t, errors.Is(outer, f.New(errors.ErrUnsupported)))
	assert.False(t, errors.Is(outer, f.New(errors.ErrInvalidArgument)))
}
