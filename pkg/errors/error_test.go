package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/sinly-lab/sinly-quant/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := errors.New(errors.ErrCodeDataNotFound, "nothing here")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDataNotFound, errors.GetCode(err))
	assert.Contains(t, err.Error(), "nothing here")
}

func TestNewfFormats(t *testing.T) {
	err := errors.Newf(errors.ErrCodeInvalidParameter, "bad value %d", 42)

	assert.Contains(t, err.Error(), "bad value 42")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.Wrap(errors.ErrCodeQueryFailed, "insert failed", cause)

	assert.Equal(t, errors.ErrCodeQueryFailed, errors.GetCode(err))
	assert.ErrorIs(t, err, cause)
}

func TestWrapfPreservesCauseThroughFmt(t *testing.T) {
	cause := errors.New(errors.ErrCodeInsufficientCash, "not enough cash")
	wrapped := errors.Wrapf(errors.ErrCodeBacktestRunAborted, cause, "strategy %s", "demo")
	outer := fmt.Errorf("run failed: %w", wrapped)

	assert.True(t, errors.HasCode(outer, errors.ErrCodeBacktestRunAborted))
	assert.ErrorIs(t, outer, cause)
}

func TestGetCodeOnForeignError(t *testing.T) {
	assert.Equal(t, errors.ErrCodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeUnknown, errors.GetCode(nil))
}

func TestHasCodeMismatch(t *testing.T) {
	err := errors.New(errors.ErrCodeInvalidSignal, "bad signal")

	assert.False(t, errors.HasCode(err, errors.ErrCodeInvalidFill))
}
