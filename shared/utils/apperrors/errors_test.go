package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Forbidden("no authority"), http.StatusForbidden},
		{InvalidState("already decided"), http.StatusConflict},
		{NotFound("unit", "abc"), http.StatusNotFound},
		{&Error{Kind: "UNKNOWN"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus())
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := InvalidState("request already decided")
	wrapped := fmt.Errorf("decide: %w", base)

	appErr := As(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, KindInvalidState, appErr.Kind)

	assert.Nil(t, As(errors.New("plain error")))
	assert.Nil(t, As(nil))
}

func TestIsKind(t *testing.T) {
	err := Forbidden("checker not eligible")
	assert.True(t, IsKind(err, KindForbidden))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(errors.New("plain"), KindForbidden))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Validation("cannot load units"), cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "cannot load units")
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("approval request", "42")
	assert.Equal(t, "approval request not found: 42", err.Message)
}
