package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPresentation(t *testing.T) {
	cases := map[Code]Metadata{
		CodeValidation:          {http.StatusBadRequest, "validation failed", false, true},
		CodeUnauthorized:        {http.StatusUnauthorized, "authentication required", false, false},
		CodeForbidden:           {http.StatusForbidden, "access denied", false, false},
		CodeNotFound:            {http.StatusNotFound, "resource not found", false, false},
		CodeInvalidTransition:   {http.StatusUnprocessableEntity, "listing transition not allowed", false, true},
		CodeStateConflict:       {http.StatusUnprocessableEntity, "state transition disallowed", false, true},
		CodeConcurrencyConflict: {http.StatusConflict, "resource was modified concurrently", true, true},
		CodeInsufficientBalance: {http.StatusUnprocessableEntity, "insufficient balance", false, true},
		CodeRateLimit:           {http.StatusTooManyRequests, "rate limit exceeded", false, false},
		CodeDependency:          {http.StatusServiceUnavailable, "dependency unavailable", true, true},
		CodeInternal:            {http.StatusInternalServerError, "internal server error", true, false},
	}
	for code, want := range cases {
		assert.Equal(t, want, MetadataFor(code), code)
	}
	assert.Equal(t, registry[CodeInternal], MetadataFor("SOMETHING_UNKNOWN"))
}

func TestEveryCodeIsRegistered(t *testing.T) {
	for _, code := range []Code{
		CodeValidation, CodeUnauthorized, CodeForbidden, CodeNotFound, CodeConflict,
		CodeInvalidTransition, CodeStateConflict, CodeConcurrencyConflict,
		CodeInsufficientBalance, CodeIdempotency, CodeRateLimit, CodeDependency, CodeInternal,
	} {
		_, ok := registry[code]
		assert.True(t, ok, code)
	}
}

func TestWrapKeepsCauseAndDetails(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "load listing").WithDetails(map[string]any{"listing_id": "l-1"})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DEPENDENCY_ERROR: load listing", err.Error())
	assert.Equal(t, map[string]any{"listing_id": "l-1"}, err.Details())
	assert.Nil(t, New(CodeValidation, "x").Details())
}

func TestNilErrorIsInert(t *testing.T) {
	var e *Error
	assert.Equal(t, CodeInternal, e.Code())
	assert.Empty(t, e.Message())
	assert.Empty(t, e.Error())
	assert.Nil(t, e.Details())
	assert.Nil(t, e.WithDetails("ignored"))
	assert.NoError(t, e.Unwrap())
}

func TestIsCodeFollowsWrappedChain(t *testing.T) {
	err := fmt.Errorf("freeze listing: %w", New(CodeConcurrencyConflict, "listing version changed"))

	require.NotNil(t, As(err))
	assert.True(t, IsCode(err, CodeConcurrencyConflict))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(nil, CodeInternal))
	assert.Nil(t, As(stderrors.New("plain")))
}

func TestAsPicksOutermostTypedError(t *testing.T) {
	inner := New(CodeNotFound, "listing not found")
	outer := Wrap(CodeDependency, inner, "moderate listing")

	assert.Equal(t, CodeDependency, As(outer).Code())
	assert.True(t, stderrors.Is(outer, inner))
}
