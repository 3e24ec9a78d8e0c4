package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsFindsWrappedError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("submit: %w", Wrap(CodeDependency, cause, "webhook unavailable"))

	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, CodeDependency, typed.Code())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDependency, CodeOf(err))
}

func TestCodeOfUntyped(t *testing.T) {
	assert.Nil(t, As(errors.New("plain")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestMetadataFallsBackToInternal(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, MetadataFor(CodeValidation).HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Code("WHAT")).HTTPStatus)
}

func TestErrorString(t *testing.T) {
	err := New(CodeValidation, "cart is empty").WithDetails(map[string]string{"cart": "empty"})
	assert.Equal(t, "VALIDATION_ERROR: cart is empty", err.Error())
	assert.Equal(t, map[string]string{"cart": "empty"}, err.Details())
}
