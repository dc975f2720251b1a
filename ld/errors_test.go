package ld

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJsonLdError_Error(t *testing.T) {
	t.Run("code only", func(t *testing.T) {
		assert.Equal(t, "loading document failed", NewJsonLdError(LoadingDocumentFailed, nil).Error())
	})
	t.Run("code with details", func(t *testing.T) {
		assert.Equal(t, "invalid @index value: oops", NewJsonLdError(InvalidIndexValue, "oops").Error())
	})
	t.Run("details may be a wrapped error", func(t *testing.T) {
		cause := errors.New("connection refused")
		assert.Equal(t, "loading remote context failed: connection refused",
			NewJsonLdError(LoadingRemoteContextFailed, cause).Error())
	})
}

func TestJsonLdError_Unwrap(t *testing.T) {
	t.Run("Details is error", func(t *testing.T) {
		err := errors.New("failed")
		assert.Equal(t, err, NewJsonLdError(UnknownError, err).Unwrap())
	})
	t.Run("Details is not an error", func(t *testing.T) {
		assert.Nil(t, NewJsonLdError(UnknownError, "failed").Unwrap())
	})
	t.Run("Details is nil", func(t *testing.T) {
		assert.Nil(t, NewJsonLdError(UnknownError, nil).Unwrap())
	})
}
