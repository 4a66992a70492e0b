package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-workforce/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps status and code", func(t *testing.T) {
		err := apperror.New(apperror.CodeInvalidState, "request is not pending", http.StatusConflict)

		got := apperror.ToHTTP(fmt.Errorf("approve: %w", err))

		assert.Equal(t, http.StatusConflict, got.Status)
		assert.Equal(t, apperror.CodeInvalidState, got.Code)
		assert.Equal(t, "request is not pending", got.Message)
		assert.Nil(t, got.Details)
	})

	t.Run("field is exposed as details", func(t *testing.T) {
		got := apperror.ToHTTP(apperror.RequiredField("Start Date").WithField("start_date"))

		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.Equal(t, apperror.CodeValidation, got.Code)
		assert.Equal(t, "Start Date is required", got.Message)
		assert.Equal(t, map[string]string{"field": "start_date"}, got.Details)
	})

	t.Run("unknown error is hidden", func(t *testing.T) {
		got := apperror.ToHTTP(errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, apperror.CodeInternalError, got.Code)
		assert.NotContains(t, got.Message, "pq")
	})
}

func TestWithFieldDoesNotMutateSentinel(t *testing.T) {
	base := apperror.New(apperror.CodeValidation, "bad", http.StatusBadRequest)
	_ = base.WithField("x")
	assert.Empty(t, base.Field)
}
