package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Render(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
	}{
		{"not found", ErrNoDataset, http.StatusNotFound},
		{"validation", ErrValidation("capture_rate", "must be >= 0"), http.StatusBadRequest},
		{"payload too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"internal", NewInternalError("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			require.NoError(t, render.Render(w, r, tt.err))
			assert.Equal(t, tt.wantStatus, w.Code)

			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.err.ErrorCode, body.ErrorCode)
			assert.Equal(t, tt.err.Message, body.Message)
		})
	}
}

func TestAPIErrorHelpers(t *testing.T) {
	invalid := InvalidRequestWithError(errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, invalid.StatusCode)
	assert.Equal(t, "unexpected EOF", invalid.Details)

	notFound := NotFoundError("selection")
	assert.Equal(t, "selection not found", notFound.Error())

	field := ErrValidation("format", "must be csv or xlsx")
	details, ok := field.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "format", details.Field)

	multi := NewValidationErrors([]ValidationError{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}})
	verrs, ok := multi.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, verrs.Errors, 2)

	assert.Equal(t, "VALIDATION_FAILED", NewValidationError("bad").ErrorCode)
}
