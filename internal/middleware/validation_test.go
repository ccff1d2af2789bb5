package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

func newValidation() *ValidationMiddleware {
	return NewValidationMiddleware(discardLogger(), apperrors.NewErrorHandler(discardLogger(), false))
}

type rateBody struct {
	Selection   *domain.FilterSelection `json:"selection,omitempty"`
	CaptureRate *float64                `json:"capture_rate,omitempty" validate:"omitempty,gte=0"`
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

	details, ok := apiErr.Details.(apperrors.ValidationErrors)
	require.True(t, ok)
	fields := make([]string, len(details.Errors))
	for i, e := range details.Errors {
		fields[i] = e.Field
	}
	return fields
}

func TestValidateStruct(t *testing.T) {
	v := newValidation()
	negative := -5.0
	ok := 30.0

	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
	}{
		{name: "empty selection", input: domain.FilterSelection{}},
		{
			name: "valid selection",
			input: domain.FilterSelection{
				Status:        domain.StatusMapped,
				GroupPresence: domain.GroupPresenceWith,
				SizeBands:     []domain.SizeBand{domain.SizeLarge},
				Royalty:       &domain.Range{Min: 10, Max: 20},
			},
		},
		{name: "unknown status", input: domain.FilterSelection{Status: "everything"}, wantFields: []string{"status"}},
		{name: "unknown size band", input: domain.FilterSelection{SizeBands: []domain.SizeBand{"huge"}}, wantFields: []string{"size_bands[0]"}},
		{name: "inverted range", input: domain.FilterSelection{Royalty: &domain.Range{Min: 50, Max: 10}}, wantFields: []string{"royalty.max"}},
		{name: "valid rate", input: rateBody{CaptureRate: &ok}},
		{name: "negative rate", input: rateBody{CaptureRate: &negative}, wantFields: []string{"capture_rate"}},
		{
			name:       "nested selection",
			input:      rateBody{Selection: &domain.FilterSelection{GroupPresence: "maybe"}},
			wantFields: []string{"selection.group_presence"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantFields, validationFields(t, err))
		})
	}
}

func TestValidateJSON(t *testing.T) {
	v := newValidation()

	var got string
	h := v.ValidateJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"valid body passes through", http.MethodPut, `{"states":["MG"]}`, http.StatusOK},
		{"invalid json", http.MethodPut, `{"states":`, http.StatusBadRequest},
		{"get skipped", http.MethodGet, `{"states":`, http.StatusOK},
		{"empty body", http.MethodPost, "", http.StatusOK},
		{"oversized body", http.MethodPost, `{"x":"` + strings.Repeat("a", DefaultMaxJSONBody) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = ""
			req := httptest.NewRequest(tt.method, "/api/session/selection", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK && tt.method != http.MethodGet {
				assert.Equal(t, tt.body, got)
			}
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	q := NewQueryParamValidator(apperrors.NewErrorHandler(discardLogger(), false))

	t.Run("int", func(t *testing.T) {
		tests := []struct {
			query  string
			want   int
			wantOK bool
		}{
			{"", 7, true},
			{"limit=25", 25, true},
			{"limit=0", 0, true},
			{"limit=-1", 0, false},
			{"limit=abc", 0, false},
			{"limit=1000001", 0, false},
		}
		for _, tt := range tests {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			got, ok := q.ValidateInt(rec, req, "limit", 0, 1000000, 7)
			assert.Equal(t, tt.wantOK, ok, tt.query)
			assert.Equal(t, tt.want, got, tt.query)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		}
	})

	t.Run("enum", func(t *testing.T) {
		allowed := []string{"csv", "xlsx"}
		tests := []struct {
			query  string
			want   string
			wantOK bool
		}{
			{"", "csv", true},
			{"format=xlsx", "xlsx", true},
			{"format=XLSX", "xlsx", true},
			{"format=pdf", "", false},
		}
		for _, tt := range tests {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			got, ok := q.ValidateEnum(rec, req, "format", allowed, "csv")
			assert.Equal(t, tt.wantOK, ok, tt.query)
			assert.Equal(t, tt.want, got, tt.query)
		}
	})

	t.Run("rune", func(t *testing.T) {
		tests := []struct {
			query  string
			want   rune
			wantOK bool
		}{
			{"", 0, true},
			{"delimiter=%2C", ',', true},
			{"delimiter=tab", '\t', true},
			{"delimiter=%3B%3B", 0, false},
			{"delimiter=%22", 0, false},
		}
		for _, tt := range tests {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/?"+tt.query, nil)
			got, ok := q.ValidateRune(rec, req, "delimiter")
			assert.Equal(t, tt.wantOK, ok, tt.query)
			assert.Equal(t, tt.want, got, tt.query)
			if !ok {
				var problem map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
				assert.Equal(t, apperrors.TypeValidation, problem["type"])
			}
		}
	})
}
