package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"ERR_SOMETHING_NEW", http.StatusInternalServerError},
		{"NOT_FOUND", http.StatusNotFound},
		{"PROJECT_NOT_FOUND", http.StatusNotFound},
		{"UNKNOWN_MEASUREMENT", http.StatusNotFound},
		{"PROJECT_CODE_EXISTS", http.StatusConflict},
		{"EMAIL_IN_USE", http.StatusConflict},
		{"ALREADY_PROCESSED", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_PROJECT_TITLE", http.StatusBadRequest},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"ACCESS_DENIED", http.StatusForbidden},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"WRONG_EXPERIMENT", http.StatusUnprocessableEntity},
		{"DATA_ATTACHED", http.StatusUnprocessableEntity},
		{"SAMPLE_DELETION_FAILED", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Resource not found", "req-123")

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)

	data, err := json.Marshal(resp)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_NOT_FOUND","message":"Resource not found","request_id":"req-123"}}`, string(data))
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
		{Field: "title", Message: "This field is required"},
	}
	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 12, 10, 5)

	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, &Meta{Total: 12, Offset: 10, Limit: 5}, resp.Meta)
}

func TestListRequest_ToFilter(t *testing.T) {
	f := ListRequest{}.ToFilter()
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, DefaultLimit, f.Limit)

	f = ListRequest{Offset: 40, Limit: 20, Sort: "-title", Search: "plant"}.ToFilter()
	assert.Equal(t, 40, f.Offset)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "title", f.OrderBy)
	assert.Equal(t, "desc", f.OrderDir)
	assert.Equal(t, "plant", f.Search)

	f = ListRequest{Sort: "code"}.ToFilter()
	assert.Equal(t, "code", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
}
