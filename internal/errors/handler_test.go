package errors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketlens/internal/infrastructure"
	"marketlens/internal/shared/testutil"
)

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "session not found api error",
			err:        ErrSessionNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "validation api error",
			err:        ErrValidation("limit", "Limit must be an integer"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "unreadable file app error",
			err:        NewUnreadableFileError("cannot open workbook", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeUnreadableFile,
		},
		{
			name:       "empty dataset app error",
			err:        NewEmptyDatasetError("no usable rows"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeEmptyDataset,
		},
		{
			name:       "not found app error",
			err:        NewNotFoundError("session"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown error",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/sessions/x", nil)

			handler.HandleError(rr, req, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)

			var problem map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem["type"])
			assert.Equal(t, float64(tt.wantStatus), problem["status"])
			assert.Equal(t, "/api/sessions/x", problem["instance"])
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rr := httptest.NewRecorder()
	handler.HandleError(rr, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Empty(t, rr.Body.String())
	assert.Empty(t, logs.Records())
}

func TestErrorHandler_IncludeCause(t *testing.T) {
	err := NewUnreadableFileError("cannot open workbook", assert.AnError)

	t.Run("hidden in production", func(t *testing.T) {
		logger, _ := testutil.NewTestLogger(t)
		handler := NewErrorHandler(logger, false)

		rr := httptest.NewRecorder()
		handler.HandleError(rr, httptest.NewRequest(http.MethodGet, "/", nil), err)

		assert.NotContains(t, rr.Body.String(), assert.AnError.Error())
	})

	t.Run("echoed in development", func(t *testing.T) {
		logger, _ := testutil.NewTestLogger(t)
		handler := NewErrorHandler(logger, true)

		rr := httptest.NewRecorder()
		handler.HandleError(rr, httptest.NewRequest(http.MethodGet, "/", nil), err)

		assert.Contains(t, rr.Body.String(), assert.AnError.Error())
	})
}

func TestErrorHandler_TraceIDExtension(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/x", nil)
	req = req.WithContext(infrastructure.WithTraceID(req.Context(), "req-123"))

	rr := httptest.NewRecorder()
	handler.HandleError(rr, req, ErrSessionNotFound)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, "req-123", problem["trace_id"], "the request's trace id must reach the problem response")
}

func TestErrorHandler_AppErrorContextExtensions(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	err := NewUnreadableFileError("missing required column", nil).
		WithContext("column", "Revenue")

	rr := httptest.NewRecorder()
	handler.HandleError(rr, httptest.NewRequest(http.MethodPost, "/api/sessions", nil), err)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, "Revenue", problem["column"])
	assert.Equal(t, "UNREADABLE_FILE", problem["error_type"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "bad limit", "/api/x").
		WithExtension("field", "limit")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeValidation, decoded["type"])
	assert.Equal(t, "bad limit", decoded["detail"])
	assert.Equal(t, "limit", decoded["field"])
}
