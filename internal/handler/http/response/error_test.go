package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "date", Message: "required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"inactive account", auth.ErrAccountInactive, http.StatusForbidden, "FORBIDDEN"},
		{"double clock-in", attendance.ErrAlreadyClockedIn, http.StatusConflict, "CONFLICT"},
		{"wrapped decided", fmt.Errorf("approve: %w", request.ErrAlreadyDecided), http.StatusConflict, "CONFLICT"},
		{"unknown kind", request.ErrUnknownKind, http.StatusNotFound, "NOT_FOUND"},
		{"not requester", request.ErrNotRequester, http.StatusForbidden, "FORBIDDEN"},
		{"future date", request.ErrFutureDate, http.StatusBadRequest, "BAD_REQUEST"},
		{"invalid period", summary.ErrInvalidPeriod, http.StatusBadRequest, "BAD_REQUEST"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	var errs validator.ValidationErrors
	errs.Add("minutes", "must be positive")

	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("submit overtime: %w", errs.Err()))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "must be positive", body.Error.Details["minutes"])
}

func TestFile_SetsAttachmentHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	File(rec, "text/calendar", "kintai_2025-03.ics", []byte("BEGIN:VCALENDAR"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="kintai_2025-03.ics"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "BEGIN:VCALENDAR", rec.Body.String())
}
