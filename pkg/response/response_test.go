package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFail(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   ErrCode
	}{
		{err: ErrBadRequest, status: http.StatusBadRequest, code: INVALID_INPUT},
		{err: ErrUnauthorized, status: http.StatusUnauthorized, code: UNAUTHORIZED},
		{err: ErrForbidden, status: http.StatusForbidden, code: FORBIDDEN},
		{err: ErrNotFound, status: http.StatusNotFound, code: NOT_FOUND},
		{err: ErrLocked, status: http.StatusLocked, code: LOCKED},
		{err: ErrAlreadyBooked, status: http.StatusConflict, code: ALREADY_BOOKED},
		{err: ErrSubjectMismatch, status: http.StatusConflict, code: SUBJECT_MISMATCH},
		{err: ErrAlreadyClaimed, status: http.StatusConflict, code: ALREADY_CLAIMED},
		{err: ErrSlotBooked, status: http.StatusConflict, code: SLOT_BOOKED},
		{err: ErrAlreadyExists, status: http.StatusConflict, code: ALREADY_EXISTS},
		{err: ErrConflict, status: http.StatusConflict, code: CONFLICT},
		{err: errors.New("boom"), status: http.StatusInternalServerError, code: FAILED_REQUEST},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			wrapped := fmt.Errorf("service.Op: %w", tt.err)
			status := Fail(rr, r, wrapped, "failed")

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status, rr.Code)

			var body Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, string(tt.code), body.Code)
		})
	}
}
