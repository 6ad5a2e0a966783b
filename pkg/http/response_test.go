package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePending(t *testing.T) {
	w := httptest.NewRecorder()
	WritePending(w, "Verification email sent", nil)

	assert.Equal(t, 202, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, "Verification email sent", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestWriteSuccess_WithData(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, "Signin successful", map[string]string{"id": "abc"})

	assert.Equal(t, 200, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestFailureWriters_CarryFailedStatus(t *testing.T) {
	writers := map[int]func(*httptest.ResponseRecorder){
		400: func(w *httptest.ResponseRecorder) { WriteBadRequest(w, "bad") },
		401: func(w *httptest.ResponseRecorder) { WriteUnauthorized(w, "nope") },
		403: func(w *httptest.ResponseRecorder) { WriteForbidden(w, "blocked") },
		404: func(w *httptest.ResponseRecorder) { WriteNotFound(w, "missing") },
		409: func(w *httptest.ResponseRecorder) { WriteConflict(w, "duplicate") },
		410: func(w *httptest.ResponseRecorder) { WriteGone(w, "expired") },
		500: func(w *httptest.ResponseRecorder) { WriteInternalError(w, "boom") },
	}

	for code, write := range writers {
		w := httptest.NewRecorder()
		write(w)
		assert.Equal(t, code, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, StatusFailed, resp.Status)
		assert.NotEmpty(t, resp.Message)
	}
}
