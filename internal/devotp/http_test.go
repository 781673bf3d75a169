package devotp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	store := NewMemoryStore()
	store.Put(context.Background(), "jane@x.com", "123456", time.Now().UTC().Add(time.Minute))
	h := NewHandler(store)

	testCases := []struct {
		name   string
		query  string
		status int
		otp    string
	}{
		{"found", "?email=jane@x.com", http.StatusOK, "123456"},
		{"normalizes email", "?email=%20JANE@X.com%20", http.StatusOK, "123456"},
		{"missing email", "", http.StatusBadRequest, ""},
		{"unknown email", "?email=other@x.com", http.StatusNotFound, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dev/otp"+tc.query, nil))
			assert.Equal(t, tc.status, rec.Code)

			var body struct {
				Success bool `json:"success"`
				Data    struct {
					OTP  string `json:"otp"`
					Note string `json:"note"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status == http.StatusOK, body.Success)
			assert.Equal(t, tc.otp, body.Data.OTP)
			if tc.otp != "" {
				assert.Equal(t, devOTPNote, body.Data.Note)
			}
		})
	}
}
